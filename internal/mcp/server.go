// Package mcp exposes monitor topology and selection over the Model Context
// Protocol, so MCP clients can inspect a multi-monitor setup and preview
// which commands would land where.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/davidmreed/monitor-affinity/internal/affinity"
	"github.com/davidmreed/monitor-affinity/internal/config"
	"github.com/davidmreed/monitor-affinity/internal/dispatch"
	"github.com/davidmreed/monitor-affinity/internal/monitor"
)

const (
	ServerName    = "monitor-affinity"
	ServerVersion = "0.1.0"
)

// Server is the MCP server for monitor selection.
type Server struct {
	mcpServer *mcpsdk.Server
	config    *config.Config
	provider  monitor.Provider
}

// NewServer creates an MCP server backed by the given topology provider.
func NewServer(cfg *config.Config, provider monitor.Provider) *Server {
	s := &Server{
		config:   cfg,
		provider: provider,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List the currently connected monitors with their geometry (position, size) and primary flag.",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "select_monitors",
		Description: "Apply ordered affinity criteria (primary, largest, smallest, leftmost, rightmost, topmost, bottommost, portrait, landscape; negate with a not- prefix) to the connected monitors and return the names that survive the narrowing.",
	}, s.handleSelectMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "preview_dispatch",
		Description: "Resolve every configured command against the current topology without launching anything; returns the program, final arguments, and environment delta per invocation, exactly as a dry run would.",
	}, s.handlePreviewDispatch)
}

func (s *Server) handleListMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListMonitorsInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	snapshot, err := s.provider.Monitors()
	if err != nil {
		return nil, ListMonitorsOutput{}, err
	}
	monitor.SortByName(snapshot)

	out := ListMonitorsOutput{Monitors: make([]MonitorInfo, 0, len(snapshot))}
	for _, m := range snapshot {
		out.Monitors = append(out.Monitors, MonitorInfo{
			Name:    m.Name,
			X:       m.X,
			Y:       m.Y,
			Width:   m.Width,
			Height:  m.Height,
			Primary: m.Primary,
		})
	}
	return nil, out, nil
}

func (s *Server) handleSelectMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, args SelectMonitorsInput) (*mcpsdk.CallToolResult, SelectMonitorsOutput, error) {
	criteria, err := affinity.ParseAll(args.Affinities)
	if err != nil {
		return nil, SelectMonitorsOutput{}, err
	}
	snapshot, err := s.provider.Monitors()
	if err != nil {
		return nil, SelectMonitorsOutput{}, err
	}

	resolved := affinity.Resolve(affinity.Select(snapshot, criteria), args.AllowMultiple)
	return nil, SelectMonitorsOutput{Monitors: monitor.Names(resolved)}, nil
}

func (s *Server) handlePreviewDispatch(_ context.Context, _ *mcpsdk.CallToolRequest, _ PreviewDispatchInput) (*mcpsdk.CallToolResult, PreviewDispatchOutput, error) {
	specs, err := s.config.Specs()
	if err != nil {
		return nil, PreviewDispatchOutput{}, fmt.Errorf("invalid configuration: %w", err)
	}
	snapshot, err := s.provider.Monitors()
	if err != nil {
		return nil, PreviewDispatchOutput{}, err
	}

	out := PreviewDispatchOutput{Commands: make([]PreviewCommand, 0, len(specs))}
	for _, spec := range specs {
		preview := PreviewCommand{Command: spec.Label()}
		for _, inv := range dispatch.Plan(spec, snapshot) {
			preview.Invocations = append(preview.Invocations, PreviewInvocation{
				Monitor: inv.Monitor,
				Program: inv.Program,
				Args:    inv.Args,
				Env:     inv.Env,
			})
		}
		out.Commands = append(out.Commands, preview)
	}
	return nil, out, nil
}
