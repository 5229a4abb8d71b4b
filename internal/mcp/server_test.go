package mcp

import (
	"context"
	"testing"

	"github.com/davidmreed/monitor-affinity/internal/config"
	"github.com/davidmreed/monitor-affinity/internal/monitor"
)

func testProvider() monitor.Provider {
	return monitor.ProviderFunc(func() ([]monitor.Monitor, error) {
		return []monitor.Monitor{
			{Name: "HDMI-0", X: 1920, Y: 0, Width: 2560, Height: 1440},
			{Name: "eDP-1", X: 0, Y: 0, Width: 1920, Height: 1080, Primary: true},
		}, nil
	})
}

func TestHandleListMonitors(t *testing.T) {
	s := NewServer(config.DefaultConfig(), testProvider())

	_, out, err := s.handleListMonitors(context.Background(), nil, ListMonitorsInput{})
	if err != nil {
		t.Fatalf("list_monitors: %v", err)
	}
	if len(out.Monitors) != 2 {
		t.Fatalf("expected 2 monitors, got %d", len(out.Monitors))
	}
	if out.Monitors[0].Name != "HDMI-0" || out.Monitors[1].Name != "eDP-1" {
		t.Fatalf("unexpected order: %+v", out.Monitors)
	}
	if !out.Monitors[1].Primary {
		t.Fatal("eDP-1 should be primary")
	}
}

func TestHandleSelectMonitors(t *testing.T) {
	s := NewServer(config.DefaultConfig(), testProvider())

	_, out, err := s.handleSelectMonitors(context.Background(), nil, SelectMonitorsInput{
		Affinities: []string{"not-primary"},
	})
	if err != nil {
		t.Fatalf("select_monitors: %v", err)
	}
	if len(out.Monitors) != 1 || out.Monitors[0] != "HDMI-0" {
		t.Fatalf("selected %v", out.Monitors)
	}
}

func TestHandleSelectMonitors_BadAffinity(t *testing.T) {
	s := NewServer(config.DefaultConfig(), testProvider())

	_, _, err := s.handleSelectMonitors(context.Background(), nil, SelectMonitorsInput{
		Affinities: []string{"widest"},
	})
	if err == nil {
		t.Fatal("expected error for unknown affinity")
	}
}

func TestHandlePreviewDispatch(t *testing.T) {
	cfg := &config.Config{
		LogLevel: "info",
		Commands: []config.Command{
			{Program: "polybar", Affinities: []string{"primary"}, Env: "MONITOR"},
			{Program: "feh", Args: []string{"--output", "%s"}, Affinities: []string{"portrait"}},
		},
	}
	s := NewServer(cfg, testProvider())

	_, out, err := s.handlePreviewDispatch(context.Background(), nil, PreviewDispatchInput{})
	if err != nil {
		t.Fatalf("preview_dispatch: %v", err)
	}
	if len(out.Commands) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(out.Commands))
	}

	bar := out.Commands[0]
	if len(bar.Invocations) != 1 {
		t.Fatalf("expected 1 invocation for polybar, got %d", len(bar.Invocations))
	}
	if bar.Invocations[0].Env["MONITOR"] != "eDP-1" {
		t.Fatalf("unexpected env: %v", bar.Invocations[0].Env)
	}

	// No portrait monitor connected: the spec resolves to nothing.
	if len(out.Commands[1].Invocations) != 0 {
		t.Fatalf("expected no invocations for feh, got %+v", out.Commands[1].Invocations)
	}
}
