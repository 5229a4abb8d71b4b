// Package daemon keeps configured commands routed to their preferred
// monitors as the display topology changes.
package daemon

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/davidmreed/monitor-affinity/internal/dispatch"
	"github.com/davidmreed/monitor-affinity/internal/monitor"
)

// child is one process the daemon spawned for a spec.
type child struct {
	monitor string
	handle  dispatch.Handle
}

// Daemon dispatches every spec once at startup, then re-resolves all specs
// whenever the topology changes. A spec whose resolved monitor set changed
// has its previous children terminated and is dispatched again.
type Daemon struct {
	provider monitor.Provider
	specs    []dispatch.CommandSpec
	spawner  dispatch.Spawner
	logger   *slog.Logger

	running map[int][]child // spec index -> live children
}

// New creates a daemon for the given specs. The logger must not be nil.
func New(provider monitor.Provider, specs []dispatch.CommandSpec, logger *slog.Logger) *Daemon {
	return &Daemon{
		provider: provider,
		specs:    specs,
		spawner:  dispatch.ExecSpawner{},
		logger:   logger,
		running:  make(map[int][]child),
	}
}

// Run dispatches once, then blocks handling topology-change signals until
// the context is cancelled or the change channel closes. Spawned children
// are left running on shutdown; they are long-lived bars and widgets, not
// daemon-owned workers.
func (d *Daemon) Run(ctx context.Context, changes <-chan struct{}) error {
	d.apply()
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("daemon stopped")
			return nil
		case _, ok := <-changes:
			if !ok {
				return fmt.Errorf("topology watch closed")
			}
			d.logger.Debug("screen change notification received")
			d.apply()
		}
	}
}

// apply takes a fresh snapshot and reconciles every spec against it.
func (d *Daemon) apply() {
	snapshot, err := d.provider.Monitors()
	if err != nil {
		d.logger.Error("failed to query monitors", "error", err)
		return
	}
	d.logger.Debug("topology snapshot", "monitors", monitor.Names(snapshot))

	for i, spec := range d.specs {
		d.applySpec(i, spec, snapshot)
	}
}

func (d *Daemon) applySpec(index int, spec dispatch.CommandSpec, snapshot []monitor.Monitor) {
	invocations := dispatch.Plan(spec, snapshot)
	planned := make([]string, len(invocations))
	for i, inv := range invocations {
		planned[i] = inv.Monitor
	}

	if sameTargets(planned, d.running[index]) {
		return
	}

	for _, c := range d.running[index] {
		if err := c.handle.Kill(); err != nil {
			d.logger.Warn("failed to stop child", "command", spec.Label(), "monitor", c.monitor, "error", err)
		} else {
			d.logger.Info("stopped child", "command", spec.Label(), "monitor", c.monitor)
		}
	}
	d.running[index] = nil

	for _, inv := range invocations {
		handle, err := d.spawner.Start(inv)
		if err != nil {
			d.logger.Error("spawn failed", "command", spec.Label(), "monitor", inv.Monitor, "error", err)
			continue
		}
		d.logger.Info("started command", "command", spec.Label(), "monitor", inv.Monitor)
		d.running[index] = append(d.running[index], child{monitor: inv.Monitor, handle: handle})
	}
}

// sameTargets reports whether the planned monitors match the ones the
// running children were dispatched to. Both sides come from Resolve's
// deterministic order, so positional comparison suffices.
func sameTargets(planned []string, running []child) bool {
	if len(planned) != len(running) {
		return false
	}
	for i, name := range planned {
		if running[i].monitor != name {
			return false
		}
	}
	return true
}
