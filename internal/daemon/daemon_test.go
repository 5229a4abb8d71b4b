package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/davidmreed/monitor-affinity/internal/affinity"
	"github.com/davidmreed/monitor-affinity/internal/dispatch"
	"github.com/davidmreed/monitor-affinity/internal/monitor"
)

type fakeHandle struct {
	monitor string
	killed  bool
}

func (h *fakeHandle) Kill() error {
	h.killed = true
	return nil
}

type fakeSpawner struct {
	handles []*fakeHandle
	failAll bool
}

func (s *fakeSpawner) Start(inv dispatch.Invocation) (dispatch.Handle, error) {
	if s.failAll {
		return nil, errors.New("spawn refused")
	}
	h := &fakeHandle{monitor: inv.Monitor}
	s.handles = append(s.handles, h)
	return h, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func laptop() monitor.Monitor {
	return monitor.Monitor{Name: "eDP-1", Width: 1920, Height: 1080, Primary: true}
}

func external() monitor.Monitor {
	return monitor.Monitor{Name: "HDMI-0", X: 1920, Width: 2560, Height: 1440}
}

func barSpec() dispatch.CommandSpec {
	return dispatch.CommandSpec{
		Affinities: []affinity.Criterion{{Kind: affinity.Largest}},
		Delivery:   dispatch.EnvVar("MONITOR"),
		Program:    "polybar",
	}
}

func newTestDaemon(snapshot *[]monitor.Monitor, spawner *fakeSpawner, specs ...dispatch.CommandSpec) *Daemon {
	provider := monitor.ProviderFunc(func() ([]monitor.Monitor, error) {
		return *snapshot, nil
	})
	d := New(provider, specs, testLogger())
	d.spawner = spawner
	return d
}

func TestApply_InitialDispatch(t *testing.T) {
	snapshot := []monitor.Monitor{laptop(), external()}
	spawner := &fakeSpawner{}
	d := newTestDaemon(&snapshot, spawner, barSpec())

	d.apply()
	if len(spawner.handles) != 1 || spawner.handles[0].monitor != "HDMI-0" {
		t.Fatalf("unexpected children: %+v", spawner.handles)
	}
}

func TestApply_UnchangedTargetsAreLeftAlone(t *testing.T) {
	snapshot := []monitor.Monitor{laptop(), external()}
	spawner := &fakeSpawner{}
	d := newTestDaemon(&snapshot, spawner, barSpec())

	d.apply()
	d.apply()
	if len(spawner.handles) != 1 {
		t.Fatalf("re-applied identical topology spawned %d children", len(spawner.handles))
	}
	if spawner.handles[0].killed {
		t.Fatal("child killed despite unchanged targets")
	}
}

func TestApply_RestartsOnTopologyChange(t *testing.T) {
	snapshot := []monitor.Monitor{laptop(), external()}
	spawner := &fakeSpawner{}
	d := newTestDaemon(&snapshot, spawner, barSpec())

	d.apply()

	// Unplug the external monitor: largest is now the laptop panel.
	snapshot = []monitor.Monitor{laptop()}
	d.apply()

	if len(spawner.handles) != 2 {
		t.Fatalf("expected a restart, got children %+v", spawner.handles)
	}
	if !spawner.handles[0].killed {
		t.Fatal("stale child not killed")
	}
	if spawner.handles[1].monitor != "eDP-1" || spawner.handles[1].killed {
		t.Fatalf("unexpected replacement child: %+v", spawner.handles[1])
	}
}

func TestApply_EmptySelectionKillsChildren(t *testing.T) {
	snapshot := []monitor.Monitor{laptop(), external()}
	spec := dispatch.CommandSpec{
		Affinities: []affinity.Criterion{{Kind: affinity.Primary}},
		Delivery:   dispatch.EnvVar("MONITOR"),
		Program:    "polybar",
	}
	spawner := &fakeSpawner{}
	d := newTestDaemon(&snapshot, spawner, spec)

	d.apply()
	if len(spawner.handles) != 1 {
		t.Fatalf("expected 1 child, got %d", len(spawner.handles))
	}

	// Primary gone entirely: the spec resolves to nothing.
	snapshot = []monitor.Monitor{external()}
	d.apply()
	if !spawner.handles[0].killed {
		t.Fatal("child should be killed when selection becomes empty")
	}
	if len(spawner.handles) != 1 {
		t.Fatalf("no new children expected, got %d", len(spawner.handles))
	}
}

func TestApply_SpawnFailureRetriedOnNextChange(t *testing.T) {
	snapshot := []monitor.Monitor{laptop()}
	spawner := &fakeSpawner{failAll: true}
	d := newTestDaemon(&snapshot, spawner, barSpec())

	d.apply()
	if len(spawner.handles) != 0 {
		t.Fatalf("expected no children, got %d", len(spawner.handles))
	}

	spawner.failAll = false
	d.apply()
	if len(spawner.handles) != 1 {
		t.Fatalf("expected spawn retry to succeed, got %d children", len(spawner.handles))
	}
}

func TestApply_ProviderErrorKeepsChildren(t *testing.T) {
	snapshot := []monitor.Monitor{laptop()}
	spawner := &fakeSpawner{}
	failing := false
	provider := monitor.ProviderFunc(func() ([]monitor.Monitor, error) {
		if failing {
			return nil, monitor.ErrTopologyUnavailable
		}
		return snapshot, nil
	})
	d := New(provider, []dispatch.CommandSpec{barSpec()}, testLogger())
	d.spawner = spawner

	d.apply()
	failing = true
	d.apply()

	if len(spawner.handles) != 1 || spawner.handles[0].killed {
		t.Fatalf("children disturbed by a failed snapshot: %+v", spawner.handles)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	snapshot := []monitor.Monitor{laptop()}
	d := newTestDaemon(&snapshot, &fakeSpawner{}, barSpec())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx, make(chan struct{}))
	}()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestRun_FailsWhenWatchCloses(t *testing.T) {
	snapshot := []monitor.Monitor{laptop()}
	d := newTestDaemon(&snapshot, &fakeSpawner{}, barSpec())

	changes := make(chan struct{})
	close(changes)
	if err := d.Run(context.Background(), changes); err == nil {
		t.Fatal("expected error when watch channel closes")
	}
}
