// Package dispatch resolves command specs against selected monitors and
// launches the resulting processes.
package dispatch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/davidmreed/monitor-affinity/internal/affinity"
	"github.com/davidmreed/monitor-affinity/internal/monitor"
)

// Placeholder is the token replaced with the monitor name in argument
// delivery mode.
const Placeholder = "%s"

// DeliveryMode selects how the chosen monitor name reaches the command.
type DeliveryMode string

const (
	// DeliverEnv sets an environment variable to the monitor name and
	// passes arguments through unchanged.
	DeliverEnv DeliveryMode = "env"
	// DeliverArg replaces every Placeholder occurrence in every argument
	// with the monitor name and leaves the environment untouched.
	DeliverArg DeliveryMode = "arg"
)

// Delivery describes one command's delivery mode. EnvKey is set only for
// DeliverEnv.
type Delivery struct {
	Mode   DeliveryMode
	EnvKey string
}

// EnvVar returns an environment-variable delivery for the given key.
func EnvVar(key string) Delivery {
	return Delivery{Mode: DeliverEnv, EnvKey: key}
}

// ArgPlaceholder returns an argument-substitution delivery.
func ArgPlaceholder() Delivery {
	return Delivery{Mode: DeliverArg}
}

// CommandSpec is one configured command: the affinity criteria that pick its
// monitors and how to launch it. Specs are independent of each other.
type CommandSpec struct {
	Name          string // label for logs; defaults to the program name
	Affinities    []affinity.Criterion
	Delivery      Delivery
	Program       string
	Args          []string
	AllowMultiple bool
}

// Label returns the spec's log label.
func (spec CommandSpec) Label() string {
	if spec.Name != "" {
		return spec.Name
	}
	return spec.Program
}

// Invocation is one fully resolved command launch: program, final argument
// vector, and the environment delta (added or overridden keys only).
type Invocation struct {
	Monitor string
	Program string
	Args    []string
	Env     map[string]string
}

// String renders the invocation in shell-like form for dry-run output.
func (inv Invocation) String() string {
	var b strings.Builder
	keys := make([]string, 0, len(inv.Env))
	for k := range inv.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%q ", k, inv.Env[k])
	}
	fmt.Fprintf(&b, "%q", inv.Program)
	for _, arg := range inv.Args {
		fmt.Fprintf(&b, " %q", arg)
	}
	return b.String()
}

// Plan selects this spec's monitors from a topology snapshot and returns the
// resulting invocations, in dispatch order. An empty result means nothing to
// launch for this spec.
func Plan(spec CommandSpec, snapshot []monitor.Monitor) []Invocation {
	selected := affinity.Select(snapshot, spec.Affinities)
	resolved := affinity.Resolve(selected, spec.AllowMultiple)

	invocations := make([]Invocation, 0, len(resolved))
	for _, m := range resolved {
		invocations = append(invocations, resolve(spec, m))
	}
	return invocations
}

func resolve(spec CommandSpec, m monitor.Monitor) Invocation {
	inv := Invocation{
		Monitor: m.Name,
		Program: spec.Program,
		Args:    append([]string(nil), spec.Args...),
	}
	switch spec.Delivery.Mode {
	case DeliverEnv:
		inv.Env = map[string]string{spec.Delivery.EnvKey: m.Name}
	case DeliverArg:
		for i, arg := range inv.Args {
			inv.Args[i] = strings.ReplaceAll(arg, Placeholder, m.Name)
		}
	}
	return inv
}

// Result reports one invocation's outcome. A spawn failure is recorded here
// and never aborts sibling invocations or other specs.
type Result struct {
	Invocation
	Spawned bool
	Handle  Handle
	Err     error
}

// Dispatcher launches planned invocations. With DryRun set the resolution is
// identical but no process is started.
type Dispatcher struct {
	Spawner Spawner
	DryRun  bool
}

// New returns a Dispatcher that spawns real detached processes.
func New(dryRun bool) *Dispatcher {
	return &Dispatcher{Spawner: ExecSpawner{}, DryRun: dryRun}
}

// Dispatch launches one invocation per resolved monitor for the given spec.
func (d *Dispatcher) Dispatch(spec CommandSpec, snapshot []monitor.Monitor) []Result {
	invocations := Plan(spec, snapshot)
	results := make([]Result, 0, len(invocations))
	for _, inv := range invocations {
		res := Result{Invocation: inv}
		if !d.DryRun {
			handle, err := d.Spawner.Start(inv)
			if err != nil {
				res.Err = fmt.Errorf("spawn %s: %w", spec.Label(), err)
			} else {
				res.Spawned = true
				res.Handle = handle
			}
		}
		results = append(results, res)
	}
	return results
}
