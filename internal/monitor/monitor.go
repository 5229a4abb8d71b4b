// Package monitor describes display geometry and topology snapshots.
package monitor

import (
	"errors"
	"fmt"
	"sort"
)

// ErrTopologyUnavailable indicates the display topology could not be queried.
// It is fatal for the whole invocation: no dispatch is meaningful without it.
var ErrTopologyUnavailable = errors.New("monitor topology unavailable")

// Monitor describes one connected display and its bounds.
type Monitor struct {
	Name    string
	X       int
	Y       int
	Width   int
	Height  int
	Primary bool
}

// Area returns the monitor's pixel area.
func (m Monitor) Area() int {
	return m.Width * m.Height
}

// Right returns the x coordinate of the monitor's right edge.
func (m Monitor) Right() int {
	return m.X + m.Width
}

// Bottom returns the y coordinate of the monitor's bottom edge.
func (m Monitor) Bottom() int {
	return m.Y + m.Height
}

func (m Monitor) String() string {
	primary := ""
	if m.Primary {
		primary = " primary"
	}
	return fmt.Sprintf("%s %dx%d+%d+%d%s", m.Name, m.Width, m.Height, m.X, m.Y, primary)
}

// Provider returns a snapshot of the currently connected monitors.
// Implementations should wrap query failures with ErrTopologyUnavailable.
type Provider interface {
	Monitors() ([]Monitor, error)
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func() ([]Monitor, error)

func (f ProviderFunc) Monitors() ([]Monitor, error) {
	return f()
}

// SortByName orders monitors alphabetically by name, in place.
// Names are unique within a snapshot, so the order is deterministic.
func SortByName(monitors []Monitor) {
	sort.Slice(monitors, func(i, j int) bool {
		return monitors[i].Name < monitors[j].Name
	})
}

// Names returns the monitor names in slice order.
func Names(monitors []Monitor) []string {
	names := make([]string, len(monitors))
	for i, m := range monitors {
		names[i] = m.Name
	}
	return names
}
