package monitor

import "testing"

func TestMonitorGeometry(t *testing.T) {
	m := Monitor{Name: "DP-1", X: -1920, Y: 100, Width: 1920, Height: 1080}
	if m.Area() != 1920*1080 {
		t.Fatalf("Area() = %d", m.Area())
	}
	if m.Right() != 0 {
		t.Fatalf("Right() = %d", m.Right())
	}
	if m.Bottom() != 1180 {
		t.Fatalf("Bottom() = %d", m.Bottom())
	}
}

func TestMonitorString(t *testing.T) {
	m := Monitor{Name: "eDP-1", X: 0, Y: 0, Width: 2560, Height: 1440, Primary: true}
	if got := m.String(); got != "eDP-1 2560x1440+0+0 primary" {
		t.Fatalf("String() = %q", got)
	}
	m.Primary = false
	if got := m.String(); got != "eDP-1 2560x1440+0+0" {
		t.Fatalf("String() = %q", got)
	}
}

func TestSortByName(t *testing.T) {
	monitors := []Monitor{{Name: "HDMI-1"}, {Name: "DP-1"}, {Name: "eDP-1"}}
	SortByName(monitors)
	want := []string{"DP-1", "HDMI-1", "eDP-1"}
	for i, name := range Names(monitors) {
		if name != want[i] {
			t.Fatalf("sorted order %v, want %v", Names(monitors), want)
		}
	}
}
