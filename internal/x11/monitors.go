package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"

	"github.com/davidmreed/monitor-affinity/internal/monitor"
)

var _ monitor.Provider = (*Connection)(nil)

// Monitors retrieves all active monitors using XRandR. Failures are wrapped
// in ErrTopologyUnavailable so callers can treat them as fatal.
func (c *Connection) Monitors() ([]monitor.Monitor, error) {
	monitors, err := c.getMonitors()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", monitor.ErrTopologyUnavailable, err)
	}
	return monitors, nil
}

func (c *Connection) getMonitors() ([]monitor.Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primaryOutput randr.Output
	if primary, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		primaryOutput = primary.Output
	}

	var monitors []monitor.Monitor

	// Walk CRTCs: each enabled CRTC is one monitor.
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		primary := false
		for _, output := range crtcInfo.Outputs {
			if output == primaryOutput && primaryOutput != 0 {
				primary = true
			}
		}
		if outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(outputInfo.Name)
		}

		monitors = append(monitors, monitor.Monitor{
			Name:    name,
			X:       int(crtcInfo.X),
			Y:       int(crtcInfo.Y),
			Width:   int(crtcInfo.Width),
			Height:  int(crtcInfo.Height),
			Primary: primary,
		})
	}

	return monitors, nil
}
