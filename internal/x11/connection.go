// Package x11 provides the XRandR-backed topology provider.
package x11

import (
	"fmt"
	"os"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/davidmreed/monitor-affinity/internal/monitor"
)

// Connection manages the X11 connection and core X resources.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// Options override the environment used to reach the X server.
type Options struct {
	Display    string // overrides DISPLAY when non-empty
	XAuthority string // overrides XAUTHORITY when non-empty
}

// NewConnection establishes a connection to the X11 server. A failure here
// means the topology cannot be queried at all and is fatal for the run.
func NewConnection(opts Options) (*Connection, error) {
	if opts.XAuthority != "" {
		os.Setenv("XAUTHORITY", opts.XAuthority)
	}

	var xu *xgbutil.XUtil
	var err error
	if opts.Display != "" {
		xu, err = xgbutil.NewConnDisplay(opts.Display)
	} else {
		xu, err = xgbutil.NewConn()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", monitor.ErrTopologyUnavailable, err)
	}

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// Close cleanly disconnects from the X11 server.
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
