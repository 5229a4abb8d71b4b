package x11

import (
	"fmt"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
)

const maxEventErrorStreak = 16

// eventErrorBackoff spaces out reads after a protocol error so a degraded
// connection does not spin the pump. Overridden in tests.
var eventErrorBackoff = 100 * time.Millisecond

// WatchScreenChanges subscribes to RandR screen-change notifications and
// returns a channel that receives a signal whenever the monitor topology
// changes (plug, unplug, resize, move). The channel is closed when the X
// connection goes away, including when protocol errors persist long enough
// that the connection is considered dead. Notifications are coalesced: a
// signal pending on the channel absorbs later ones until it is consumed.
func (c *Connection) WatchScreenChanges() (<-chan struct{}, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}
	if err := randr.SelectInputChecked(c.XUtil.Conn(), c.Root, randr.NotifyMaskScreenChange).Check(); err != nil {
		return nil, fmt.Errorf("failed to select randr input: %w", err)
	}

	changes := make(chan struct{}, 1)
	go pumpScreenChanges(c.XUtil.Conn().WaitForEvent, changes)
	return changes, nil
}

// pumpScreenChanges forwards screen-change events from wait into changes
// until the connection closes or maxEventErrorStreak consecutive protocol
// errors occur. A successful read resets the streak.
func pumpScreenChanges(wait func() (xgb.Event, xgb.Error), changes chan<- struct{}) {
	defer close(changes)
	errStreak := 0
	for {
		ev, err := wait()
		if ev == nil && err == nil {
			// Connection closed.
			return
		}
		if err != nil {
			errStreak++
			if errStreak >= maxEventErrorStreak {
				return
			}
			time.Sleep(eventErrorBackoff)
			continue
		}
		errStreak = 0
		if _, ok := ev.(randr.ScreenChangeNotifyEvent); ok {
			select {
			case changes <- struct{}{}:
			default:
			}
		}
	}
}
