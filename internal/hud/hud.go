package hud

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/procfs"
	"github.com/sirupsen/logrus"

	"github.com/roverlink/roverctl_client/internal/config"
	"github.com/roverlink/roverctl_client/internal/session"
)

// Hud prints the session status line once per second while a link is
// active: elapsed time, current direction, command counter, and byte
// deltas on the wireless interface when procfs has them. Display only;
// nothing here feeds back into the session.
type Hud struct {
	cfg        config.HudConfig
	controller *session.Controller
	clock      func() time.Time
}

func New(cfg config.HudConfig, controller *session.Controller) *Hud {
	return &Hud{
		cfg:        cfg,
		controller: controller,
		clock:      time.Now,
	}
}

func (h *Hud) Start(ctx context.Context) error {
	logrus.Infof("starting hud on %s", h.cfg.NetDevice)

	proc, err := procfs.Self()
	haveProc := err == nil
	if !haveProc {
		logrus.Warnf("procfs unavailable, hud runs without net stats: %s", err)
	}

	var lastRx, lastTx uint64
	hudTicker := time.NewTicker(1 * time.Second)
	defer hudTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Infof("stopping hud: %s", ctx.Err().Error())
			return ctx.Err()
		case <-hudTicker.C:
			status := h.controller.Snapshot(h.clock())
			if !status.Connected {
				// The tick keeps running but its output is ignored once
				// the session leaves active.
				lastRx, lastTx = 0, 0
				continue
			}

			line := fmt.Sprintf("%s | dir:%s | cmds:%d", status.Elapsed, status.Direction, status.CommandCount)

			if haveProc {
				netDev, err := proc.NetDev()
				if err != nil {
					logrus.Warnf("failed getting netstat: %s", err)
				} else if stats, ok := netDev[h.cfg.NetDevice]; ok {
					if lastRx != 0 || lastTx != 0 {
						line = fmt.Sprintf("%s | rx:%dB tx:%dB", line, stats.RxBytes-lastRx, stats.TxBytes-lastTx)
					}
					lastRx, lastTx = stats.RxBytes, stats.TxBytes
				}
			}

			logrus.Infof("hud: %s", line)
		}
	}
}
