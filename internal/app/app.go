package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/roverlink/roverctl_client/internal/config"
	"github.com/roverlink/roverctl_client/internal/hud"
	"github.com/roverlink/roverctl_client/internal/input"
	"github.com/roverlink/roverctl_client/internal/link"
	"github.com/roverlink/roverctl_client/internal/models"
	"github.com/roverlink/roverctl_client/internal/session"
)

type App struct {
	ctx       context.Context
	ctxCancel context.CancelFunc

	cfg        config.Config
	controller *session.Controller
	gamepad    *input.Gamepad
	hud        *hud.Hud

	eventChannel chan models.InputEvent
}

func NewApp(cfg config.Config, transport link.TransportIFace) *App {
	ctx, cancel := context.WithCancel(context.Background())

	eventChannel := make(chan models.InputEvent, 100)
	controller := session.New(cfg.LinkCfg, cfg.ThrottleCfg, cfg.InputCfg.MaxRadius, transport, time.Now)

	return &App{
		ctx:          ctx,
		ctxCancel:    cancel,
		cfg:          cfg,
		controller:   controller,
		gamepad:      input.NewGamepad(cfg.InputCfg, eventChannel),
		hud:          hud.New(cfg.HudCfg, controller),
		eventChannel: eventChannel,
	}
}

func (a *App) Start() error {
	group, groupCtx := errgroup.WithContext(a.ctx)
	logrus.Infoln("starting...")

	//kill listener
	group.Go(func() error {
		signalChannel := make(chan os.Signal, 1)
		signal.Notify(signalChannel, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-signalChannel:
			logrus.Infof("received signal: %s", sig)
			a.ctxCancel()
			return fmt.Errorf("received signal: %s", sig)
		case <-groupCtx.Done():
			logrus.Infoln("closing signal goroutine")
			return groupCtx.Err()
		}
	})

	//Start gamepad poller
	group.Go(func() error {
		return a.gamepad.Start(groupCtx)
	})

	//Start hud ticker
	if a.cfg.HudCfg.Enabled {
		group.Go(func() error {
			return a.hud.Start(groupCtx)
		})
	}

	//Connect and run the session event loop
	group.Go(func() error {
		return a.runSession(groupCtx)
	})

	err := group.Wait()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logrus.Infoln("context was cancelled")
			return nil
		}
		return fmt.Errorf("client stopping due to error - %w", err)
	}

	logrus.Infoln("shutting down")
	return nil
}

// runSession is the single logical execution context for all session
// state: input events are applied in arrival order, and connect/disconnect
// transitions complete before the next event is handled.
func (a *App) runSession(ctx context.Context) error {
	connectCtx, cancel := context.WithTimeout(ctx, a.cfg.LinkCfg.ConnectTimeout)
	err := a.controller.Connect(connectCtx)
	cancel()
	if err != nil {
		logrus.Errorf("could not reach the rover - check that it is powered on and in range: %s", err)
		return err
	}

	// Disconnect sends the best-effort stop before the transport goes away.
	defer a.controller.Disconnect()

	for {
		select {
		case <-ctx.Done():
			logrus.Infof("stopping session loop: %s", ctx.Err().Error())
			return ctx.Err()
		case ev, ok := <-a.eventChannel:
			if !ok {
				return fmt.Errorf("input event channel closed")
			}
			a.dispatch(ev)
		}
	}
}

func (a *App) dispatch(ev models.InputEvent) {
	switch ev.Kind {
	case models.InputVector:
		a.controller.OnDirectionalInput(ev.Vector)
	case models.InputRelease:
		a.controller.OnJoystickRelease()
	case models.InputButton:
		a.controller.OnButtonCommand(ev.Motion)
	case models.InputSpeed:
		a.controller.OnSpeedChange(ev.Percent)
	default:
		logrus.Warnf("unsupported input event kind: %d", ev.Kind)
	}
}
