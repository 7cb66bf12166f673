package input

import (
	"context"
	"fmt"
	"time"

	"github.com/0xcafed00d/joystick"
	"github.com/sirupsen/logrus"

	"github.com/roverlink/roverctl_client/internal/config"
	"github.com/roverlink/roverctl_client/internal/models"
)

const (
	pollInterval = 33 * time.Millisecond //30hz
	axisMax      = 32767.0

	// A stick is considered back at center once its displacement falls
	// under this, in the same units as MaxRadius.
	centerEpsilon = 4.0
)

// Gamepad polls a physical controller and translates it into input events:
// stick displacement vectors, one release per return-to-center, discrete
// motion buttons, and speed slider steps.
type Gamepad struct {
	cfg    config.InputConfig
	events chan<- models.InputEvent

	centered     bool
	lastButtons  uint32
	speedPercent int
}

func NewGamepad(cfg config.InputConfig, events chan<- models.InputEvent) *Gamepad {
	return &Gamepad{
		cfg:          cfg,
		events:       events,
		centered:     true,
		speedPercent: 50,
	}
}

func (g *Gamepad) Start(ctx context.Context) error {
	js, err := joystick.Open(g.cfg.GamepadID)
	if err != nil {
		return fmt.Errorf("error opening gamepad %d: %w", g.cfg.GamepadID, err)
	}
	defer js.Close()

	logrus.Infof("gamepad %d: %s (%d axes, %d buttons)", g.cfg.GamepadID, js.Name(), js.AxisCount(), js.ButtonCount())

	if g.cfg.AxisX >= js.AxisCount() || g.cfg.AxisY >= js.AxisCount() {
		return fmt.Errorf("gamepad %d has %d axes, configured axes %d/%d out of range", g.cfg.GamepadID, js.AxisCount(), g.cfg.AxisX, g.cfg.AxisY)
	}

	pollTicker := time.NewTicker(pollInterval)
	defer pollTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Infof("stopping gamepad poller: %s", ctx.Err().Error())
			return ctx.Err()
		case <-pollTicker.C:
			state, err := js.Read()
			if err != nil {
				logrus.Warnf("failed reading gamepad: %s", err)
				continue
			}
			g.handleAxes(state)
			g.handleButtons(state.Buttons)
		}
	}
}

func (g *Gamepad) handleAxes(state joystick.State) {
	vec := models.JoystickVector{
		DX: float64(state.AxisData[g.cfg.AxisX]) / axisMax * g.cfg.MaxRadius,
		DY: float64(state.AxisData[g.cfg.AxisY]) / axisMax * g.cfg.MaxRadius,
	}

	if vec.Magnitude() < centerEpsilon {
		if !g.centered {
			g.centered = true
			g.emit(models.InputEvent{Kind: models.InputRelease})
		}
		return
	}

	g.centered = false
	g.emit(models.InputEvent{Kind: models.InputVector, Vector: vec})
}

func (g *Gamepad) handleButtons(buttons uint32) {
	motions := []struct {
		index  int
		motion models.Motion
	}{
		{g.cfg.ForwardButton, models.MotionForward},
		{g.cfg.BackwardButton, models.MotionBackward},
		{g.cfg.LeftButton, models.MotionLeft},
		{g.cfg.RightButton, models.MotionRight},
		{g.cfg.StopButton, models.MotionStop},
	}
	for _, m := range motions {
		if g.newPress(buttons, m.index) {
			g.emit(models.InputEvent{Kind: models.InputButton, Motion: m.motion})
		}
	}

	if g.newPress(buttons, g.cfg.SpeedUpButton) {
		g.bumpSpeed(g.cfg.SpeedStep)
	}
	if g.newPress(buttons, g.cfg.SpeedDownButton) {
		g.bumpSpeed(-g.cfg.SpeedStep)
	}

	g.lastButtons = buttons
}

// newPress reports a rising edge on one button bit.
func (g *Gamepad) newPress(buttons uint32, index int) bool {
	if index < 0 || index > 31 {
		return false
	}
	mask := uint32(1) << uint(index)
	return buttons&mask != 0 && g.lastButtons&mask == 0
}

func (g *Gamepad) bumpSpeed(delta int) {
	g.speedPercent += delta
	if g.speedPercent < 0 {
		g.speedPercent = 0
	}
	if g.speedPercent > 100 {
		g.speedPercent = 100
	}
	g.emit(models.InputEvent{Kind: models.InputSpeed, Percent: g.speedPercent})
}

func (g *Gamepad) emit(ev models.InputEvent) {
	select {
	case g.events <- ev:
	default:
		logrus.Warnf("input event channel full, dropping %d", ev.Kind)
	}
}
