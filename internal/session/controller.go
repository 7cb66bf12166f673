package session

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/roverlink/roverctl_client/internal/config"
	"github.com/roverlink/roverctl_client/internal/joystick"
	"github.com/roverlink/roverctl_client/internal/link"
	"github.com/roverlink/roverctl_client/internal/models"
	"github.com/roverlink/roverctl_client/internal/throttle"
	"github.com/roverlink/roverctl_client/internal/wire"
)

// Controller is the top-level orchestrator: it maps raw operator input into
// commands, feeds them through the throttle, and hands accepted ones to the
// link session for transmission. Input methods are called from the app's
// single event loop; stats are read from the hud tick, hence the lock.
type Controller struct {
	lock  sync.RWMutex
	lnk   *link.Session
	thr   *throttle.Throttle
	clock func() time.Time

	maxRadius float64

	stats     models.SessionStats
	direction models.Motion
}

func New(linkCfg config.LinkConfig, throttleCfg config.ThrottleConfig, maxRadius float64, transport link.TransportIFace, clock func() time.Time) *Controller {
	if clock == nil {
		clock = time.Now
	}
	if maxRadius <= 0 {
		maxRadius = config.DefaultMaxRadius
	}

	c := &Controller{
		thr:       throttle.New(throttleCfg.MinInterval),
		clock:     clock,
		maxRadius: maxRadius,
		direction: models.MotionStop,
	}
	c.lnk = link.NewSession(transport, filterFromConfig(linkCfg), clock, c.onLinkStateChange)
	return c
}

func filterFromConfig(cfg config.LinkConfig) link.DeviceFilter {
	filter := link.DeviceFilter{
		Name:       cfg.DeviceName,
		NamePrefix: cfg.DevicePrefix,
	}

	service, err := uuid.Parse(cfg.ServiceUUID)
	if err != nil {
		logrus.Warnf("bad service uuid %q, using default: %s", cfg.ServiceUUID, err)
		service = uuid.MustParse(config.DefaultServiceUUID)
	}
	characteristic, err := uuid.Parse(cfg.CharacteristicUUID)
	if err != nil {
		logrus.Warnf("bad characteristic uuid %q, using default: %s", cfg.CharacteristicUUID, err)
		characteristic = uuid.MustParse(config.DefaultCharacteristicUUID)
	}

	filter.Service = service
	filter.Characteristic = characteristic
	return filter
}

func (c *Controller) Connect(ctx context.Context) error {
	return c.lnk.Connect(ctx)
}

func (c *Controller) Disconnect() {
	c.lnk.Disconnect()
}

func (c *Controller) Link() *link.Session {
	return c.lnk
}

// OnDirectionalInput maps a stick displacement to a motion command and
// returns the clamped vector for positioning the visual knob.
func (c *Controller) OnDirectionalInput(vec models.JoystickVector) models.JoystickVector {
	motion, clamped := joystick.Map(vec, c.maxRadius)
	c.submit(models.MotionCommand(motion))
	return clamped
}

func (c *Controller) OnButtonCommand(motion models.Motion) {
	c.submit(models.MotionCommand(motion))
}

// OnSpeedChange takes a 0-100 percent slider position and maps it to the
// rover's byte range, rounding to nearest.
func (c *Controller) OnSpeedChange(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	value := int(math.Round(float64(percent) / 100 * 255))
	c.submit(models.SpeedCommand(value))
}

// OnJoystickRelease sends one stop per release regardless of the throttle
// window, and records it so immediate repeats still deduplicate.
func (c *Controller) OnJoystickRelease() {
	if c.lnk.State() != link.StateActive {
		return
	}
	cmd := models.MotionCommand(models.MotionStop)

	c.lock.Lock()
	c.thr.Record(cmd, c.clock())
	c.lock.Unlock()

	c.send(cmd)
}

// submit funnels a candidate through the throttle and, if accepted, onto
// the wire. The connection state gates acceptance entirely: input that
// arrives while not active is dropped without touching throttle state.
func (c *Controller) submit(cmd models.Command) {
	if c.lnk.State() != link.StateActive {
		return
	}

	c.lock.Lock()
	accepted := c.thr.Accept(cmd, c.clock())
	c.lock.Unlock()
	if !accepted {
		return
	}

	c.send(cmd)
}

func (c *Controller) send(cmd models.Command) {
	err := c.lnk.Send(wire.Encode(cmd))
	if errors.Is(err, link.ErrNotConnected) {
		// Races around disconnect; silent by design.
		return
	}
	if err != nil {
		// Dropped, not retried; the next accepted command supersedes it.
		logrus.Warnf("dropping command %s: %s", cmd, err)
		return
	}

	c.lock.Lock()
	c.stats.CommandCount++
	if cmd.Kind == models.KindMotion {
		c.direction = cmd.Motion
	}
	c.lock.Unlock()
}

func (c *Controller) onLinkStateChange(previous, current link.State, reason string) {
	switch current {
	case link.StateActive:
		c.lock.Lock()
		c.stats = models.SessionStats{ConnectedSince: c.lnk.ConnectedSince()}
		c.direction = models.MotionStop
		c.thr.Reset()
		c.lock.Unlock()
	case link.StateDisconnected:
		c.lock.Lock()
		c.stats = models.SessionStats{}
		c.direction = models.MotionStop
		c.thr.Reset()
		c.lock.Unlock()
	}
}

func (c *Controller) Stats() models.SessionStats {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.stats
}

// Status is the session surface the display layer consumes.
type Status struct {
	Connected    bool
	Direction    string
	CommandCount int
	Elapsed      string
}

// Snapshot computes the displayable session status at the given instant.
func (c *Controller) Snapshot(now time.Time) Status {
	c.lock.RLock()
	stats := c.stats
	direction := c.direction
	c.lock.RUnlock()

	return Status{
		Connected:    c.lnk.State() == link.StateActive,
		Direction:    direction.String(),
		CommandCount: stats.CommandCount,
		Elapsed:      FormatElapsed(Elapsed(now, stats.ConnectedSince)),
	}
}
