package models

import (
	"fmt"
	"math"
	"time"
)

// Motion is one of the five discrete drive instructions the rover understands.
type Motion int

const (
	MotionStop Motion = iota
	MotionForward
	MotionBackward
	MotionLeft
	MotionRight
)

func (m Motion) String() string {
	switch m {
	case MotionStop:
		return "stop"
	case MotionForward:
		return "forward"
	case MotionBackward:
		return "backward"
	case MotionLeft:
		return "left"
	case MotionRight:
		return "right"
	default:
		return "unknown"
	}
}

type CommandKind int

const (
	KindMotion CommandKind = iota
	KindSpeed
)

// Command is an immutable value compared by structural equality. Either a
// Motion command or a SpeedSet carrying a byte-range power level.
type Command struct {
	Kind   CommandKind
	Motion Motion
	Speed  int
}

func MotionCommand(m Motion) Command {
	return Command{Kind: KindMotion, Motion: m}
}

// SpeedCommand carries a power level in [0,255]. Callers clamp before
// constructing; the codec treats out-of-range values as a programming error.
func SpeedCommand(value int) Command {
	return Command{Kind: KindSpeed, Speed: value}
}

func (c Command) String() string {
	if c.Kind == KindSpeed {
		return fmt.Sprintf("speed(%d)", c.Speed)
	}
	return c.Motion.String()
}

// JoystickVector is a raw pixel displacement from a recorded stick center.
// Screen coordinates, so +y points down.
type JoystickVector struct {
	DX float64
	DY float64
}

func (v JoystickVector) Magnitude() float64 {
	return math.Sqrt(v.DX*v.DX + v.DY*v.DY)
}

// SessionStats is owned by the session controller. A zero ConnectedSince
// means no active session.
type SessionStats struct {
	CommandCount   int
	ConnectedSince time.Time
}

type InputKind int

const (
	InputVector InputKind = iota
	InputRelease
	InputButton
	InputSpeed
)

// InputEvent is what the input layer feeds into the app event loop.
type InputEvent struct {
	Kind    InputKind
	Vector  JoystickVector
	Motion  Motion
	Percent int
}
