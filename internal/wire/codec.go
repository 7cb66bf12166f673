package wire

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roverlink/roverctl_client/internal/models"
)

// Wire format understood by the rover firmware: a single ASCII letter per
// motion command, or SPEED:<0-255> for a power level change. No framing,
// no checksum, no acknowledgment.
const SpeedPrefix = "SPEED:"

const (
	MaxSpeed = 255
	MinSpeed = 0
)

// Encode is total and deterministic for well-formed commands. A SpeedSet
// outside [0,255] means the caller skipped clamping, so it panics rather
// than sending garbage to the rover.
func Encode(cmd models.Command) []byte {
	switch cmd.Kind {
	case models.KindSpeed:
		if cmd.Speed < MinSpeed || cmd.Speed > MaxSpeed {
			panic(fmt.Sprintf("wire: speed value out of range: %d", cmd.Speed))
		}
		return []byte(SpeedPrefix + strconv.Itoa(cmd.Speed))
	default:
		return []byte{motionLetter(cmd.Motion)}
	}
}

func motionLetter(m models.Motion) byte {
	switch m {
	case models.MotionForward:
		return 'F'
	case models.MotionBackward:
		return 'B'
	case models.MotionLeft:
		return 'L'
	case models.MotionRight:
		return 'R'
	default:
		return 'S'
	}
}

// Decode is the inverse of Encode. The rover never sends structured
// commands back; this exists for the loopback transport and tests.
func Decode(data []byte) (models.Command, error) {
	msg := string(data)

	if strings.HasPrefix(msg, SpeedPrefix) {
		digits := msg[len(SpeedPrefix):]
		if digits == "" {
			return models.Command{}, fmt.Errorf("decoding %q: missing speed value", msg)
		}
		if len(digits) > 1 && digits[0] == '0' {
			return models.Command{}, fmt.Errorf("decoding %q: leading zeros not allowed", msg)
		}
		value, err := strconv.Atoi(digits)
		if err != nil || value < MinSpeed || value > MaxSpeed {
			return models.Command{}, fmt.Errorf("decoding %q: speed value out of range", msg)
		}
		return models.SpeedCommand(value), nil
	}

	if len(msg) != 1 {
		return models.Command{}, fmt.Errorf("decoding %q: unknown message", msg)
	}

	switch msg[0] {
	case 'F':
		return models.MotionCommand(models.MotionForward), nil
	case 'B':
		return models.MotionCommand(models.MotionBackward), nil
	case 'L':
		return models.MotionCommand(models.MotionLeft), nil
	case 'R':
		return models.MotionCommand(models.MotionRight), nil
	case 'S':
		return models.MotionCommand(models.MotionStop), nil
	default:
		return models.Command{}, fmt.Errorf("decoding %q: unknown message", msg)
	}
}
