package joystick

import (
	"math"

	"github.com/roverlink/roverctl_client/internal/models"
)

// DeadzoneRadius is the minimum displacement, in the same units as the
// input vector, below which no directional intent is registered.
const DeadzoneRadius = 30.0

// Map converts a raw stick displacement into a drive direction and the
// clamped vector used to position the visual knob. The vector is clamped to
// maxRadius along its own angle, then bucketed into four 90-degree sectors
// centered on the cardinal directions. Displacements inside the deadzone
// map to stop. Screen coordinates: +y is down, so positive-y is backward.
func Map(vec models.JoystickVector, maxRadius float64) (models.Motion, models.JoystickVector) {
	d := vec.Magnitude()

	if d > maxRadius {
		scale := maxRadius / d
		vec = models.JoystickVector{DX: vec.DX * scale, DY: vec.DY * scale}
	}

	// Covers d == 0 too, where the angle would be undefined.
	if d < DeadzoneRadius {
		return models.MotionStop, vec
	}

	angle := math.Atan2(vec.DY, vec.DX) * 180 / math.Pi

	// Half-open sectors, lower bound inclusive. The four ranges partition
	// the full circle with no overlap or gap.
	switch {
	case angle >= -45 && angle < 45:
		return models.MotionRight, vec
	case angle >= 45 && angle < 135:
		return models.MotionBackward, vec
	case angle >= -135 && angle < -45:
		return models.MotionForward, vec
	default:
		return models.MotionLeft, vec
	}
}
