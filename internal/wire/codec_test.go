package wire

import (
	"fmt"
	"testing"

	"github.com/roverlink/roverctl_client/internal/models"
)

func TestEncodeMotion(t *testing.T) {
	cases := []struct {
		motion models.Motion
		want   string
	}{
		{models.MotionForward, "F"},
		{models.MotionBackward, "B"},
		{models.MotionLeft, "L"},
		{models.MotionRight, "R"},
		{models.MotionStop, "S"},
	}

	for _, c := range cases {
		got := Encode(models.MotionCommand(c.motion))
		if string(got) != c.want {
			t.Errorf("Encode(%s) = %q, want %q", c.motion, got, c.want)
		}
	}
}

func TestEncodeSpeed(t *testing.T) {
	cases := []struct {
		value int
		want  string
	}{
		{0, "SPEED:0"},
		{7, "SPEED:7"},
		{128, "SPEED:128"},
		{255, "SPEED:255"},
	}

	for _, c := range cases {
		got := Encode(models.SpeedCommand(c.value))
		if string(got) != c.want {
			t.Errorf("Encode(speed %d) = %q, want %q", c.value, got, c.want)
		}
	}
}

func TestEncodeSpeedOutOfRangePanics(t *testing.T) {
	for _, value := range []int{-1, 256, 1000} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Encode(speed %d) did not panic", value)
				}
			}()
			Encode(models.SpeedCommand(value))
		}()
	}
}

func TestRoundTrip(t *testing.T) {
	motions := []models.Motion{
		models.MotionStop,
		models.MotionForward,
		models.MotionBackward,
		models.MotionLeft,
		models.MotionRight,
	}
	for _, m := range motions {
		cmd := models.MotionCommand(m)
		got, err := Decode(Encode(cmd))
		if err != nil {
			t.Fatalf("Decode(Encode(%s)) returned error: %v", m, err)
		}
		if got != cmd {
			t.Errorf("round trip of %s gave %v", m, got)
		}
	}

	for v := 0; v <= 255; v++ {
		cmd := models.SpeedCommand(v)
		got, err := Decode(Encode(cmd))
		if err != nil {
			t.Fatalf("Decode(Encode(speed %d)) returned error: %v", v, err)
		}
		if got != cmd {
			t.Errorf("round trip of speed %d gave %v", v, got)
		}
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	bad := []string{
		"", "X", "FF", "speed:10", "SPEED:", "SPEED:007", "SPEED:-1",
		"SPEED:256", "SPEED:12a", "SPEED:+5", " F",
	}
	for _, msg := range bad {
		if _, err := Decode([]byte(msg)); err == nil {
			t.Errorf("Decode(%q) expected error, got none", msg)
		}
	}
}

func ExampleEncode() {
	fmt.Println(string(Encode(models.SpeedCommand(128))))
	// Output: SPEED:128
}
