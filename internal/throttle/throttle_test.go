package throttle

import (
	"testing"
	"time"

	"github.com/roverlink/roverctl_client/internal/models"
)

var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestAcceptFirstCommand(t *testing.T) {
	th := New(100 * time.Millisecond)
	if !th.Accept(models.MotionCommand(models.MotionForward), base) {
		t.Fatal("first command was suppressed")
	}
}

func TestSuppressIdenticalWithinWindow(t *testing.T) {
	th := New(100 * time.Millisecond)
	cmd := models.MotionCommand(models.MotionForward)

	if !th.Accept(cmd, base) {
		t.Fatal("first command was suppressed")
	}
	if th.Accept(cmd, base.Add(50*time.Millisecond)) {
		t.Error("identical command inside window was accepted")
	}
	if th.Accept(cmd, base.Add(100*time.Millisecond)) {
		t.Error("identical command exactly at window edge was accepted")
	}
	if !th.Accept(cmd, base.Add(101*time.Millisecond)) {
		t.Error("identical command past window was suppressed")
	}
}

// A fixed command is accepted at most once per window, no matter how fast
// it repeats.
func TestThrottleMonotonicity(t *testing.T) {
	th := New(100 * time.Millisecond)
	cmd := models.MotionCommand(models.MotionLeft)

	accepted := 0
	for i := 0; i < 50; i++ {
		if th.Accept(cmd, base.Add(time.Duration(i)*2*time.Millisecond)) {
			accepted++
		}
	}
	if accepted != 1 {
		t.Errorf("accepted %d times within one window, want 1", accepted)
	}
}

// A change of command is never suppressed, regardless of timing.
func TestAlternatingCommandsAlwaysAccepted(t *testing.T) {
	th := New(100 * time.Millisecond)
	a := models.MotionCommand(models.MotionForward)
	b := models.MotionCommand(models.MotionBackward)

	for i := 0; i < 20; i++ {
		cmd := a
		if i%2 == 1 {
			cmd = b
		}
		if !th.Accept(cmd, base.Add(time.Duration(i)*time.Millisecond)) {
			t.Fatalf("alternating command %d (%s) was suppressed", i, cmd)
		}
	}
}

// Speed changes share throttle state with motion commands: a different
// value always goes out, an identical repeat inside the window does not.
func TestSpeedSharesThrottleState(t *testing.T) {
	th := New(100 * time.Millisecond)

	if !th.Accept(models.MotionCommand(models.MotionForward), base) {
		t.Fatal("motion command was suppressed")
	}
	if !th.Accept(models.SpeedCommand(128), base.Add(time.Millisecond)) {
		t.Error("speed change right after motion was suppressed")
	}
	if th.Accept(models.SpeedCommand(128), base.Add(2*time.Millisecond)) {
		t.Error("identical speed repeat inside window was accepted")
	}
	if !th.Accept(models.SpeedCommand(129), base.Add(3*time.Millisecond)) {
		t.Error("changed speed value was suppressed")
	}
}

func TestRecordSuppressesFollowingRepeat(t *testing.T) {
	th := New(100 * time.Millisecond)
	stop := models.MotionCommand(models.MotionStop)

	th.Record(stop, base)
	if th.Accept(stop, base.Add(10*time.Millisecond)) {
		t.Error("stop repeat right after recorded stop was accepted")
	}
}

func TestResetClearsState(t *testing.T) {
	th := New(100 * time.Millisecond)
	cmd := models.MotionCommand(models.MotionRight)

	if !th.Accept(cmd, base) {
		t.Fatal("first command was suppressed")
	}
	th.Reset()
	if !th.Accept(cmd, base.Add(time.Millisecond)) {
		t.Error("command after reset was suppressed")
	}
}
