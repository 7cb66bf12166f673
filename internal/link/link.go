package link

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/roverlink/roverctl_client/internal/models"
	"github.com/roverlink/roverctl_client/internal/wire"
)

// State is the connection state of the session.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateActive
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// StateChangeFunc is called after every state transition, outside the
// session lock.
type StateChangeFunc func(previous, current State, reason string)

// Session owns the single outbound channel to the rover and the connection
// state machine. Legal transitions only: disconnected -> connecting ->
// active -> disconnected, plus connecting -> disconnected on failure or
// cancellation.
type Session struct {
	lock      sync.RWMutex
	transport TransportIFace
	filter    DeviceFilter
	clock     func() time.Time
	onChange  StateChangeFunc

	state       State
	conn        ConnIFace
	device      DeviceInfo
	connectedAt time.Time

	// generation invalidates in-flight connect attempts and stale watch
	// goroutines after a cancel or teardown.
	generation    int
	connectCancel context.CancelFunc
}

func NewSession(transport TransportIFace, filter DeviceFilter, clock func() time.Time, onChange StateChangeFunc) *Session {
	if clock == nil {
		clock = time.Now
	}
	return &Session{
		transport: transport,
		filter:    filter,
		clock:     clock,
		onChange:  onChange,
		state:     StateDisconnected,
	}
}

func (s *Session) State() State {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.state
}

// ConnectedSince returns the start time of the active session, or the zero
// time when there is none.
func (s *Session) ConnectedSince() time.Time {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.connectedAt
}

func (s *Session) Device() DeviceInfo {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.device
}

// Connect runs discovery and handshake. On failure the session returns to
// disconnected and the error carries ErrDeviceNotFound or
// ErrLinkEstablishFailed; neither is retried automatically.
func (s *Session) Connect(ctx context.Context) error {
	s.lock.Lock()
	if s.state != StateDisconnected {
		state := s.state
		s.lock.Unlock()
		return fmt.Errorf("connect requested while %s", state)
	}
	s.state = StateConnecting
	s.generation++
	gen := s.generation
	attemptCtx, cancel := context.WithCancel(ctx)
	s.connectCancel = cancel
	s.lock.Unlock()
	defer cancel()

	s.emit(StateDisconnected, StateConnecting, "connect requested")

	logrus.Infof("discovering device %q (prefix %q)", s.filter.Name, s.filter.NamePrefix)
	device, err := s.transport.Discover(attemptCtx, s.filter)
	if err != nil {
		return s.failConnect(gen, fmt.Errorf("%w: %s", ErrDeviceNotFound, err))
	}

	logrus.Infof("connecting to %s at %s", device.Name, device.Address)
	conn, err := s.transport.Connect(attemptCtx, device)
	if err != nil {
		return s.failConnect(gen, fmt.Errorf("%w: %s", ErrLinkEstablishFailed, err))
	}

	s.lock.Lock()
	if s.generation != gen || s.state != StateConnecting {
		// A disconnect raced the handshake; a late success must not
		// resurrect the session.
		s.lock.Unlock()
		conn.Close()
		return fmt.Errorf("%w: connect attempt cancelled", ErrLinkEstablishFailed)
	}
	s.conn = conn
	s.device = device
	s.connectedAt = s.clock()
	s.state = StateActive
	s.connectCancel = nil
	s.lock.Unlock()

	s.emit(StateConnecting, StateActive, "link established")

	go s.watch(conn, gen)
	return nil
}

func (s *Session) failConnect(gen int, err error) error {
	s.lock.Lock()
	if s.generation != gen || s.state != StateConnecting {
		s.lock.Unlock()
		return err
	}
	s.state = StateDisconnected
	s.connectCancel = nil
	s.lock.Unlock()

	s.emit(StateConnecting, StateDisconnected, "connect failed")
	return err
}

// Disconnect tears down an active link, or cancels an in-flight connect
// attempt. Safe to call in any state.
func (s *Session) Disconnect() {
	s.lock.Lock()
	switch s.state {
	case StateConnecting:
		cancel := s.connectCancel
		s.connectCancel = nil
		s.generation++
		s.state = StateDisconnected
		s.lock.Unlock()
		if cancel != nil {
			cancel()
		}
		s.emit(StateConnecting, StateDisconnected, "connect cancelled")
	case StateActive:
		gen := s.generation
		s.lock.Unlock()
		s.teardown(gen, "disconnect requested")
	default:
		s.lock.Unlock()
	}
}

// Send writes encoded bytes to the rover. Legal only while active;
// anywhere else it is a no-op reporting ErrNotConnected.
func (s *Session) Send(data []byte) error {
	s.lock.RLock()
	state := s.state
	conn := s.conn
	s.lock.RUnlock()

	if state != StateActive || conn == nil {
		return ErrNotConnected
	}

	if err := conn.Write(data); err != nil {
		return fmt.Errorf("%w: %s", ErrWriteFailed, err)
	}
	return nil
}

// watch routes unsolicited link loss through the same teardown as an
// explicit disconnect, and logs rover notifications as diagnostic text.
func (s *Session) watch(conn ConnIFace, gen int) {
	notifications := conn.Notifications()
	for {
		select {
		case <-conn.Done():
			s.teardown(gen, "link lost")
			return
		case msg, ok := <-notifications:
			if !ok {
				notifications = nil
				continue
			}
			logrus.Infof("rover: %s", msg)
		}
	}
}

// teardown is the single exit path from active. It sends one best-effort
// stop before closing the transport; the link may already be gone, so a
// failure there is swallowed.
func (s *Session) teardown(gen int, reason string) {
	s.lock.Lock()
	if s.generation != gen || s.state != StateActive {
		s.lock.Unlock()
		return
	}
	conn := s.conn
	s.conn = nil
	s.device = DeviceInfo{}
	s.connectedAt = time.Time{}
	s.generation++
	s.state = StateDisconnected
	s.lock.Unlock()

	if conn != nil {
		if err := conn.Write(wire.Encode(models.MotionCommand(models.MotionStop))); err != nil {
			logrus.Debugf("best-effort stop on teardown failed: %s", err)
		}
		if err := conn.Close(); err != nil {
			logrus.Debugf("closing transport failed: %s", err)
		}
	}

	s.emit(StateActive, StateDisconnected, reason)
}

func (s *Session) emit(previous, current State, reason string) {
	logrus.Infof("link %s -> %s: %s", previous, current, reason)
	if s.onChange != nil {
		s.onChange(previous, current, reason)
	}
}
