package link_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/roverlink/roverctl_client/internal/link"
	"github.com/roverlink/roverctl_client/internal/transport/loopback"
)

var testFilter = link.DeviceFilter{
	Name:           "ESP32-Rover",
	NamePrefix:     "ESP32",
	Service:        uuid.MustParse("4fafc201-1fb5-459e-8fcc-c5c9c331914b"),
	Characteristic: uuid.MustParse("beb5483e-36e1-4688-b7f5-ea07361b26a8"),
}

// transitionRecorder collects state changes so tests can assert on edges
// instead of polling.
type transitionRecorder struct {
	lock  sync.Mutex
	edges []string
	reach chan link.State
}

func newRecorder() *transitionRecorder {
	return &transitionRecorder{reach: make(chan link.State, 16)}
}

func (r *transitionRecorder) onChange(previous, current link.State, reason string) {
	r.lock.Lock()
	r.edges = append(r.edges, previous.String()+">"+current.String())
	r.lock.Unlock()
	r.reach <- current
}

func (r *transitionRecorder) waitFor(t *testing.T, want link.State) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-r.reach:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %s", want)
		}
	}
}

func (r *transitionRecorder) Edges() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	out := make([]string, len(r.edges))
	copy(out, r.edges)
	return out
}

func TestConnectReachesActive(t *testing.T) {
	transport := loopback.New()
	rec := newRecorder()
	session := link.NewSession(transport, testFilter, nil, rec.onChange)

	if err := session.Connect(context.Background()); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	if session.State() != link.StateActive {
		t.Fatalf("state after connect = %s, want active", session.State())
	}
	if session.ConnectedSince().IsZero() {
		t.Error("ConnectedSince is zero after successful connect")
	}

	edges := rec.Edges()
	want := []string{"disconnected>connecting", "connecting>active"}
	if len(edges) != len(want) || edges[0] != want[0] || edges[1] != want[1] {
		t.Errorf("transitions = %v, want %v", edges, want)
	}
}

func TestConnectDiscoveryFailure(t *testing.T) {
	transport := loopback.New()
	transport.FailDiscovery(true)
	session := link.NewSession(transport, testFilter, nil, nil)

	err := session.Connect(context.Background())
	if !errors.Is(err, link.ErrDeviceNotFound) {
		t.Fatalf("Connect error = %v, want ErrDeviceNotFound", err)
	}
	if session.State() != link.StateDisconnected {
		t.Errorf("state after failed discovery = %s, want disconnected", session.State())
	}
}

func TestConnectFilterMismatch(t *testing.T) {
	transport := loopback.New()
	transport.DeviceName = "SomeOtherBoard"
	session := link.NewSession(transport, testFilter, nil, nil)

	if err := session.Connect(context.Background()); !errors.Is(err, link.ErrDeviceNotFound) {
		t.Fatalf("Connect error = %v, want ErrDeviceNotFound", err)
	}
}

func TestConnectPrefixMatch(t *testing.T) {
	transport := loopback.New()
	transport.DeviceName = "ESP32-S3-Dev"
	session := link.NewSession(transport, testFilter, nil, nil)

	if err := session.Connect(context.Background()); err != nil {
		t.Fatalf("Connect with prefix-matching name returned error: %v", err)
	}
}

func TestConnectHandshakeFailure(t *testing.T) {
	transport := loopback.New()
	transport.FailConnect(true)
	session := link.NewSession(transport, testFilter, nil, nil)

	err := session.Connect(context.Background())
	if !errors.Is(err, link.ErrLinkEstablishFailed) {
		t.Fatalf("Connect error = %v, want ErrLinkEstablishFailed", err)
	}
	if session.State() != link.StateDisconnected {
		t.Errorf("state after failed handshake = %s, want disconnected", session.State())
	}
}

func TestSendWhileDisconnected(t *testing.T) {
	session := link.NewSession(loopback.New(), testFilter, nil, nil)

	if err := session.Send([]byte("F")); !errors.Is(err, link.ErrNotConnected) {
		t.Fatalf("Send while disconnected = %v, want ErrNotConnected", err)
	}
}

func TestSendAndWriteFailure(t *testing.T) {
	transport := loopback.New()
	session := link.NewSession(transport, testFilter, nil, nil)

	if err := session.Connect(context.Background()); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}

	if err := session.Send([]byte("F")); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	conn := transport.Conn()
	conn.FailWrites(true)
	if err := session.Send([]byte("B")); !errors.Is(err, link.ErrWriteFailed) {
		t.Fatalf("Send with failing transport = %v, want ErrWriteFailed", err)
	}
	// Write failure is recovered locally; the session stays active.
	if session.State() != link.StateActive {
		t.Errorf("state after write failure = %s, want active", session.State())
	}
}

func TestDisconnectSendsBestEffortStop(t *testing.T) {
	transport := loopback.New()
	rec := newRecorder()
	session := link.NewSession(transport, testFilter, nil, rec.onChange)

	if err := session.Connect(context.Background()); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	conn := transport.Conn()

	session.Disconnect()
	rec.waitFor(t, link.StateDisconnected)

	writes := conn.WriteStrings()
	stops := 0
	for _, w := range writes {
		if w == "S" {
			stops++
		}
	}
	if stops != 1 {
		t.Errorf("teardown wrote %d stops (%v), want exactly 1", stops, writes)
	}
	if session.State() != link.StateDisconnected {
		t.Errorf("state after disconnect = %s, want disconnected", session.State())
	}
	if !session.ConnectedSince().IsZero() {
		t.Error("ConnectedSince not cleared on disconnect")
	}
}

func TestUnsolicitedLossRoutesThroughTeardown(t *testing.T) {
	transport := loopback.New()
	rec := newRecorder()
	session := link.NewSession(transport, testFilter, nil, rec.onChange)

	if err := session.Connect(context.Background()); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}

	transport.Conn().DropLink()
	rec.waitFor(t, link.StateDisconnected)

	if session.State() != link.StateDisconnected {
		t.Errorf("state after link loss = %s, want disconnected", session.State())
	}
	if err := session.Send([]byte("F")); !errors.Is(err, link.ErrNotConnected) {
		t.Errorf("Send after link loss = %v, want ErrNotConnected", err)
	}
}

func TestDisconnectCancelsInflightConnect(t *testing.T) {
	transport := loopback.New()
	gate := make(chan struct{})
	transport.HoldConnect(gate)
	session := link.NewSession(transport, testFilter, nil, nil)

	errCh := make(chan error, 1)
	go func() {
		errCh <- session.Connect(context.Background())
	}()

	deadline := time.After(2 * time.Second)
	for session.State() != link.StateConnecting {
		select {
		case <-deadline:
			t.Fatal("session never reached connecting")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// Operator changes their mind mid-handshake.
	session.Disconnect()
	close(gate)

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("cancelled connect attempt reported success")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("connect attempt never returned")
	}

	// A late handshake success must not resurrect the session.
	if session.State() != link.StateDisconnected {
		t.Errorf("state after cancelled connect = %s, want disconnected", session.State())
	}
}

func TestConnectWhileNotDisconnected(t *testing.T) {
	transport := loopback.New()
	session := link.NewSession(transport, testFilter, nil, nil)

	if err := session.Connect(context.Background()); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	if err := session.Connect(context.Background()); err == nil {
		t.Error("second Connect while active did not report an error")
	}
}

func TestReconnectAfterDisconnect(t *testing.T) {
	transport := loopback.New()
	rec := newRecorder()
	session := link.NewSession(transport, testFilter, nil, rec.onChange)

	if err := session.Connect(context.Background()); err != nil {
		t.Fatalf("first Connect returned error: %v", err)
	}
	session.Disconnect()
	rec.waitFor(t, link.StateDisconnected)

	if err := session.Connect(context.Background()); err != nil {
		t.Fatalf("reconnect returned error: %v", err)
	}
	if session.State() != link.StateActive {
		t.Errorf("state after reconnect = %s, want active", session.State())
	}
}
