package loopback

import (
	"context"
	"fmt"
	"sync"

	"github.com/roverlink/roverctl_client/internal/link"
)

const DefaultDeviceName = "ESP32-Rover"

// Transport is an in-process rover double. It answers discovery with a
// single fixed device, records every write, and can be told to fail
// discovery, handshakes, or writes, or to drop the link mid-session.
type Transport struct {
	lock sync.Mutex

	DeviceName string

	failDiscovery bool
	failConnect   bool

	// holdConnect, when set, blocks Connect until the channel is closed or
	// the attempt context ends. Lets tests race a disconnect against an
	// in-flight handshake.
	holdConnect chan struct{}

	conn *Conn
}

func New() *Transport {
	return &Transport{DeviceName: DefaultDeviceName}
}

func (t *Transport) FailDiscovery(fail bool) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.failDiscovery = fail
}

func (t *Transport) FailConnect(fail bool) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.failConnect = fail
}

func (t *Transport) HoldConnect(gate chan struct{}) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.holdConnect = gate
}

// Conn returns the most recently established connection, or nil.
func (t *Transport) Conn() *Conn {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.conn
}

func (t *Transport) Discover(ctx context.Context, filter link.DeviceFilter) (link.DeviceInfo, error) {
	t.lock.Lock()
	fail := t.failDiscovery
	name := t.DeviceName
	t.lock.Unlock()

	if err := ctx.Err(); err != nil {
		return link.DeviceInfo{}, err
	}
	if fail || !filter.Matches(name) {
		return link.DeviceInfo{}, fmt.Errorf("no device matched %q/%q", filter.Name, filter.NamePrefix)
	}
	return link.DeviceInfo{Name: name, Address: "loopback0"}, nil
}

func (t *Transport) Connect(ctx context.Context, device link.DeviceInfo) (link.ConnIFace, error) {
	t.lock.Lock()
	fail := t.failConnect
	gate := t.holdConnect
	t.lock.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fail {
		return nil, fmt.Errorf("handshake with %s refused", device.Address)
	}

	conn := &Conn{
		notify: make(chan string, 16),
		done:   make(chan struct{}),
	}

	t.lock.Lock()
	t.conn = conn
	t.lock.Unlock()
	return conn, nil
}

// Conn records writes and lets tests inject write failures, diagnostic
// notifications, and unsolicited link loss.
type Conn struct {
	lock       sync.Mutex
	writes     [][]byte
	failWrites bool
	closed     bool

	notify   chan string
	done     chan struct{}
	downOnce sync.Once
}

func (c *Conn) Write(data []byte) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return fmt.Errorf("connection closed")
	}
	if c.failWrites {
		return fmt.Errorf("simulated write failure")
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	c.writes = append(c.writes, buf)
	return nil
}

func (c *Conn) Notifications() <-chan string {
	return c.notify
}

func (c *Conn) Done() <-chan struct{} {
	return c.done
}

func (c *Conn) Close() error {
	c.lock.Lock()
	c.closed = true
	c.lock.Unlock()
	c.downOnce.Do(func() { close(c.done) })
	return nil
}

func (c *Conn) FailWrites(fail bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.failWrites = fail
}

// DropLink simulates the rover going out of range.
func (c *Conn) DropLink() {
	c.downOnce.Do(func() { close(c.done) })
}

// Notify feeds one diagnostic line to the session, as rover firmware does
// over the notify characteristic.
func (c *Conn) Notify(msg string) {
	select {
	case c.notify <- msg:
	default:
	}
}

// Writes returns a copy of everything written so far.
func (c *Conn) Writes() [][]byte {
	c.lock.Lock()
	defer c.lock.Unlock()
	out := make([][]byte, len(c.writes))
	copy(out, c.writes)
	return out
}

// WriteStrings returns the recorded writes as strings, oldest first.
func (c *Conn) WriteStrings() []string {
	writes := c.Writes()
	out := make([]string, len(writes))
	for i := range writes {
		out[i] = string(writes[i])
	}
	return out
}
