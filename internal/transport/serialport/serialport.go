package serialport

import (
	"bufio"
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/roverlink/roverctl_client/internal/config"
	"github.com/roverlink/roverctl_client/internal/link"
)

// Transport reaches the rover's command characteristic through its USB/UART
// bridge. Discovery enumerates serial ports and matches the USB product
// string against the device filter; an explicitly configured port skips
// enumeration.
type Transport struct {
	cfg config.SerialConfig
}

func New(cfg config.SerialConfig) *Transport {
	return &Transport{cfg: cfg}
}

func (t *Transport) Discover(ctx context.Context, filter link.DeviceFilter) (link.DeviceInfo, error) {
	if err := ctx.Err(); err != nil {
		return link.DeviceInfo{}, err
	}

	if t.cfg.Port != "" {
		return link.DeviceInfo{Name: filter.Name, Address: t.cfg.Port}, nil
	}

	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return link.DeviceInfo{}, fmt.Errorf("enumerating serial ports: %w", err)
	}

	for _, port := range ports {
		if !port.IsUSB {
			continue
		}
		logrus.Debugf("found usb serial port %s (%s)", port.Name, port.Product)
		if filter.Matches(port.Product) {
			return link.DeviceInfo{Name: port.Product, Address: port.Name}, nil
		}
	}

	return link.DeviceInfo{}, fmt.Errorf("no serial device matched %q/%q", filter.Name, filter.NamePrefix)
}

func (t *Transport) Connect(ctx context.Context, device link.DeviceInfo) (link.ConnIFace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	port, err := serial.Open(device.Address, &serial.Mode{BaudRate: t.cfg.Baud})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", device.Address, err)
	}

	conn := &Conn{
		port:   port,
		notify: make(chan string, 16),
		done:   make(chan struct{}),
	}
	go conn.readLoop()

	logrus.Infof("serial link up on %s at %d baud", device.Address, t.cfg.Baud)
	return conn, nil
}

// Conn is one open serial link. The read loop forwards newline-delimited
// firmware output as diagnostic notifications and flags link loss when the
// port errors out.
type Conn struct {
	writeLock sync.Mutex
	port      serial.Port

	notify   chan string
	done     chan struct{}
	downOnce sync.Once
}

func (c *Conn) Write(data []byte) error {
	c.writeLock.Lock()
	defer c.writeLock.Unlock()

	n, err := c.port.Write(data)
	if err != nil {
		return fmt.Errorf("serial write: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("serial write: short write %d of %d bytes", n, len(data))
	}
	return nil
}

func (c *Conn) Notifications() <-chan string {
	return c.notify
}

func (c *Conn) Done() <-chan struct{} {
	return c.done
}

func (c *Conn) Close() error {
	c.markDown()
	return c.port.Close()
}

func (c *Conn) readLoop() {
	scanner := bufio.NewScanner(c.port)
	for scanner.Scan() {
		select {
		case c.notify <- scanner.Text():
		default:
			// Diagnostics are display-only; drop when nobody is reading.
		}
	}
	if err := scanner.Err(); err != nil {
		logrus.Debugf("serial read loop ended: %s", err)
	}
	c.markDown()
}

func (c *Conn) markDown() {
	c.downOnce.Do(func() { close(c.done) })
}
