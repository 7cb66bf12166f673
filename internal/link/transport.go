package link

import (
	"context"

	"github.com/google/uuid"
)

// DeviceFilter narrows discovery to the rover we want: exact name match or
// name prefix, plus the service and characteristic the command channel
// lives behind.
type DeviceFilter struct {
	Name           string
	NamePrefix     string
	Service        uuid.UUID
	Characteristic uuid.UUID
}

// Matches reports whether a discovered device name satisfies the filter.
func (f DeviceFilter) Matches(name string) bool {
	if name == "" {
		return false
	}
	if f.Name != "" && name == f.Name {
		return true
	}
	return f.NamePrefix != "" && len(name) >= len(f.NamePrefix) && name[:len(f.NamePrefix)] == f.NamePrefix
}

// DeviceInfo identifies one discovered rover.
type DeviceInfo struct {
	Name    string
	Address string
}

// TransportIFace is the radio layer the session drives. Implementations:
// serialport for a real rover behind a USB/UART bridge, loopback for tests
// and demo mode.
type TransportIFace interface {
	Discover(ctx context.Context, filter DeviceFilter) (DeviceInfo, error)
	Connect(ctx context.Context, device DeviceInfo) (ConnIFace, error)
}

// ConnIFace is one established link. Notifications carry opaque diagnostic
// text from the rover; they are never parsed into domain state. Done is
// closed when the transport detects unsolicited link loss.
type ConnIFace interface {
	Write(data []byte) error
	Notifications() <-chan string
	Done() <-chan struct{}
	Close() error
}
