package fake

import (
	"context"
	"sync"

	"github.com/coreman2200/funtimes-nuimo/internal/device"
)

// Connector hands out Driver, creating it on first use. With Fresh set,
// every Connect returns a new driver.
type Connector struct {
	Driver *Driver
	Fresh  bool
	Err    error

	mu      sync.Mutex
	ids     []string
	drivers []*Driver
}

func (c *Connector) Connect(ctx context.Context, id string) (device.Device, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, id)
	if c.Err != nil {
		return nil, c.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.Driver == nil || c.Fresh {
		c.Driver = New()
	}
	c.drivers = append(c.drivers, c.Driver)
	return c.Driver, nil
}

// IDs returns the id passed to every Connect call.
func (c *Connector) IDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.ids...)
}

// Drivers returns the driver handed out by every successful Connect.
func (c *Connector) Drivers() []*Driver {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Driver(nil), c.drivers...)
}

// SetErr makes later Connect calls fail with err (nil to clear).
func (c *Connector) SetErr(err error) {
	c.mu.Lock()
	c.Err = err
	c.mu.Unlock()
}
