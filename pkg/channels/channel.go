package channels

import (
	"context"
	"sync/atomic"

	"github.com/tinyland-inc/mediaclaw/pkg/bus"
)

// Channel is a connection to a chat platform that feeds observed messages
// onto the bus.
type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	IsRunning() bool
}

type BaseChannel struct {
	bus     *bus.MessageBus
	name    string
	running atomic.Bool
}

func NewBaseChannel(name string, mb *bus.MessageBus) *BaseChannel {
	return &BaseChannel{
		bus:  mb,
		name: name,
	}
}

func (c *BaseChannel) Name() string {
	return c.name
}

func (c *BaseChannel) IsRunning() bool {
	return c.running.Load()
}

func (c *BaseChannel) SetRunning(running bool) {
	c.running.Store(running)
}

// Publish forwards an observed message to the bus. Drops are logged by the
// bus itself.
func (c *BaseChannel) Publish(ctx context.Context, msg *bus.Message) error {
	return c.bus.PublishInbound(ctx, msg)
}
