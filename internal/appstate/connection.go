// Package appstate holds the process-wide connection state shared between
// the lifecycle consumer, the HTTP handlers, and the UI status stream.
package appstate

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/lcu-tools/dodgewatch/internal/lcu"
)

// ClientFactory builds a gateway client from the current endpoint info.
type ClientFactory func(lcu.ClientInfo) lcu.Client

// Connection tracks whether the game client is reachable. The consumer
// goroutine fed by Consume is the only writer of the connected flag; every
// transition is fanned out to subscribers in arrival order.
type Connection struct {
	mu        sync.RWMutex
	connected bool
	info      *lcu.ClientInfo
	subs      map[string]chan bool

	factory ClientFactory
	log     *zap.Logger
}

func NewConnection(factory ClientFactory, log *zap.Logger) *Connection {
	return &Connection{
		subs:    make(map[string]chan bool),
		factory: factory,
		log:     log,
	}
}

func (c *Connection) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *Connection) Info() (lcu.ClientInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.info == nil {
		return lcu.ClientInfo{}, false
	}
	return *c.info, true
}

// Gateway returns a client for the current endpoint, or
// lcu.ErrGatewayUnavailable when the game client is not connected.
func (c *Connection) Gateway() (lcu.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.connected || c.info == nil {
		return nil, lcu.ErrGatewayUnavailable
	}
	return c.factory(*c.info), nil
}

// Consume applies lifecycle events until the channel closes or ctx is
// cancelled. Events are applied strictly in channel order.
func (c *Connection) Consume(ctx context.Context, events <-chan lcu.Event) error {
	for {
		select {
		case <-ctx.Done():
			c.closeSubs()
			return nil
		case ev, ok := <-events:
			if !ok {
				c.closeSubs()
				return nil
			}
			c.apply(ev)
		}
	}
}

func (c *Connection) apply(ev lcu.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = ev.Connected
	if ev.Connected {
		c.info = ev.Info
	} else {
		c.info = nil
	}
	c.log.Debug("connection state applied", zap.Bool("connected", ev.Connected))
	for id, ch := range c.subs {
		select {
		case ch <- ev.Connected:
		default:
			// Subscriber is slow/full - drop them.
			c.log.Warn("dropping slow status subscriber", zap.String("subscriber", id))
			close(ch)
			delete(c.subs, id)
		}
	}
}

// Subscribe registers a status listener. The current value is delivered
// immediately, then every transition until Unsubscribe or the subscriber
// falls behind.
func (c *Connection) Subscribe(id string) <-chan bool {
	ch := make(chan bool, 8)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs[id] = ch
	ch <- c.connected
	return ch
}

func (c *Connection) Unsubscribe(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ch, ok := c.subs[id]; ok {
		close(ch)
		delete(c.subs, id)
	}
}

func (c *Connection) closeSubs() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
}
