package lcu

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Event is one lifecycle transition of the local game client.
// Info is non-nil iff Connected is true.
type Event struct {
	Connected bool
	Info      *ClientInfo
}

// Monitor watches the game client's lockfile and emits an Event on every
// connect/disconnect transition, in order. The events channel is closed
// when Run returns.
type Monitor struct {
	path     string
	interval time.Duration
	events   chan Event
	log      *zap.Logger
}

func NewMonitor(path string, interval time.Duration, log *zap.Logger) *Monitor {
	return &Monitor{
		path:     path,
		interval: interval,
		events:   make(chan Event, 8),
		log:      log,
	}
}

func (m *Monitor) Events() <-chan Event { return m.events }

func (m *Monitor) Run(ctx context.Context) error {
	defer close(m.events)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	connected := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			info, ok := m.probe()
			if ok == connected {
				continue
			}
			connected = ok
			m.log.Info("game client lifecycle transition", zap.Bool("connected", ok))
			select {
			case m.events <- Event{Connected: ok, Info: info}:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (m *Monitor) probe() (*ClientInfo, bool) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, false
	}
	info, err := ParseLockfile(string(data))
	if err != nil {
		m.log.Warn("lockfile present but unreadable", zap.Error(err))
		return nil, false
	}
	return &info, true
}

// ParseLockfile decodes the "name:pid:port:token:protocol" line the game
// client writes next to its executable while it is running.
func ParseLockfile(contents string) (ClientInfo, error) {
	parts := strings.Split(strings.TrimSpace(contents), ":")
	if len(parts) != 5 {
		return ClientInfo{}, fmt.Errorf("lockfile has %d fields, want 5", len(parts))
	}
	port, err := strconv.Atoi(parts[2])
	if err != nil {
		return ClientInfo{}, fmt.Errorf("lockfile port %q: %v", parts[2], err)
	}
	return ClientInfo{
		Protocol: parts[4],
		Host:     "127.0.0.1",
		Port:     port,
		Token:    parts[3],
	}, nil
}
