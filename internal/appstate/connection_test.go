package appstate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/lcu-tools/dodgewatch/internal/lcu"
)

func newTestConnection(t *testing.T) *Connection {
	t.Helper()
	return NewConnection(func(info lcu.ClientInfo) lcu.Client {
		t.Fatalf("factory should not be called in this test")
		return nil
	}, zaptest.NewLogger(t))
}

// helper: wait for Connected() to reach want without racing the consumer
func waitConnected(t *testing.T, c *Connection, want bool, within time.Duration) {
	t.Helper()
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		if c.Connected() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("connection state never became %v", want)
}

func TestConnection_LastEventWins(t *testing.T) {
	c := newTestConnection(t)
	events := make(chan lcu.Event)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = c.Consume(ctx, events)
		close(done)
	}()

	// Concurrent readers must never block or corrupt the writer.
	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				_ = c.Connected()
				_, _ = c.Info()
			}
		}
	}()

	info := &lcu.ClientInfo{Port: 4242, Token: "tok"}
	seq := []lcu.Event{
		{Connected: true, Info: info},
		{Connected: false},
		{Connected: true, Info: info},
		{Connected: false},
		{Connected: true, Info: info},
	}
	for _, ev := range seq {
		events <- ev
	}
	waitConnected(t, c, true, time.Second)

	got, ok := c.Info()
	require.True(t, ok)
	require.Equal(t, 4242, got.Port)

	close(stop)
	wg.Wait()
	close(events)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop on channel close")
	}
}

func TestConnection_InfoPresentOnlyWhileConnected(t *testing.T) {
	c := newTestConnection(t)
	events := make(chan lcu.Event)
	go func() { _ = c.Consume(context.Background(), events) }()

	events <- lcu.Event{Connected: true, Info: &lcu.ClientInfo{Port: 1}}
	waitConnected(t, c, true, time.Second)
	_, ok := c.Info()
	require.True(t, ok)

	events <- lcu.Event{Connected: false}
	waitConnected(t, c, false, time.Second)
	_, ok = c.Info()
	require.False(t, ok)
	close(events)
}

func TestConnection_GatewayWhileDisconnected(t *testing.T) {
	c := newTestConnection(t)
	_, err := c.Gateway()
	require.ErrorIs(t, err, lcu.ErrGatewayUnavailable)
}

func TestConnection_SubscribeDeliversCurrentThenTransitions(t *testing.T) {
	c := newTestConnection(t)
	events := make(chan lcu.Event)
	go func() { _ = c.Consume(context.Background(), events) }()

	updates := c.Subscribe("ui-1")
	select {
	case got := <-updates:
		require.False(t, got, "initial status should be disconnected")
	case <-time.After(time.Second):
		t.Fatal("no initial status delivered")
	}

	events <- lcu.Event{Connected: true, Info: &lcu.ClientInfo{Port: 1}}
	select {
	case got := <-updates:
		require.True(t, got)
	case <-time.After(time.Second):
		t.Fatal("transition not delivered")
	}

	c.Unsubscribe("ui-1")
	_, open := <-updates
	require.False(t, open, "channel should close on unsubscribe")
	close(events)
}

func TestConnection_SlowSubscriberIsDropped(t *testing.T) {
	c := newTestConnection(t)
	events := make(chan lcu.Event)
	go func() { _ = c.Consume(context.Background(), events) }()

	updates := c.Subscribe("slow")
	// Fill the buffer without draining: initial value + 8 transitions.
	for i := 0; i < 9; i++ {
		connected := i%2 == 0
		var info *lcu.ClientInfo
		if connected {
			info = &lcu.ClientInfo{Port: 1}
		}
		events <- lcu.Event{Connected: connected, Info: info}
	}
	waitClosed := func() bool {
		deadline := time.Now().Add(time.Second)
		for time.Now().Before(deadline) {
			select {
			case _, open := <-updates:
				if !open {
					return true
				}
			default:
				time.Sleep(time.Millisecond)
			}
		}
		return false
	}
	require.True(t, waitClosed(), "slow subscriber should have been dropped and closed")
	close(events)
}
