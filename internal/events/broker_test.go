package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type captureBroadcaster struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (c *captureBroadcaster) Broadcast(p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = append(c.payloads, p)
}

func (c *captureBroadcaster) events(t *testing.T) []Event {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, 0, len(c.payloads))
	for _, p := range c.payloads {
		var e Event
		require.NoError(t, json.Unmarshal(p, &e))
		out = append(out, e)
	}
	return out
}

// memBus delivers published payloads to the subscriber synchronously.
type memBus struct {
	mu        sync.Mutex
	available bool
	published [][]byte
	handler   func([]byte)
	failWith  error
}

func (b *memBus) Available() bool { return b.available }

func (b *memBus) Publish(_ context.Context, _ string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failWith != nil {
		return b.failWith
	}
	b.published = append(b.published, payload)
	return nil
}

func (b *memBus) Subscribe(ctx context.Context, _ string, handle func([]byte)) error {
	b.mu.Lock()
	b.handler = handle
	b.mu.Unlock()
	<-ctx.Done()
	return nil
}

func (b *memBus) deliver(payload []byte) {
	b.mu.Lock()
	h := b.handler
	b.mu.Unlock()
	if h != nil {
		h(payload)
	}
}

func (b *memBus) subscribed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handler != nil
}

func TestBroker_PublishFansOutLocallyAndToBus(t *testing.T) {
	local := &captureBroadcaster{}
	bus := &memBus{available: true}
	b := NewBroker(local, bus, nil)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return fixed }

	uid := uuid.New()
	pid := uuid.New()
	b.Publish(context.Background(), ProjectEvent(ProjectCreated, uid, pid))

	got := local.events(t)
	require.Len(t, got, 1)
	require.Equal(t, ProjectCreated, got[0].Type)
	require.Equal(t, uid, got[0].UserID)
	require.Equal(t, pid, *got[0].ProjectID)
	require.True(t, fixed.Equal(got[0].Timestamp))
	require.Len(t, bus.published, 1)
}

func TestBroker_BusFailureDoesNotBlockLocalDelivery(t *testing.T) {
	local := &captureBroadcaster{}
	bus := &memBus{available: true, failWith: errors.New("down")}
	b := NewBroker(local, bus, nil)

	b.Publish(context.Background(), ProfileEvent(ProfileUpdated, uuid.New()))
	require.Len(t, local.events(t), 1)
}

func TestBroker_RelaySkipsOwnEvents(t *testing.T) {
	local := &captureBroadcaster{}
	bus := &memBus{available: true}
	b := NewBroker(local, bus, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = b.Relay(ctx)
	}()
	require.Eventually(t, bus.subscribed, time.Second, 5*time.Millisecond)

	own, err := json.Marshal(Event{Type: ProfileUpdated, UserID: uuid.New(), Origin: b.origin})
	require.NoError(t, err)
	foreign, err := json.Marshal(Event{Type: PictureRemoved, UserID: uuid.New(), Origin: "other"})
	require.NoError(t, err)

	bus.deliver(own)
	bus.deliver(foreign)
	bus.deliver([]byte("not json"))

	cancel()
	<-done

	got := local.events(t)
	require.Len(t, got, 1)
	require.Equal(t, PictureRemoved, got[0].Type)
}

func TestBroker_RelayWithoutBus(t *testing.T) {
	b := NewBroker(&captureBroadcaster{}, &memBus{available: false}, nil)
	require.NoError(t, b.Relay(context.Background()))
}
