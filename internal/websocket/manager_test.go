package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/kayung-developer/NovaTrade/internal/marketdata"
)

type fakeSubscriber struct {
	messages [][]byte
	dead     bool
	closed   bool
}

func (f *fakeSubscriber) deliver(message []byte) bool {
	if f.dead {
		return false
	}
	f.messages = append(f.messages, message)
	return true
}

func (f *fakeSubscriber) shutdown() {
	f.closed = true
}

func newTestManager() *Manager {
	feed := marketdata.NewFeed(marketdata.DefaultCatalog(), rand.NewSource(1))
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewManager(log, feed, 5*time.Second)
}

func decodeEnvelope(t *testing.T, raw []byte) envelope {
	t.Helper()

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode message: %v", err)
	}
	return env
}

func TestRegisterSendsSnapshotFirst(t *testing.T) {
	m := newTestManager()
	sub := &fakeSubscriber{}

	m.registerClient(sub)

	if len(sub.messages) != 1 {
		t.Fatalf("expected exactly one message on register, got %d", len(sub.messages))
	}

	env := decodeEnvelope(t, sub.messages[0])
	if env.Type != messageTypeSnapshot {
		t.Errorf("expected %q message, got %q", messageTypeSnapshot, env.Type)
	}
	if len(env.Data) != len(marketdata.DefaultCatalog()) {
		t.Errorf("snapshot must cover the full catalog, got %d ticks", len(env.Data))
	}
}

func TestPublishDropsUnreachableSubscriber(t *testing.T) {
	m := newTestManager()

	alive1 := &fakeSubscriber{}
	dead := &fakeSubscriber{dead: true}
	alive2 := &fakeSubscriber{}

	m.registerClient(alive1)
	m.registerClient(alive2)
	m.clients[dead] = struct{}{}

	m.publish()

	for _, sub := range []*fakeSubscriber{alive1, alive2} {
		// one snapshot from register, one update from publish
		if len(sub.messages) != 2 {
			t.Fatalf("expected 2 messages for live subscriber, got %d", len(sub.messages))
		}
		env := decodeEnvelope(t, sub.messages[1])
		if env.Type != messageTypeUpdate {
			t.Errorf("expected %q message, got %q", messageTypeUpdate, env.Type)
		}
	}

	if _, ok := m.clients[dead]; ok {
		t.Error("unreachable subscriber must be dropped from the registry")
	}
	if !dead.closed {
		t.Error("dropped subscriber must be shut down")
	}
	if len(m.clients) != 2 {
		t.Errorf("expected 2 subscribers left, got %d", len(m.clients))
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	m := newTestManager()
	sub := &fakeSubscriber{}

	m.registerClient(sub)
	m.unregisterClient(sub)

	if len(m.clients) != 0 {
		t.Fatalf("expected empty registry, got %d", len(m.clients))
	}

	// removing an already-absent subscriber is a no-op
	m.unregisterClient(sub)

	if len(m.clients) != 0 {
		t.Fatalf("expected empty registry after double unregister, got %d", len(m.clients))
	}
}

func TestPublishWithEmptyRegistry(t *testing.T) {
	m := newTestManager()
	m.publish()
}
