package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/kayung-developer/NovaTrade/internal/marketdata"
)

const (
	messageTypeSnapshot = "market_snapshot"
	messageTypeUpdate   = "market_update"
)

type envelope struct {
	Type string            `json:"type"`
	Data []marketdata.Tick `json:"data"`
}

// subscriber is the seam between the registry and the wire: a live
// connection that either accepts a message or is considered gone.
type subscriber interface {
	deliver(message []byte) bool
	shutdown()
}

// Manager keeps the registry of live subscribers and runs the publish
// cycle: one fresh tick snapshot from the feed, fanned out to every
// registered subscriber on a fixed interval. A subscriber that cannot
// receive is dropped; the cycle never aborts for the others.
type Manager struct {
	clients    map[subscriber]struct{}
	mu         sync.Mutex
	register   chan subscriber
	unregister chan subscriber
	feed       *marketdata.Feed
	interval   time.Duration
	log        *slog.Logger
}

func NewManager(log *slog.Logger, feed *marketdata.Feed, interval time.Duration) *Manager {
	return &Manager{
		clients:    make(map[subscriber]struct{}),
		register:   make(chan subscriber),
		unregister: make(chan subscriber),
		feed:       feed,
		interval:   interval,
		log:        log,
	}
}

func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info("broadcast loop stopping...")
			m.closeAll()
			return
		case client := <-m.register:
			m.registerClient(client)
		case client := <-m.unregister:
			m.unregisterClient(client)
		case <-ticker.C:
			m.publish()
		}
	}
}

func (m *Manager) Register(client *Client) {
	m.register <- client
}

func (m *Manager) Unregister(client *Client) {
	m.unregister <- client
}

// registerClient delivers the initial snapshot before the client joins
// the periodic cycle, so every subscriber starts from a full picture.
func (m *Manager) registerClient(client subscriber) {
	payload, err := json.Marshal(envelope{Type: messageTypeSnapshot, Data: m.feed.Snapshot()})
	if err != nil {
		m.log.Error("failed to marshal market snapshot", "error", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !client.deliver(payload) {
		m.log.Warn("subscriber rejected initial snapshot, closing")
		client.shutdown()
		return
	}

	m.clients[client] = struct{}{}
	m.log.Info("subscriber registered", "total", len(m.clients))
}

// unregisterClient is idempotent: removing an absent subscriber is a no-op.
func (m *Manager) unregisterClient(client subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.clients[client]; ok {
		delete(m.clients, client)
		client.shutdown()
		m.log.Info("subscriber unregistered", "total", len(m.clients))
	}
}

func (m *Manager) publish() {
	payload, err := json.Marshal(envelope{Type: messageTypeUpdate, Data: m.feed.AllTicks()})
	if err != nil {
		m.log.Error("failed to marshal market update", "error", err)
		return
	}

	m.mu.Lock()
	targets := make([]subscriber, 0, len(m.clients))
	for client := range m.clients {
		targets = append(targets, client)
	}
	m.mu.Unlock()

	for _, client := range targets {
		if client.deliver(payload) {
			continue
		}

		m.mu.Lock()
		delete(m.clients, client)
		m.mu.Unlock()
		client.shutdown()
		m.log.Warn("subscriber unreachable, dropped from registry")
	}
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for client := range m.clients {
		client.shutdown()
		delete(m.clients, client)
	}
}
