// Package broadcast fans committed session events out to attached clients.
// Each session gets a room with its own goroutine and bounded queue, so a
// slow client or a busy session never holds up a mutation elsewhere.
package broadcast

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mcoot/banglascrabble/internal/model"
)

// SnapshotSource reads a session while excluding its mutations
type SnapshotSource interface {
	WithSnapshot(ctx context.Context, sessionID model.SessionID, fn func(*model.Snapshot)) error
}

// Config holds configuration for the coordinator
type Config struct {
	QueueSize    int
	ClientBuffer int
}

// DefaultConfig returns default broadcast configuration
func DefaultConfig() Config {
	return Config{
		QueueSize:    DefaultQueueSize,
		ClientBuffer: DefaultClientBuffer,
	}
}

// Coordinator manages the rooms of all sessions
type Coordinator struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	hubs   map[model.SessionID]*Hub
	source SnapshotSource
}

// NewCoordinator creates a new Coordinator
func NewCoordinator(cfg Config, logger *slog.Logger) *Coordinator {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.ClientBuffer <= 0 {
		cfg.ClientBuffer = DefaultClientBuffer
	}
	return &Coordinator{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "broadcast")),
		hubs:   make(map[model.SessionID]*Hub),
	}
}

// SetSource sets where Attach reads initial snapshots from. The session
// controller publishes into the coordinator, so it is wired after both exist.
func (c *Coordinator) SetSource(source SnapshotSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = source
}

// NewClient creates a client handle using the configured buffer size
func (c *Coordinator) NewClient(playerID model.PlayerID) *Client {
	return NewClient(playerID, c.cfg.ClientBuffer)
}

// Attach registers client with the session's room. The client first receives
// the session's current state, then every event committed after it.
func (c *Coordinator) Attach(ctx context.Context, sessionID model.SessionID, client *Client) error {
	c.mu.Lock()
	source := c.source
	if source == nil {
		c.mu.Unlock()
		return ErrNoSnapshot
	}
	hub := c.hubLocked(sessionID)
	hub.attaching++
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		hub.attaching--
		c.mu.Unlock()
	}()

	var registerErr error
	err := source.WithSnapshot(ctx, sessionID, func(snapshot *model.Snapshot) {
		registerErr = hub.Register(client, snapshot)
	})
	if err != nil {
		return err
	}
	return registerErr
}

// Detach removes client from the session's room
func (c *Coordinator) Detach(sessionID model.SessionID, client *Client) {
	if hub := c.GetHub(sessionID); hub != nil {
		hub.Unregister(client)
	}
}

// Publish queues a committed event for the session's room. Sessions without
// a room have nobody listening and the event is discarded.
func (c *Coordinator) Publish(event *model.Event) {
	if hub := c.GetHub(event.SessionID); hub != nil {
		hub.Publish(event)
	}
}

// GetHub returns the room for a session, or nil if it doesn't exist
func (c *Coordinator) GetHub(sessionID model.SessionID) *Hub {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hubs[sessionID]
}

// HubCount returns the number of live rooms
func (c *Coordinator) HubCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.hubs)
}

// CleanupEmptyHubs removes rooms with no clients
func (c *Coordinator) CleanupEmptyHubs() {
	c.mu.Lock()
	defer c.mu.Unlock()

	removedCount := 0
	for id, hub := range c.hubs {
		if hub.attaching == 0 && hub.ClientCount() == 0 {
			hub.Close()
			delete(c.hubs, id)
			removedCount++
		}
	}
	if removedCount > 0 {
		c.logger.Info("broadcast empty hubs cleaned up", slog.Int("removed", removedCount))
	}
}

// Close shuts down every room
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, hub := range c.hubs {
		hub.Close()
		delete(c.hubs, id)
	}
}

func (c *Coordinator) hubLocked(sessionID model.SessionID) *Hub {
	if hub, ok := c.hubs[sessionID]; ok {
		return hub
	}
	hub := NewHub(sessionID, c.cfg.QueueSize, c.logger)
	c.hubs[sessionID] = hub
	go hub.Run()
	return hub
}
