package broadcast

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcoot/banglascrabble/internal/model"
)

// DefaultQueueSize is the capacity of a room's operation queue
const DefaultQueueSize = 256

// Errors
var (
	ErrQueueFull  = errors.New("broadcast queue is full")
	ErrHubClosed  = errors.New("broadcast hub is closed")
	ErrNoSnapshot = errors.New("no snapshot source configured")
)

type opKind int

const (
	opRegister opKind = iota
	opUnregister
	opPublish
)

// op is one queued room operation. Encoding happens on the room goroutine.
type op struct {
	kind     opKind
	client   *Client
	snapshot *model.Snapshot
	event    *model.Event
	// dropGen is the hub's drop generation when a register was queued
	dropGen uint64
}

// Hub is the room for one session. Its goroutine owns the client set and
// processes operations strictly in queue order.
type Hub struct {
	sessionID model.SessionID
	clients   map[*Client]bool
	logger    *slog.Logger

	ops       chan op
	done      chan struct{}
	closeOnce sync.Once

	// members counts clients registered or queued for registration
	members atomic.Int64
	// attaching is guarded by the coordinator's mutex
	attaching int

	// dropGen counts events lost to a full queue; seenGen is the last
	// generation the room goroutine acted on
	dropGen atomic.Uint64
	seenGen uint64
}

// NewHub creates a Hub for a session. Call Run to start it.
func NewHub(sessionID model.SessionID, queueSize int, logger *slog.Logger) *Hub {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Hub{
		sessionID: sessionID,
		clients:   make(map[*Client]bool),
		logger:    logger.With(slog.String("session_id", string(sessionID))),
		ops:       make(chan op, queueSize),
		done:      make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Debug("broadcast hub started")
	for {
		select {
		case o := <-h.ops:
			h.evictIfStale()
			switch o.kind {
			case opRegister:
				if o.dropGen < h.seenGen {
					// Its snapshot predates a lost event
					close(o.client.send)
					h.members.Add(-1)
					continue
				}
				h.handleRegister(o.client, o.snapshot)
			case opUnregister:
				h.handleUnregister(o.client)
			case opPublish:
				h.handlePublish(o.event)
			}

		case <-h.done:
			clientCount := len(h.clients)
			for client := range h.clients {
				h.remove(client)
			}
			// Registrations still queued never reached the client set
		drain:
			for {
				select {
				case o := <-h.ops:
					if o.kind == opRegister {
						close(o.client.send)
						h.members.Add(-1)
					}
				default:
					break drain
				}
			}
			h.logger.Debug("broadcast hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

func (h *Hub) handleRegister(client *Client, snapshot *model.Snapshot) {
	h.clients[client] = true

	msg, err := EncodeSnapshot(snapshot)
	if err != nil {
		h.logger.Error("failed to encode initial snapshot",
			slog.String("client_id", client.id),
			slog.String("error", err.Error()))
		h.remove(client)
		return
	}
	// The buffer is empty, so the initial snapshot always fits
	client.send <- msg

	h.logger.Info("broadcast client registered",
		slog.String("client_id", client.id),
		slog.String("player_id", string(client.playerID)),
		slog.Int("total_clients", len(h.clients)))
}

func (h *Hub) handleUnregister(client *Client) {
	if !h.clients[client] {
		return
	}
	h.remove(client)
	h.logger.Info("broadcast client unregistered",
		slog.String("client_id", client.id),
		slog.String("player_id", string(client.playerID)),
		slog.Duration("connection_duration", time.Since(client.connectedAt)),
		slog.Int("total_clients", len(h.clients)))
}

func (h *Hub) handlePublish(event *model.Event) {
	if len(h.clients) == 0 {
		return
	}

	msg, err := EncodeEvent(event)
	if err != nil {
		h.logger.Error("failed to encode event",
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()))
		return
	}

	sentCount := 0
	droppedCount := 0
	for client := range h.clients {
		select {
		case client.send <- msg:
			sentCount++
		default:
			droppedCount++
			h.remove(client)
			h.logger.Warn("broadcast client dropped - buffer full",
				slog.String("client_id", client.id),
				slog.String("player_id", string(client.playerID)))
		}
	}
	if droppedCount > 0 {
		h.logger.Warn("broadcast partial failure",
			slog.String("type", string(event.Type)),
			slog.Int("sent", sentCount),
			slog.Int("dropped", droppedCount))
	}
}

// evictIfStale closes every client once an event has been lost to a full
// queue. Transports reconnect and start again from a fresh snapshot.
func (h *Hub) evictIfStale() {
	gen := h.dropGen.Load()
	if gen == h.seenGen {
		return
	}
	h.seenGen = gen

	evicted := len(h.clients)
	for client := range h.clients {
		h.remove(client)
	}
	if evicted > 0 {
		h.logger.Warn("broadcast clients evicted after dropped event",
			slog.Int("evicted", evicted))
	}
}

func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.members.Add(-1)
}

// Register queues a client together with the snapshot it must see first.
// It never blocks.
func (h *Hub) Register(client *Client, snapshot *model.Snapshot) error {
	select {
	case <-h.done:
		return ErrHubClosed
	default:
	}

	h.members.Add(1)
	select {
	case h.ops <- op{kind: opRegister, client: client, snapshot: snapshot, dropGen: h.dropGen.Load()}:
		return nil
	default:
		h.members.Add(-1)
		h.logger.Warn("broadcast register dropped - queue full",
			slog.String("client_id", client.id))
		return ErrQueueFull
	}
}

// Unregister removes a client. It waits for queue space unless the hub is closed.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.ops <- op{kind: opUnregister, client: client}:
	case <-h.done:
	}
}

// Publish queues an event for every client. It never blocks. A full queue
// drops the event, and the room then evicts the clients that missed it.
func (h *Hub) Publish(event *model.Event) {
	select {
	case h.ops <- op{kind: opPublish, event: event}:
	default:
		h.dropGen.Add(1)
		h.logger.Warn("broadcast event dropped - queue full",
			slog.String("type", string(event.Type)))
	}
}

// Close shuts down the hub and closes every client's channel
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of clients registered or about to be
func (h *Hub) ClientCount() int {
	return int(h.members.Load())
}
