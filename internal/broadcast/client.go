package broadcast

import (
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/banglascrabble/internal/model"
)

// DefaultClientBuffer is the number of undelivered messages a client may hold
const DefaultClientBuffer = 64

// Client is one attached transport connection. The room closes Send when
// the client is detached, dropped, or the room shuts down.
type Client struct {
	id          string
	playerID    model.PlayerID
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a client handle with the given buffer size
func NewClient(playerID model.PlayerID, buffer int) *Client {
	if buffer <= 0 {
		buffer = DefaultClientBuffer
	}
	return &Client{
		id:          uuid.NewString(),
		playerID:    playerID,
		send:        make(chan []byte, buffer),
		connectedAt: time.Now(),
	}
}

// ID returns the client's unique id
func (c *Client) ID() string {
	return c.id
}

// PlayerID returns the player the client belongs to
func (c *Client) PlayerID() model.PlayerID {
	return c.playerID
}

// Send returns the channel of encoded envelopes for this client
func (c *Client) Send() <-chan []byte {
	return c.send
}
