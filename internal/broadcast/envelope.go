package broadcast

import (
	"encoding/json"
	"fmt"

	"github.com/mcoot/banglascrabble/internal/api/response"
	"github.com/mcoot/banglascrabble/internal/model"
)

// Envelope is the wire frame pushed to clients
type Envelope struct {
	Type    model.EventType `json:"type"`
	Payload any             `json:"payload"`
}

// EncodeEvent serializes an event into its envelope. moveSubmitted carries
// the move and the resulting state, the other types carry the state alone.
func EncodeEvent(event *model.Event) ([]byte, error) {
	if event.Snapshot == nil {
		return nil, fmt.Errorf("event %s for session %s has no snapshot", event.Type, event.SessionID)
	}

	env := Envelope{Type: event.Type}
	state := response.SnapshotFromModel(event.Snapshot)
	if event.Type == model.EventMoveSubmitted && event.Move != nil {
		env.Payload = response.MoveResponse{Move: response.MoveFromModel(event.Move), State: state}
	} else {
		env.Payload = state
	}
	return json.Marshal(env)
}

// EncodeSnapshot serializes a snapshot as a stateUpdate envelope
func EncodeSnapshot(snapshot *model.Snapshot) ([]byte, error) {
	return EncodeEvent(&model.Event{
		Type:      model.EventStateUpdate,
		SessionID: snapshot.Session.ID,
		Snapshot:  snapshot,
	})
}
