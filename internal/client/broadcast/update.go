// Package broadcast applies server-pushed entity updates to the resource
// stores.
//
// Updates travel through an explicit queue: the websocket Feed decodes frames
// and enqueues them, and the Reconciler's Run loop applies them one at a
// time. An update is merged field by field into every slot holding its id;
// updates for entities the client does not hold are dropped.
package broadcast

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedUpdate = errors.New("malformed broadcast update")

// Update is one pushed change. Payload carries the changed fields only.
type Update struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// DecodeUpdate parses a frame. Two shapes are accepted: an envelope
// {"type", "id", "payload"} and a flat entity {"type", "id", ...fields}, whose
// fields other than type form the payload. When the id is missing at the top
// level, the payload's id field is used.
func DecodeUpdate(frame []byte) (Update, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(frame, &fields); err != nil {
		return Update{}, fmt.Errorf("%w: %w", ErrMalformedUpdate, err)
	}

	var u Update
	if err := json.Unmarshal(frame, &u); err != nil {
		return Update{}, fmt.Errorf("%w: %w", ErrMalformedUpdate, err)
	}
	if u.Type == "" {
		return Update{}, fmt.Errorf("%w: missing type", ErrMalformedUpdate)
	}

	if len(u.Payload) == 0 || string(u.Payload) == "null" {
		delete(fields, "type")
		delete(fields, "payload")
		if len(fields) == 0 {
			return Update{}, fmt.Errorf("%w: missing payload", ErrMalformedUpdate)
		}
		flat, err := json.Marshal(fields)
		if err != nil {
			return Update{}, fmt.Errorf("%w: %w", ErrMalformedUpdate, err)
		}
		u.Payload = flat
	}

	if u.ID == "" {
		var ref struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(u.Payload, &ref); err != nil {
			return Update{}, fmt.Errorf("%w: payload is not an object", ErrMalformedUpdate)
		}
		u.ID = ref.ID
	}
	if u.ID == "" {
		return Update{}, fmt.Errorf("%w: missing id", ErrMalformedUpdate)
	}
	return u, nil
}
