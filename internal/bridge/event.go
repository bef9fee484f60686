package bridge

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/muurk/klfgate/internal/events"
)

// Event is the JSON shape of a bus event sent to websocket clients and
// Redis subscribers.
type Event struct {
	ID      string    `json:"id"`
	Topic   string    `json:"topic"`
	Command string    `json:"command,omitempty"`
	Code    uint16    `json:"code,omitempty"`
	Time    time.Time `json:"time"`
	Record  any       `json:"record,omitempty"`
	Payload []byte    `json:"payload,omitempty"` // raw bytes when the record could not be decoded
	Error   string    `json:"error,omitempty"`
}

// NewEvent converts a bus event.
func NewEvent(ev events.Event) Event {
	out := Event{
		ID:    uuid.NewString(),
		Topic: ev.Topic,
		Time:  ev.Time,
	}
	if out.Time.IsZero() {
		out.Time = time.Now()
	}
	if msg := ev.Message; msg != nil {
		out.Command = msg.Name()
		out.Code = uint16(msg.Command)
		if msg.Record != nil {
			out.Record = msg.Record
		} else {
			out.Payload = msg.Payload
		}
	}
	if ev.Err != nil {
		out.Error = ev.Err.Error()
	}
	return out
}

// EventJSON encodes a bus event.
func EventJSON(ev events.Event) ([]byte, error) {
	return json.Marshal(NewEvent(ev))
}
