package p2p

import (
	"encoding/json"
	"fmt"
	"time"
)

// WireMessage is the payload exchanged with peers. It carries no identity
// beyond its fields; a received message is assigned a fresh local ID by the
// chat log.
type WireMessage struct {
	Content  string    `json:"content"`
	SentAt   time.Time `json:"timestamp"`
	SenderID string    `json:"sender_id"`
}

func NewWireMessage(content string, senderID string) WireMessage {
	return WireMessage{
		Content:  content,
		SentAt:   time.Now().UTC(),
		SenderID: senderID,
	}
}

// Encode serializes the message as UTF-8 JSON.
func (m WireMessage) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// ParseWireMessage decodes a peer payload. Unknown fields are ignored;
// missing required fields are a parse error.
func ParseWireMessage(data []byte) (WireMessage, error) {
	var raw struct {
		Content  *string    `json:"content"`
		SentAt   *time.Time `json:"timestamp"`
		SenderID *string    `json:"sender_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return WireMessage{}, fmt.Errorf("decode wire message: %w", err)
	}

	if raw.Content == nil {
		return WireMessage{}, fmt.Errorf("decode wire message: missing field %q", "content")
	}
	if raw.SentAt == nil {
		return WireMessage{}, fmt.Errorf("decode wire message: missing field %q", "timestamp")
	}
	if raw.SenderID == nil {
		return WireMessage{}, fmt.Errorf("decode wire message: missing field %q", "sender_id")
	}

	return WireMessage{
		Content:  *raw.Content,
		SentAt:   *raw.SentAt,
		SenderID: *raw.SenderID,
	}, nil
}
