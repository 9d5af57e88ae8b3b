// Package room mints and parses shareable chat room identifiers.
//
// An identifier has the form <topicHex>-<uuid>-<name>. The topic is derived
// deterministically from the room name, so everyone who knows the name joins
// the same pub/sub group; the UUID only distinguishes separate create events.
package room

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Topic is the 32-byte identifier addressing one pub/sub group.
type Topic [32]byte

// TopicForName derives the topic for a room name. Same name, same topic.
func TopicForName(name string) Topic {
	return sha256.Sum256([]byte(name))
}

func (t Topic) Hex() string {
	return hex.EncodeToString(t[:])
}

func (t Topic) Bytes() [32]byte {
	return t
}

func (t Topic) String() string {
	return t.Hex()
}

// Room is one chat room with its shareable identifier.
type Room struct {
	Topic      Topic
	UUID       uuid.UUID
	Name       string
	Identifier string
}

// New creates a room from a name, deriving the topic and minting a fresh UUID.
func New(name string) Room {
	topic := TopicForName(name)
	id := uuid.New()
	return Room{
		Topic:      topic,
		UUID:       id,
		Name:       name,
		Identifier: fmt.Sprintf("%s-%s-%s", topic.Hex(), id, name),
	}
}

func (r Room) String() string {
	return r.Identifier
}

const uuidLength = 36

// Parse reconstructs a room from a shared identifier string.
//
// The first dash terminates the topic hash, the next 36 characters are the
// UUID, and everything after the following dash is the room name, which may
// itself contain dashes. The topic is re-derived from the name rather than
// trusted from the hash section.
func Parse(identifier string) (Room, error) {
	firstDash := strings.IndexByte(identifier, '-')
	if firstDash < 0 {
		return Room{}, NewError(ErrorMissingSeparator, "expected hash-uuid-name")
	}

	remainder := identifier[firstDash+1:]
	if len(remainder) < uuidLength {
		return Room{}, NewError(ErrorUUIDTooShort, "UUID section too short")
	}

	uuidPart := remainder[:uuidLength]
	namePart := remainder[uuidLength:]

	if !strings.HasPrefix(namePart, "-") {
		return Room{}, NewError(ErrorMissingNameSeparator, "missing dash before name")
	}
	name := namePart[1:]

	id, err := uuid.Parse(uuidPart)
	if err != nil {
		return Room{}, NewError(ErrorMalformedUUID, err.Error())
	}

	return Room{
		Topic:      TopicForName(name),
		UUID:       id,
		Name:       name,
		Identifier: identifier,
	}, nil
}
