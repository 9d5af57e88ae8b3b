package chat

import (
	"sync/atomic"
	"time"
)

// IDSource hands out process-unique, strictly increasing message IDs.
// One source is created per session log; sharing one across logs is also safe.
type IDSource struct {
	next atomic.Uint64
}

func NewIDSource() *IDSource {
	return &IDSource{}
}

func (s *IDSource) Next() uint64 {
	return s.next.Add(1)
}

// Message is one chat message. ID, Content, Sender, and CreatedAt never change
// after creation; only the translation fields are filled in later, and
// Translation and TranslationLanguage are always set or cleared together.
type Message struct {
	ID                  uint64
	Content             string
	Sender              string
	CreatedAt           time.Time
	Translation         string
	TranslationLanguage string
}

func (m *Message) HasTranslation() bool {
	return m.TranslationLanguage != ""
}

func (m *Message) DisplayOriginal() string {
	return m.Sender + ": " + m.Content
}

func (m *Message) DisplayTranslation() string {
	if !m.HasTranslation() {
		return m.Sender + ": Translating..."
	}
	return m.Sender + ": " + m.Translation
}
