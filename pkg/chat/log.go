// Package chat holds the per-session message log and its translation state.
package chat

import "time"

// Log is the ordered message history of one chat session. It is owned by the
// UI loop and must only be mutated from there.
type Log struct {
	ids            *IDSource
	messages       []Message
	targetLanguage string
}

func NewLog(ids *IDSource, targetLanguage string) *Log {
	if ids == nil {
		ids = NewIDSource()
	}
	return &Log{
		ids:            ids,
		targetLanguage: targetLanguage,
	}
}

// AddMessage appends a new message with a fresh ID and returns it.
func (l *Log) AddMessage(content string, sender string) *Message {
	l.messages = append(l.messages, Message{
		ID:        l.ids.Next(),
		Content:   content,
		Sender:    sender,
		CreatedAt: time.Now(),
	})
	return &l.messages[len(l.messages)-1]
}

// Messages returns the underlying message slice in insertion order.
func (l *Log) Messages() []Message {
	return l.messages
}

func (l *Log) Len() int {
	return len(l.messages)
}

func (l *Log) TargetLanguage() string {
	return l.targetLanguage
}

// SetTranslation fills in the translation slot of the message with the given
// ID. It is a no-op when the message no longer exists.
func (l *Log) SetTranslation(messageID uint64, translation string, language string) {
	for i := range l.messages {
		if l.messages[i].ID == messageID {
			l.messages[i].Translation = translation
			l.messages[i].TranslationLanguage = language
			return
		}
	}
}

// SetTargetLanguage switches the target language and clears every existing
// translation, so each message gets retranslated into the new language.
func (l *Log) SetTargetLanguage(language string) {
	l.targetLanguage = language
	for i := range l.messages {
		l.messages[i].Translation = ""
		l.messages[i].TranslationLanguage = ""
	}
}
