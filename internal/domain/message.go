package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageKind distinguishes chat text, bid announcements and system notices.
type MessageKind int

const (
	MessageText MessageKind = iota
	MessageBid
	MessageSystem
)

func (k MessageKind) String() string {
	switch k {
	case MessageText:
		return "text"
	case MessageBid:
		return "bid"
	case MessageSystem:
		return "system"
	}
	return "unknown"
}

func (k MessageKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Message is one entry in the room's append-only log.
type Message struct {
	ID       string      `json:"id"`
	UserID   UserID      `json:"user_id"`
	Username string      `json:"username"`
	Content  string      `json:"content"`
	Kind     MessageKind `json:"kind"`
	SentAt   time.Time   `json:"sent_at"`
}

func (m Message) DisplayText() string {
	switch m.Kind {
	case MessageText:
		return fmt.Sprintf("[%s]: %s", m.Username, m.Content)
	case MessageBid:
		return fmt.Sprintf("** %s", m.Content)
	case MessageSystem:
		return fmt.Sprintf(">> %s", m.Content)
	}
	return m.Content
}
