// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable and never mutated or deleted once appended.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Default display glyphs applied when a client omits an avatar.
const (
	DefaultUserAvatar  = "👤"
	DefaultGroupAvatar = "📢"
)

// DirectMessage is one entry in a two-party conversation thread.
// The JSON tags double as the wire payload of the private_message
// event and as the snapshot encoding.
type DirectMessage struct {
	ID      uuid.UUID `json:"id"`
	From    string    `json:"from"`
	Content string    `json:"message"`
	At      time.Time `json:"at"`
}

// GroupMessage is one entry in a group history.
type GroupMessage struct {
	ID      uuid.UUID `json:"id"`
	From    string    `json:"from"`
	Group   string    `json:"group"`
	Content string    `json:"message"`
	At      time.Time `json:"at"`
}
