// Package domain contains core concepts of the chat system.
// This file defines Identity records and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// ConnID identifies one live transport connection.
type ConnID string

// Set is a plain string set, used for group membership.
type Set map[string]struct{}

// Identity is a durable username/avatar record, independent of any
// live connection. Username is the stable, case-sensitive key.
// Avatar is caller-authoritative: the latest login always wins.
// CreatedAt is set once, on first sight.
type Identity struct {
	Username  string
	Avatar    string
	CreatedAt time.Time
}
