// Package event defines the outbound events pushed to connected
// clients. Each type maps one-to-one onto a wire event name; the
// transport wraps it in an {event, data} envelope.
package event

import "chat-hub/domain"

// Outbound is any payload deliverable through an EventSink.
type Outbound interface {
	EventName() string
}

// UserRef is one entry of the user_list users array.
type UserRef struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// GroupRef is one entry of the user_list groups array.
type GroupRef struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// UserList is broadcast to every live connection whenever presence or
// the group directory changes.
type UserList struct {
	Users  []UserRef  `json:"users"`
	Groups []GroupRef `json:"groups"`
}

func (UserList) EventName() string { return "user_list" }

// GroupCreated acknowledges a successful create_group to its caller.
type GroupCreated struct {
	Group string `json:"group"`
}

func (GroupCreated) EventName() string { return "group_created" }

// PrivateMessage is unicast to the recipient's live connection.
type PrivateMessage domain.DirectMessage

func (PrivateMessage) EventName() string { return "private_message" }

// GroupMessage is broadcast to every connection subscribed to the group.
type GroupMessage domain.GroupMessage

func (GroupMessage) EventName() string { return "group_message" }

// ChatHistory is the unicast reply to a get_history request. History
// holds []domain.DirectMessage or []domain.GroupMessage depending on Kind.
type ChatHistory struct {
	Target  string `json:"target"`
	Kind    string `json:"type"`
	History any    `json:"history"`
}

func (ChatHistory) EventName() string { return "chat_history" }
