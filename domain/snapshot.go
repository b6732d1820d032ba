package domain

// GroupState is the serialized form of one group inside a Snapshot.
type GroupState struct {
	Members []string       `json:"members"`
	History []GroupMessage `json:"history"`
	Avatar  string         `json:"avatar"`
}

// Snapshot is the full serialized dump of the Group Directory and the
// Conversation Store. It is rewritten in full after each mutating
// event; restoring it must reproduce both structures element-wise.
// Presence is ephemeral and deliberately absent.
type Snapshot struct {
	Groups          map[string]GroupState      `json:"groups"`
	PrivateMessages map[string][]DirectMessage `json:"private_messages"`
}
