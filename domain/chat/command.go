// Package chat defines the inbound commands carried on the
// coordinator's command channel. One command is built per inbound
// transport event; the coordinator consumes them one at a time.
package chat

import (
	"chat-hub/contract"
	"chat-hub/domain"
)

// HistoryKind selects which store a get_history request reads.
type HistoryKind string

const (
	HistoryPrivate HistoryKind = "private"
	HistoryGroup   HistoryKind = "group"
)

type Command interface {
	Conn() domain.ConnID
}

// ConnectCommand registers a freshly accepted connection and its sink.
// The connection stays anonymous until a LoginCommand succeeds.
type ConnectCommand struct {
	ConnID domain.ConnID
	Sink   contract.EventSink
}

func (c ConnectCommand) Conn() domain.ConnID { return c.ConnID }

// DisconnectCommand is synthesized by the transport on socket loss.
type DisconnectCommand struct {
	ConnID domain.ConnID
}

func (c DisconnectCommand) Conn() domain.ConnID { return c.ConnID }

type LoginCommand struct {
	ConnID   domain.ConnID
	Username string
	Avatar   string
}

func (c LoginCommand) Conn() domain.ConnID { return c.ConnID }

type CreateGroupCommand struct {
	ConnID  domain.ConnID
	Name    string
	Avatar  string
	Members []string
}

func (c CreateGroupCommand) Conn() domain.ConnID { return c.ConnID }

type PrivateMessageCommand struct {
	ConnID  domain.ConnID
	To      string
	Content string
}

func (c PrivateMessageCommand) Conn() domain.ConnID { return c.ConnID }

type GroupMessageCommand struct {
	ConnID  domain.ConnID
	Group   string
	Content string
}

func (c GroupMessageCommand) Conn() domain.ConnID { return c.ConnID }

type GetHistoryCommand struct {
	ConnID domain.ConnID
	Target string
	Kind   HistoryKind
}

func (c GetHistoryCommand) Conn() domain.ConnID { return c.ConnID }
