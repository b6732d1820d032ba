package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/domain/chat"
	"chat-hub/domain/event"
)

// Ensure *Coordinator implements the contract.Worker interface at
// compile time, so it can run under the Supervisor like any worker.
var _ contract.Worker = (*Coordinator)(nil)

// Coordinator is the single-writer owner of the Registry, the
// GroupDirectory, and the ConversationStore. All inbound events are
// funneled through one buffered channel and applied to completion, one
// at a time, in arrival order across connections. Outbound delivery
// goes through buffered sinks and durable writes through the
// persistence queue, so neither blocks the next command.
type Coordinator struct {
	log         *slog.Logger
	commands    chan chat.Command
	registry    *Registry
	groups      *GroupDirectory
	convos      *ConversationStore
	avatars     map[string]string // cached view of the identity store
	snapshots   chan<- domain.Snapshot
	identities  chan<- domain.Identity
	sinkTimeout time.Duration
}

func NewCoordinator(
	log *slog.Logger,
	registry *Registry,
	groups *GroupDirectory,
	convos *ConversationStore,
	snapshots chan<- domain.Snapshot,
	identities chan<- domain.Identity,
	bufferSize int,
	sinkTimeout time.Duration,
) *Coordinator {
	return &Coordinator{
		log:         log,
		commands:    make(chan chat.Command, bufferSize),
		registry:    registry,
		groups:      groups,
		convos:      convos,
		avatars:     make(map[string]string),
		snapshots:   snapshots,
		identities:  identities,
		sinkTimeout: sinkTimeout,
	}
}

// WarmIdentities seeds the avatar cache from the durable identity
// store. Called once at startup, before Run.
func (c *Coordinator) WarmIdentities(identities []domain.Identity) {
	for _, identity := range identities {
		c.avatars[identity.Username] = identity.Avatar
	}
}

// Dispatch enqueues a command. Payload-bearing events are best-effort:
// a full channel drops them and the client is not notified, matching
// the silent-drop contract. Lifecycle commands block instead — the
// transport sends a disconnect exactly once, and losing it would leave
// a ghost session bound in the registry forever.
func (c *Coordinator) Dispatch(cmd chat.Command) {
	switch cmd.(type) {
	case chat.ConnectCommand, chat.DisconnectCommand:
		c.commands <- cmd
		return
	}
	select {
	case c.commands <- cmd:
	default:
		c.log.Warn("Command channel full, dropping inbound event",
			"command", fmt.Sprintf("%T", cmd))
	}
}

func (c *Coordinator) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			c.log.Debug("Stopping coordinator")
			return nil
		case cmd, ok := <-c.commands:
			if !ok {
				c.log.Debug("Command channel closed")
				return nil
			}
			if outcome := c.handle(cmd); outcome != domain.OutcomeOK {
				// Rejections stay silent toward the client but are
				// visible server-side.
				c.log.Warn("Command rejected",
					"command", fmt.Sprintf("%T", cmd),
					"conn", string(cmd.Conn()),
					"outcome", outcome.String())
			}
		}
	}
}

func (c *Coordinator) handle(cmd chat.Command) domain.Outcome {
	switch cmd := cmd.(type) {
	case chat.ConnectCommand:
		c.registry.Register(cmd.ConnID, cmd.Sink)
		return domain.OutcomeOK
	case chat.DisconnectCommand:
		return c.handleDisconnect(cmd)
	case chat.LoginCommand:
		return c.handleLogin(cmd)
	case chat.CreateGroupCommand:
		return c.handleCreateGroup(cmd)
	case chat.PrivateMessageCommand:
		return c.handlePrivateMessage(cmd)
	case chat.GroupMessageCommand:
		return c.handleGroupMessage(cmd)
	case chat.GetHistoryCommand:
		return c.handleGetHistory(cmd)
	default:
		return domain.OutcomeInvalid
	}
}

func (c *Coordinator) handleLogin(cmd chat.LoginCommand) domain.Outcome {
	if cmd.Username == "" {
		return domain.OutcomeInvalid
	}
	avatar := cmd.Avatar
	if avatar == "" {
		avatar = domain.DefaultUserAvatar
	}

	c.avatars[cmd.Username] = avatar
	c.registry.Bind(cmd.Username, cmd.ConnID)

	// Rejoin every group the identity already belongs to, so room
	// broadcasts follow the new connection immediately.
	for _, name := range c.groups.GroupsFor(cmd.Username) {
		c.registry.Subscribe(name, cmd.Username)
	}

	c.enqueueIdentity(domain.Identity{Username: cmd.Username, Avatar: avatar})
	c.enqueueSnapshot()
	c.broadcast(c.userList())
	c.log.Info("Identity logged in", "username", cmd.Username)
	return domain.OutcomeOK
}

func (c *Coordinator) handleDisconnect(cmd chat.DisconnectCommand) domain.Outcome {
	username, bound := c.registry.Deregister(cmd.ConnID)
	if bound {
		// Presence is ephemeral: no durable write on disconnect.
		c.broadcast(c.userList())
		c.log.Info("Identity disconnected", "username", username)
	}
	return domain.OutcomeOK
}

func (c *Coordinator) handleCreateGroup(cmd chat.CreateGroupCommand) domain.Outcome {
	creator, bound := c.registry.UsernameFor(cmd.ConnID)
	if !bound || cmd.Name == "" {
		return domain.OutcomeInvalid
	}
	avatar := cmd.Avatar
	if avatar == "" {
		avatar = domain.DefaultGroupAvatar
	}

	group, err := c.groups.Create(cmd.Name, avatar, creator, cmd.Members)
	if err != nil {
		return domain.OutcomeConflict
	}

	// Subscriptions are keyed by username, so subscribing offline
	// members now is what makes the room reach them the moment they
	// log back in.
	for _, member := range group.MemberList() {
		c.registry.Subscribe(group.Name, member)
	}

	c.enqueueSnapshot()
	if sink, ok := c.registry.SinkForConn(cmd.ConnID); ok {
		c.deliver(sink, event.GroupCreated{Group: group.Name})
	}
	c.broadcast(c.userList())
	c.log.Info("Group created", "group", group.Name, "creator", creator)
	return domain.OutcomeOK
}

func (c *Coordinator) handlePrivateMessage(cmd chat.PrivateMessageCommand) domain.Outcome {
	sender, bound := c.registry.UsernameFor(cmd.ConnID)
	if !bound || cmd.To == "" || cmd.Content == "" {
		return domain.OutcomeInvalid
	}

	message := c.convos.Append(sender, cmd.To, domain.DirectMessage{
		ID:      uuid.New(),
		From:    sender,
		Content: cmd.Content,
		At:      time.Now().UTC(),
	})
	c.enqueueSnapshot()

	// Stored either way; delivered only while the recipient is online.
	// An offline recipient pulls it later through get_history.
	if sink, online := c.registry.SinkFor(cmd.To); online {
		c.deliver(sink, event.PrivateMessage(message))
	}
	return domain.OutcomeOK
}

func (c *Coordinator) handleGroupMessage(cmd chat.GroupMessageCommand) domain.Outcome {
	sender, bound := c.registry.UsernameFor(cmd.ConnID)
	if !bound || cmd.Group == "" || cmd.Content == "" {
		return domain.OutcomeInvalid
	}

	// Membership is not enforced on send; only the directory
	// bookkeeping tracks it.
	message, err := c.groups.Append(cmd.Group, domain.GroupMessage{
		ID:      uuid.New(),
		From:    sender,
		Group:   cmd.Group,
		Content: cmd.Content,
		At:      time.Now().UTC(),
	})
	if err != nil {
		return domain.OutcomeNotFound
	}

	c.enqueueSnapshot()
	for _, sink := range c.registry.SinksForRoom(cmd.Group) {
		c.deliver(sink, event.GroupMessage(message))
	}
	return domain.OutcomeOK
}

func (c *Coordinator) handleGetHistory(cmd chat.GetHistoryCommand) domain.Outcome {
	caller, bound := c.registry.UsernameFor(cmd.ConnID)
	if !bound || cmd.Target == "" {
		return domain.OutcomeInvalid
	}
	sink, ok := c.registry.SinkForConn(cmd.ConnID)
	if !ok {
		return domain.OutcomeInvalid
	}

	switch cmd.Kind {
	case chat.HistoryPrivate:
		c.deliver(sink, event.ChatHistory{
			Target:  cmd.Target,
			Kind:    string(chat.HistoryPrivate),
			History: c.convos.HistoryFor(caller, cmd.Target),
		})
		return domain.OutcomeOK

	case chat.HistoryGroup:
		group, exists := c.groups.Get(cmd.Target)
		if !exists {
			// Unknown group: no reply at all.
			return domain.OutcomeNotFound
		}
		// Requesting a group's history joins the caller to it. This is
		// the protocol's self-service join: surprising, but intended.
		joined := group.AddMember(caller)
		c.registry.Subscribe(group.Name, caller)
		if joined {
			c.enqueueSnapshot()
		}
		history := make([]domain.GroupMessage, len(group.History))
		copy(history, group.History)
		c.deliver(sink, event.ChatHistory{
			Target:  cmd.Target,
			Kind:    string(chat.HistoryGroup),
			History: history,
		})
		return domain.OutcomeOK

	default:
		return domain.OutcomeInvalid
	}
}

// userList builds the presence payload broadcast on every presence or
// directory change: online identities with avatars, plus all groups.
func (c *Coordinator) userList() event.UserList {
	users := lo.Map(c.registry.Online(), func(username string, _ int) event.UserRef {
		avatar, ok := c.avatars[username]
		if !ok {
			avatar = domain.DefaultUserAvatar
		}
		return event.UserRef{Username: username, Avatar: avatar}
	})
	groups := lo.Map(c.groups.Names(), func(name string, _ int) event.GroupRef {
		group, _ := c.groups.Get(name)
		return event.GroupRef{Name: name, Avatar: group.Avatar}
	})
	return event.UserList{Users: users, Groups: groups}
}

func (c *Coordinator) broadcast(e event.Outbound) {
	for _, sink := range c.registry.AllSinks() {
		c.deliver(sink, e)
	}
}

func (c *Coordinator) deliver(sink contract.EventSink, e event.Outbound) {
	ctx, cancel := context.WithTimeout(context.Background(), c.sinkTimeout)
	defer cancel()
	if err := sink.Consume(ctx, e); err != nil {
		c.log.Debug("Outbound delivery dropped", "event", e.EventName(), "error", err)
	}
}

// enqueueSnapshot hands the current full state to the persistence
// worker. Writes are full rewrites, so a dropped one is superseded by
// the next mutation's snapshot; the shutdown flush covers the tail.
func (c *Coordinator) enqueueSnapshot() {
	snapshot := domain.Snapshot{
		Groups:          c.groups.Snapshot(),
		PrivateMessages: c.convos.Snapshot(),
	}
	select {
	case c.snapshots <- snapshot:
	default:
		c.log.Warn("Snapshot queue full, dropping durable write")
	}
}

func (c *Coordinator) enqueueIdentity(identity domain.Identity) {
	select {
	case c.identities <- identity:
	default:
		c.log.Warn("Identity queue full, dropping upsert", "username", identity.Username)
	}
}
