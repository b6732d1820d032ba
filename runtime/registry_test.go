package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-hub/domain"
	"chat-hub/domain/event"
)

type stubSink struct{ name string }

func (s *stubSink) Consume(_ context.Context, _ event.Outbound) error { return nil }

func TestRegistry_Bind_And_Resolve(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := &stubSink{}
	conn := domain.ConnID("c1")

	// Given an anonymous connection
	registry.Register(conn, sink)
	_, bound := registry.UsernameFor(conn)
	req.False(bound)
	req.Empty(registry.Online())

	// When the connection logs in
	registry.Bind("alice", conn)

	// Then presence resolves in both directions
	username, bound := registry.UsernameFor(conn)
	req.True(bound)
	req.Equal("alice", username)

	resolved, online := registry.SinkFor("alice")
	req.True(online)
	req.Same(sink, resolved)
	req.Equal([]string{"alice"}, registry.Online())
}

func TestRegistry_Most_Recent_Login_Wins(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink1 := &stubSink{name: "first"}
	sink2 := &stubSink{name: "second"}

	// Given alice logged in on c1
	registry.Register("c1", sink1)
	registry.Bind("alice", "c1")

	// When alice logs in again on c2
	registry.Register("c2", sink2)
	registry.Bind("alice", "c2")

	// Then routed traffic follows c2 and c1 is orphaned in place
	resolved, online := registry.SinkFor("alice")
	req.True(online)
	req.Same(sink2, resolved)

	_, bound := registry.UsernameFor("c1")
	req.False(bound)

	// And a late disconnect of the orphan does not evict the new session
	username, hadIdentity := registry.Deregister("c1")
	req.False(hadIdentity)
	req.Empty(username)

	_, online = registry.SinkFor("alice")
	req.True(online)
}

func TestRegistry_Unbind_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	registry.Register("c1", &stubSink{})
	registry.Bind("alice", "c1")

	username, bound := registry.Unbind("c1")
	req.True(bound)
	req.Equal("alice", username)

	// Unbinding an already anonymous connection is a no-op
	_, bound = registry.Unbind("c1")
	req.False(bound)
	req.Empty(registry.Online())
}

func TestRegistry_Relogin_Under_Other_Name_Releases_Old_Binding(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	registry.Register("c1", &stubSink{})
	registry.Bind("alice", "c1")

	// When the same connection logs in again as bob
	registry.Bind("bob", "c1")

	// Then alice is offline and bob is online on c1
	_, online := registry.SinkFor("alice")
	req.False(online)
	req.Equal([]string{"bob"}, registry.Online())
}

func TestRegistry_Room_Sinks_Skip_Offline_Members(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := &stubSink{}
	registry.Register("c1", sink)
	registry.Bind("alice", "c1")

	// Given a room with an online and an offline subscriber
	registry.Subscribe("general", "alice")
	registry.Subscribe("general", "bob")

	sinks := registry.SinksForRoom("general")
	req.Len(sinks, 1)
	req.Same(sink, sinks[0].(*stubSink))

	// And an unknown room resolves to nothing
	req.Nil(registry.SinksForRoom("nowhere"))
}

func TestRegistry_AllSinks_Includes_Anonymous_Connections(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	registry.Register("c1", &stubSink{})
	registry.Register("c2", &stubSink{})
	registry.Bind("alice", "c1")

	// user_list broadcasts reach sockets that never logged in
	req.Len(registry.AllSinks(), 2)
}
