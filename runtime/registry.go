// Package runtime owns the live chat state: presence, groups,
// conversations, and the single-writer coordinator that mutates them.
package runtime

import (
	"sort"

	"chat-hub/contract"
	"chat-hub/domain"
)

type session struct {
	// username is empty while the connection is anonymous, and is
	// cleared again when a later login on another connection wins.
	username string
	sink     contract.EventSink
}

// Registry tracks which identities are online and which room each one
// is subscribed to. It holds no locks: the coordinator is its single
// writer, and all reads happen on the same goroutine (see Coordinator).
type Registry struct {
	conns  map[domain.ConnID]*session
	online map[string]domain.ConnID
	rooms  map[string]domain.Set // group name -> subscribed usernames
}

func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[domain.ConnID]*session),
		online: make(map[string]domain.ConnID),
		rooms:  make(map[string]domain.Set),
	}
}

// Register adds a freshly accepted, still anonymous connection.
func (r *Registry) Register(id domain.ConnID, sink contract.EventSink) {
	r.conns[id] = &session{sink: sink}
}

// Bind records id as the live connection for username. Most recent
// login wins: any prior connection bound to that username is orphaned
// in place, without being closed or notified. It keeps its socket but
// no longer receives routed traffic.
func (r *Registry) Bind(username string, id domain.ConnID) {
	s, ok := r.conns[id]
	if !ok {
		return
	}
	if prev, ok := r.online[username]; ok && prev != id {
		if orphan := r.conns[prev]; orphan != nil {
			orphan.username = ""
		}
	}
	// Re-login under a different name on the same connection releases
	// the old binding.
	if s.username != "" && s.username != username && r.online[s.username] == id {
		delete(r.online, s.username)
	}
	s.username = username
	r.online[username] = id
}

// Unbind clears the identity bound to id, if any. Idempotent: an
// orphaned or anonymous connection unbinds to nothing. The bound
// username is returned so callers can announce the presence change.
func (r *Registry) Unbind(id domain.ConnID) (string, bool) {
	s, ok := r.conns[id]
	if !ok || s.username == "" {
		return "", false
	}
	username := s.username
	s.username = ""
	if r.online[username] == id {
		delete(r.online, username)
	}
	return username, true
}

// Deregister removes the connection entirely (socket closed).
// Room membership is keyed by username, so nothing to clean up there:
// an offline username simply resolves to no sink.
func (r *Registry) Deregister(id domain.ConnID) (string, bool) {
	username, bound := r.Unbind(id)
	delete(r.conns, id)
	return username, bound
}

// UsernameFor resolves the identity bound to a connection.
func (r *Registry) UsernameFor(id domain.ConnID) (string, bool) {
	s, ok := r.conns[id]
	if !ok || s.username == "" {
		return "", false
	}
	return s.username, true
}

// SinkForConn returns a specific connection's sink. Replies to a
// request go back to the requesting connection, not to whichever
// connection currently holds the identity.
func (r *Registry) SinkForConn(id domain.ConnID) (contract.EventSink, bool) {
	s, ok := r.conns[id]
	if !ok {
		return nil, false
	}
	return s.sink, true
}

// SinkFor returns the sink of the identity's current live connection,
// or false when the identity is offline.
func (r *Registry) SinkFor(username string) (contract.EventSink, bool) {
	id, ok := r.online[username]
	if !ok {
		return nil, false
	}
	s, ok := r.conns[id]
	if !ok {
		return nil, false
	}
	return s.sink, true
}

// Online returns the deduplicated, sorted usernames with a live connection.
func (r *Registry) Online() []string {
	usernames := make([]string, 0, len(r.online))
	for u := range r.online {
		usernames = append(usernames, u)
	}
	sort.Strings(usernames)
	return usernames
}

// Subscribe adds username to the group's room. Subscriptions are
// per-identity: after a login overwrite, routed room traffic follows
// the newest connection automatically.
func (r *Registry) Subscribe(group, username string) {
	if _, ok := r.rooms[group]; !ok {
		r.rooms[group] = make(domain.Set)
	}
	r.rooms[group][username] = struct{}{}
}

// SinksForRoom resolves the room's subscribers into live sinks,
// skipping offline members.
func (r *Registry) SinksForRoom(group string) []contract.EventSink {
	members, ok := r.rooms[group]
	if !ok {
		return nil
	}
	var sinks []contract.EventSink
	for username := range members {
		if sink, online := r.SinkFor(username); online {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}

// AllSinks returns every live connection, anonymous ones included:
// user_list broadcasts reach sockets that have not logged in yet.
func (r *Registry) AllSinks() []contract.EventSink {
	sinks := make([]contract.EventSink, 0, len(r.conns))
	for _, s := range r.conns {
		sinks = append(sinks, s.sink)
	}
	return sinks
}
