package domain

import "sort"

// Group is a named, persistent multi-member room. Name and Avatar are
// fixed at creation; the member set only grows (there is no leave
// operation) and History is append-only.
type Group struct {
	Name    string
	Avatar  string
	Members Set
	History []GroupMessage
}

// NewGroup builds a group whose member set is initialMembers plus the
// creator, so the creator invariant holds even when callers omit
// themselves from the list.
func NewGroup(name, avatar, creator string, initialMembers []string) *Group {
	members := make(Set, len(initialMembers)+1)
	members[creator] = struct{}{}
	for _, m := range initialMembers {
		members[m] = struct{}{}
	}
	return &Group{
		Name:    name,
		Avatar:  avatar,
		Members: members,
	}
}

// AddMember reports whether the membership actually changed,
// so callers can skip a durable write on the no-op path.
func (g *Group) AddMember(username string) bool {
	if _, ok := g.Members[username]; ok {
		return false
	}
	g.Members[username] = struct{}{}
	return true
}

func (g *Group) HasMember(username string) bool {
	_, ok := g.Members[username]
	return ok
}

func (g *Group) PostMessage(message GroupMessage) {
	g.History = append(g.History, message)
}

// MemberList returns the members in a stable order for snapshots and tests.
func (g *Group) MemberList() []string {
	members := make([]string, 0, len(g.Members))
	for m := range g.Members {
		members = append(members, m)
	}
	sort.Strings(members)
	return members
}
