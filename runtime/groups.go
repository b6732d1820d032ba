package runtime

import (
	"sort"

	"chat-hub/domain"
	"chat-hub/errors"
)

// GroupDirectory owns the named rooms. Like the Registry it carries no
// lock of its own; the coordinator is the only goroutine touching it.
type GroupDirectory struct {
	groups map[string]*domain.Group
}

func NewGroupDirectory() *GroupDirectory {
	return &GroupDirectory{groups: make(map[string]*domain.Group)}
}

// Create registers a new group. The creator is always part of the
// member set, whether or not the caller listed themselves.
func (d *GroupDirectory) Create(name, avatar, creator string, initialMembers []string) (*domain.Group, error) {
	if _, ok := d.groups[name]; ok {
		return nil, errors.ErrGroupExists
	}
	group := domain.NewGroup(name, avatar, creator, initialMembers)
	d.groups[name] = group
	return group, nil
}

func (d *GroupDirectory) Get(name string) (*domain.Group, bool) {
	group, ok := d.groups[name]
	return group, ok
}

// AddMember reports whether membership changed. Adding an existing
// member is a no-op, not an error.
func (d *GroupDirectory) AddMember(name, username string) (bool, error) {
	group, ok := d.groups[name]
	if !ok {
		return false, errors.ErrGroupNotFound
	}
	return group.AddMember(username), nil
}

// Append adds a message to the group's history and returns it for broadcast.
func (d *GroupDirectory) Append(name string, message domain.GroupMessage) (domain.GroupMessage, error) {
	group, ok := d.groups[name]
	if !ok {
		return domain.GroupMessage{}, errors.ErrGroupNotFound
	}
	group.PostMessage(message)
	return message, nil
}

// Names returns all group names in a stable order.
func (d *GroupDirectory) Names() []string {
	names := make([]string, 0, len(d.groups))
	for name := range d.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GroupsFor returns the names of every group username belongs to,
// used to resubscribe an identity on login.
func (d *GroupDirectory) GroupsFor(username string) []string {
	var names []string
	for name, group := range d.groups {
		if group.HasMember(username) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Snapshot exports the directory in the durable on-disk shape.
func (d *GroupDirectory) Snapshot() map[string]domain.GroupState {
	out := make(map[string]domain.GroupState, len(d.groups))
	for name, group := range d.groups {
		history := make([]domain.GroupMessage, len(group.History))
		copy(history, group.History)
		out[name] = domain.GroupState{
			Members: group.MemberList(),
			History: history,
			Avatar:  group.Avatar,
		}
	}
	return out
}

// Restore replaces the directory content with a loaded snapshot.
func (d *GroupDirectory) Restore(states map[string]domain.GroupState) {
	d.groups = make(map[string]*domain.Group, len(states))
	for name, state := range states {
		members := make(domain.Set, len(state.Members))
		for _, m := range state.Members {
			members[m] = struct{}{}
		}
		avatar := state.Avatar
		if avatar == "" {
			avatar = domain.DefaultGroupAvatar
		}
		d.groups[name] = &domain.Group{
			Name:    name,
			Avatar:  avatar,
			Members: members,
			History: state.History,
		}
	}
}
