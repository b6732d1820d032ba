package runtime

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"chat-hub/domain"
	"chat-hub/errors"
)

func TestGroupDirectory_Create_Rejects_Duplicate_Name(t *testing.T) {
	req := require.New(t)
	directory := NewGroupDirectory()

	_, err := directory.Create("general", domain.DefaultGroupAvatar, "alice", nil)
	req.NoError(err)

	// Names are created once and never reused
	_, err = directory.Create("general", domain.DefaultGroupAvatar, "bob", nil)
	req.ErrorIs(err, errors.ErrGroupExists)
}

func TestGroupDirectory_Append_To_Unknown_Group(t *testing.T) {
	req := require.New(t)
	directory := NewGroupDirectory()

	_, err := directory.Append("nowhere", domain.GroupMessage{Content: "lost"})
	req.ErrorIs(err, errors.ErrGroupNotFound)

	_, err = directory.AddMember("nowhere", "alice")
	req.ErrorIs(err, errors.ErrGroupNotFound)
}

func TestGroupDirectory_History_Append_Only(t *testing.T) {
	req := require.New(t)
	directory := NewGroupDirectory()
	_, err := directory.Create("general", domain.DefaultGroupAvatar, "alice", nil)
	req.NoError(err)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sent := make([]domain.GroupMessage, 0, 3)
	for i, content := range []string{"one", "two", "three"} {
		message := domain.GroupMessage{
			ID:      uuid.New(),
			From:    "alice",
			Group:   "general",
			Content: content,
			At:      at.Add(time.Duration(i) * time.Second),
		}
		appended, err := directory.Append("general", message)
		req.NoError(err)
		req.Equal(message, appended)
		sent = append(sent, message)
	}

	group, ok := directory.Get("general")
	req.True(ok)
	req.Equal(sent, group.History)
}

func TestGroupDirectory_GroupsFor(t *testing.T) {
	req := require.New(t)
	directory := NewGroupDirectory()
	_, err := directory.Create("ops", domain.DefaultGroupAvatar, "alice", []string{"bob"})
	req.NoError(err)
	_, err = directory.Create("random", domain.DefaultGroupAvatar, "bob", nil)
	req.NoError(err)

	req.Equal([]string{"ops", "random"}, directory.GroupsFor("bob"))
	req.Equal([]string{"ops"}, directory.GroupsFor("alice"))
	req.Empty(directory.GroupsFor("clara"))
}

func TestGroupDirectory_Snapshot_Round_Trip(t *testing.T) {
	req := require.New(t)
	directory := NewGroupDirectory()
	_, err := directory.Create("general", "📣", "alice", []string{"bob"})
	req.NoError(err)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	_, err = directory.Append("general", domain.GroupMessage{
		ID: uuid.New(), From: "alice", Group: "general", Content: "hello", At: at,
	})
	req.NoError(err)

	// When the export is restored into a fresh directory
	restored := NewGroupDirectory()
	restored.Restore(directory.Snapshot())

	// Then both directories are element-wise equal
	req.Equal(directory.Snapshot(), restored.Snapshot())

	group, ok := restored.Get("general")
	req.True(ok)
	req.Equal("📣", group.Avatar)
	req.Equal([]string{"alice", "bob"}, group.MemberList())
	req.Len(group.History, 1)
}
