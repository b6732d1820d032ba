package repositories

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chat-hub/domain"
)

func newIdentityRepository(t *testing.T) *IdentityRepository {
	t.Helper()
	repository, err := NewIdentityRepository(context.Background(), filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close() })
	return repository
}

func TestIdentityRepository_Upsert_New_Identity(t *testing.T) {
	req := require.New(t)
	repository := newIdentityRepository(t)
	ctx := context.Background()

	// When an unseen identity is upserted
	req.NoError(repository.Upsert(ctx, "alice", domain.DefaultUserAvatar))

	// Then it is listed with its avatar and a creation time
	identities, err := repository.All(ctx)
	req.NoError(err)
	req.Len(identities, 1)
	req.Equal("alice", identities[0].Username)
	req.Equal(domain.DefaultUserAvatar, identities[0].Avatar)
	req.False(identities[0].CreatedAt.IsZero())
}

func TestIdentityRepository_Upsert_Existing_Updates_Avatar_Only(t *testing.T) {
	req := require.New(t)
	repository := newIdentityRepository(t)
	ctx := context.Background()

	// Given alice is already known
	req.NoError(repository.Upsert(ctx, "alice", domain.DefaultUserAvatar))
	identities, err := repository.All(ctx)
	req.NoError(err)
	firstSeen := identities[0].CreatedAt

	// When she logs in again with a different avatar
	req.NoError(repository.Upsert(ctx, "alice", "🦊"))

	// Then the avatar changes but created_at does not, and no row is added
	identities, err = repository.All(ctx)
	req.NoError(err)
	req.Len(identities, 1)
	req.Equal("🦊", identities[0].Avatar)
	req.Equal(firstSeen, identities[0].CreatedAt)
}

func TestIdentityRepository_All_Lists_Newest_First(t *testing.T) {
	req := require.New(t)
	repository := newIdentityRepository(t)
	ctx := context.Background()

	// Given two identities created more than a second apart, since
	// created_at carries second precision
	req.NoError(repository.Upsert(ctx, "alice", domain.DefaultUserAvatar))
	time.Sleep(1100 * time.Millisecond)
	req.NoError(repository.Upsert(ctx, "bob", domain.DefaultUserAvatar))

	// Then the most recent registration comes first
	identities, err := repository.All(ctx)
	req.NoError(err)
	req.Len(identities, 2)
	req.Equal("bob", identities[0].Username)
	req.Equal("alice", identities[1].Username)
}
