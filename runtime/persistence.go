package runtime

import (
	"context"
	"log/slog"
	"time"

	"chat-hub/contract"
	"chat-hub/domain"
)

var _ contract.Worker = (*PersistenceWorker)(nil)

// PersistenceWorker drains the durable-write queues off the
// coordinator's critical path. Snapshot requests are coalesced: when
// several full-state rewrites are pending, only the newest is written.
// A failed write is logged and dropped; in-memory state stays
// authoritative until the next restart (documented durability gap).
type PersistenceWorker struct {
	log            *slog.Logger
	snapshots      chan domain.Snapshot
	identities     chan domain.Identity
	snapshotStore  contract.SnapshotStore
	identityStore  contract.IdentityStore
	persistTimeout time.Duration
}

func NewPersistenceWorker(
	log *slog.Logger,
	snapshots chan domain.Snapshot,
	identities chan domain.Identity,
	snapshotStore contract.SnapshotStore,
	identityStore contract.IdentityStore,
	persistTimeout time.Duration,
) *PersistenceWorker {
	return &PersistenceWorker{
		log:            log,
		snapshots:      snapshots,
		identities:     identities,
		snapshotStore:  snapshotStore,
		identityStore:  identityStore,
		persistTimeout: persistTimeout,
	}
}

func (w *PersistenceWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.flush()
			w.log.Debug("Stopping persistence worker")
			return nil
		case snapshot := <-w.snapshots:
			w.save(ctx, w.latest(snapshot))
		case identity := <-w.identities:
			w.upsert(ctx, identity)
		}
	}
}

// latest drains any queued snapshots and keeps the newest one. Each
// snapshot is a full rewrite, so intermediates carry no extra
// information.
func (w *PersistenceWorker) latest(snapshot domain.Snapshot) domain.Snapshot {
	for {
		select {
		case next := <-w.snapshots:
			snapshot = next
		default:
			return snapshot
		}
	}
}

// flush writes whatever is still queued at shutdown, under a fresh
// context since the supervised one is already canceled.
func (w *PersistenceWorker) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), w.persistTimeout)
	defer cancel()
	for {
		select {
		case snapshot := <-w.snapshots:
			w.save(ctx, w.latest(snapshot))
		case identity := <-w.identities:
			w.upsert(ctx, identity)
		default:
			return
		}
	}
}

func (w *PersistenceWorker) save(ctx context.Context, snapshot domain.Snapshot) {
	ctx, cancel := context.WithTimeout(ctx, w.persistTimeout)
	defer cancel()
	if err := w.snapshotStore.Save(ctx, snapshot); err != nil {
		w.log.Error("Snapshot write failed", "error", err)
	}
}

func (w *PersistenceWorker) upsert(ctx context.Context, identity domain.Identity) {
	ctx, cancel := context.WithTimeout(ctx, w.persistTimeout)
	defer cancel()
	if err := w.identityStore.Upsert(ctx, identity.Username, identity.Avatar); err != nil {
		w.log.Error("Identity upsert failed", "username", identity.Username, "error", err)
	}
}
