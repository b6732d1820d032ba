package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"chat-hub/contract"
	"chat-hub/domain"
)

var _ contract.SnapshotStore = (*SnapshotRepository)(nil)

// snapshotKey holds the one full-state blob. The format is a full
// rewrite per mutation, so a single key is the whole store.
var snapshotKey = []byte("snapshot:state")

// SnapshotRepository persists the Snapshot blob in BadgerDB as JSON,
// the same shape the original data file used, so the round-trip
// invariant is checked against the wire schema directly.
type SnapshotRepository struct {
	db *badger.DB
}

func NewSnapshotRepository(db *badger.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Save(_ context.Context, snapshot domain.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("snapshot marshal failed: %w", err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey, data)
	})
}

// Load returns false without error when no snapshot was ever written:
// a fresh data directory is a normal state, not a fault.
func (r *SnapshotRepository) Load(_ context.Context) (domain.Snapshot, bool, error) {
	var data []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte(nil), val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Snapshot{}, false, nil
	}
	if err != nil {
		return domain.Snapshot{}, false, err
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("snapshot unmarshal failed: %w", err)
	}
	return snapshot, true, nil
}
