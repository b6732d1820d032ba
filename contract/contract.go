//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding the need for manual naming in the Worker
// interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is one side of a live connection: the coordinator pushes
// outbound events into it, the transport drains them to the client.
// Consume must not block the caller beyond ctx.
type EventSink interface {
	Consume(ctx context.Context, e event.Outbound) error
}

// IdentityStore is the durable record of known identities.
// Upsert inserts on first sight and overwrites the avatar afterwards;
// created_at is never touched again.
type IdentityStore interface {
	Upsert(ctx context.Context, username, avatar string) error
	All(ctx context.Context) ([]domain.Identity, error)
}

// SnapshotStore holds the full-state blob of groups and conversations.
// Load reports false when no snapshot has ever been written.
type SnapshotStore interface {
	Save(ctx context.Context, snapshot domain.Snapshot) error
	Load(ctx context.Context) (domain.Snapshot, bool, error)
}
