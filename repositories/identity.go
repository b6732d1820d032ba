package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"chat-hub/contract"
	"chat-hub/domain"
)

var _ contract.IdentityStore = (*IdentityRepository)(nil)

// IdentityRepository is the durable record of known identities, backed
// by SQLite. created_at is stored as ISO-8601 text and set once, on
// first sight; the avatar is overwritten on every upsert.
type IdentityRepository struct {
	db *sql.DB
}

func NewIdentityRepository(ctx context.Context, path string) (*IdentityRepository, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open failed: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping failed: %w", err)
	}

	repository := &IdentityRepository{db: db}
	if err := repository.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return repository, nil
}

func (r *IdentityRepository) init(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		username   TEXT PRIMARY KEY,
		avatar     TEXT,
		created_at TEXT
	)`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite schema init failed: %w", err)
	}
	return nil
}

// Upsert inserts the identity on first sight, otherwise overwrites the
// avatar only. The avatar is caller-authoritative, never merged.
func (r *IdentityRepository) Upsert(ctx context.Context, username, avatar string) error {
	query := `
	INSERT INTO users (username, avatar, created_at) VALUES (?, ?, ?)
	ON CONFLICT(username) DO UPDATE SET avatar = excluded.avatar`
	createdAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := r.db.ExecContext(ctx, query, username, avatar, createdAt); err != nil {
		return fmt.Errorf("identity upsert failed: %w", err)
	}
	return nil
}

// All returns every persisted identity, newest first.
func (r *IdentityRepository) All(ctx context.Context) ([]domain.Identity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT username, avatar, created_at FROM users ORDER BY created_at DESC, username`)
	if err != nil {
		return nil, fmt.Errorf("identity listing failed: %w", err)
	}
	defer rows.Close()

	var identities []domain.Identity
	for rows.Next() {
		var identity domain.Identity
		var createdAt string
		if err := rows.Scan(&identity.Username, &identity.Avatar, &createdAt); err != nil {
			return nil, fmt.Errorf("identity scan failed: %w", err)
		}
		// Timestamps are ISO-8601 text; a row that predates this
		// schema keeps a zero time rather than failing the listing.
		if parsed, err := time.Parse(time.RFC3339, createdAt); err == nil {
			identity.CreatedAt = parsed
		}
		identities = append(identities, identity)
	}
	return identities, rows.Err()
}

func (r *IdentityRepository) Close() error {
	return r.db.Close()
}
