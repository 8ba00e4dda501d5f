package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrCounterNotFound means no counter has been persisted yet.
	ErrCounterNotFound = errors.New("counter record not found")
	// ErrCounterCorrupt means a record exists but cannot be read as a non-negative count.
	ErrCounterCorrupt = errors.New("counter record corrupt")
)

// CounterRepository persists the ticket counter.
// Load returns ErrCounterNotFound or ErrCounterCorrupt (possibly wrapped) for a missing or unreadable record.
type CounterRepository interface {
	Load(ctx context.Context) (int64, error)
	Save(ctx context.Context, count int64) error
}

type pgxExecQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresCounterRepository struct {
	db   pgxExecQuerier
	name string
}

// NewPostgresCounterRepository stores the counter as one row of ticket_counters keyed by name.
func NewPostgresCounterRepository(db pgxExecQuerier, name string) CounterRepository {
	return &postgresCounterRepository{db: db, name: name}
}

func (r *postgresCounterRepository) Load(ctx context.Context) (int64, error) {
	const query = `SELECT count FROM ticket_counters WHERE name=$1`
	var count int64
	if err := r.db.QueryRow(ctx, query, r.name).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrCounterNotFound
		}
		return 0, err
	}
	if count < 0 {
		return 0, fmt.Errorf("%w: negative count %d", ErrCounterCorrupt, count)
	}
	return count, nil
}

func (r *postgresCounterRepository) Save(ctx context.Context, count int64) error {
	const query = `
        INSERT INTO ticket_counters (name, count, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (name) DO UPDATE SET count=EXCLUDED.count, updated_at=NOW()`
	_, err := r.db.Exec(ctx, query, r.name, count)
	return err
}
