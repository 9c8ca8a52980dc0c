package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vahe2002pog/tg-queue/internal/domain"
)

type QueueRepository struct {
	pool *pgxpool.Pool
}

func NewQueueRepository(pool *pgxpool.Pool) *QueueRepository {
	return &QueueRepository{pool: pool}
}

func (r *QueueRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const queueColumns = `id, name, creator_id, latitude, longitude, starts_at, unlocked_after, group_id, created_at`

func (r *QueueRepository) CreateQueue(ctx context.Context, q domain.Queue) (int64, error) {
	const stmt = `
INSERT INTO queues (name, creator_id, latitude, longitude, starts_at, unlocked_after, group_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`

	var id int64
	err := r.queryRow(ctx, stmt,
		q.Name,
		q.CreatorID,
		q.Latitude,
		q.Longitude,
		q.StartsAt,
		q.UnlockedAfter,
		q.GroupID,
		q.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create queue: %w", err)
	}
	return id, nil
}

func (r *QueueRepository) GetQueue(ctx context.Context, queueID int64) (*domain.Queue, error) {
	query := `SELECT ` + queueColumns + ` FROM queues WHERE id = $1`

	var q domain.Queue
	err := r.queryRow(ctx, query, queueID).
		Scan(&q.ID, &q.Name, &q.CreatorID, &q.Latitude, &q.Longitude, &q.StartsAt, &q.UnlockedAfter, &q.GroupID, &q.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get queue: %w", err)
	}
	return &q, nil
}

func (r *QueueRepository) ListQueues(ctx context.Context) ([]domain.Queue, error) {
	query := `SELECT ` + queueColumns + ` FROM queues ORDER BY id`
	return r.listQueues(ctx, query)
}

func (r *QueueRepository) ListQueuesByMember(ctx context.Context, memberID int64) ([]domain.Queue, error) {
	query := `
SELECT ` + queueColumns + `
FROM queues
WHERE id IN (SELECT queue_id FROM queue_members WHERE member_id = $1)
   OR creator_id = $1
ORDER BY id`
	return r.listQueues(ctx, query, memberID)
}

func (r *QueueRepository) ListQueuesByGroup(ctx context.Context, groupID int64) ([]domain.Queue, error) {
	query := `SELECT ` + queueColumns + ` FROM queues WHERE group_id = $1 ORDER BY id`
	return r.listQueues(ctx, query, groupID)
}

// DeleteQueueCascade removes the queue; the membership rows go with it
// through the foreign key, in the same implicit transaction.
func (r *QueueRepository) DeleteQueueCascade(ctx context.Context, queueID int64) (bool, error) {
	tag, err := r.exec(ctx, `DELETE FROM queues WHERE id = $1`, queueID)
	if err != nil {
		return false, fmt.Errorf("delete queue: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *QueueRepository) listQueues(ctx context.Context, query string, args ...any) ([]domain.Queue, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list queues: %w", err)
	}
	defer rows.Close()

	var out []domain.Queue
	for rows.Next() {
		var q domain.Queue
		if err := rows.Scan(&q.ID, &q.Name, &q.CreatorID, &q.Latitude, &q.Longitude, &q.StartsAt, &q.UnlockedAfter, &q.GroupID, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan queue: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queues: %w", err)
	}
	return out, nil
}

func (r *QueueRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *QueueRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *QueueRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
