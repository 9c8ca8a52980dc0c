package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vahe2002pog/tg-queue/internal/domain"
)

type MembershipRepository struct {
	pool *pgxpool.Pool
}

func NewMembershipRepository(pool *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{pool: pool}
}

func (r *MembershipRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// LockQueue takes a row lock on the queue, serializing order mutations
// per queue for the rest of the transaction.
func (r *MembershipRepository) LockQueue(ctx context.Context, queueID int64) error {
	var one int
	err := r.queryRow(ctx, `SELECT 1 FROM queues WHERE id = $1 FOR UPDATE`, queueID).Scan(&one)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.ErrQueueNotFound
		}
		return fmt.Errorf("lock queue: %w", err)
	}
	return nil
}

func (r *MembershipRepository) GetMembership(ctx context.Context, queueID, memberID int64) (*domain.Membership, error) {
	const query = `SELECT queue_id, member_id, join_key FROM queue_members WHERE queue_id = $1 AND member_id = $2`

	var m domain.Membership
	err := r.queryRow(ctx, query, queueID, memberID).Scan(&m.QueueID, &m.MemberID, &m.JoinKey)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return &m, nil
}

func (r *MembershipRepository) InsertMembership(ctx context.Context, m domain.Membership) error {
	const stmt = `INSERT INTO queue_members (queue_id, member_id, join_key) VALUES ($1, $2, $3)`

	if _, err := r.exec(ctx, stmt, m.QueueID, m.MemberID, m.JoinKey); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyMember
		}
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

func (r *MembershipRepository) DeleteMembership(ctx context.Context, queueID, memberID int64) (bool, error) {
	tag, err := r.exec(ctx, `DELETE FROM queue_members WHERE queue_id = $1 AND member_id = $2`, queueID, memberID)
	if err != nil {
		return false, fmt.Errorf("delete membership: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *MembershipRepository) ListMembershipsOrdered(ctx context.Context, queueID int64) ([]domain.Membership, error) {
	const query = `
SELECT queue_id, member_id, join_key
FROM queue_members
WHERE queue_id = $1
ORDER BY join_key ASC`

	rows, err := r.query(ctx, query, queueID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	var out []domain.Membership
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.QueueID, &m.MemberID, &m.JoinKey); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}
	return out, nil
}

func (r *MembershipRepository) UpdateJoinKey(ctx context.Context, queueID, memberID, joinKey int64) error {
	tag, err := r.exec(ctx, `UPDATE queue_members SET join_key = $3 WHERE queue_id = $1 AND member_id = $2`, queueID, memberID, joinKey)
	if err != nil {
		return fmt.Errorf("update join key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotMember
	}
	return nil
}

func (r *MembershipRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *MembershipRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *MembershipRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
