package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vahe2002pog/tg-queue/internal/domain"
)

type GroupRepository struct {
	pool *pgxpool.Pool
}

func NewGroupRepository(pool *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{pool: pool}
}

func (r *GroupRepository) CreateGroup(ctx context.Context, g domain.Group) (int64, error) {
	const stmt = `INSERT INTO groups (name, creator_id, created_at) VALUES ($1, $2, $3) RETURNING id`

	var id int64
	if err := r.queryRow(ctx, stmt, g.Name, g.CreatorID, g.CreatedAt).Scan(&id); err != nil {
		return 0, fmt.Errorf("create group: %w", err)
	}
	return id, nil
}

func (r *GroupRepository) GetGroup(ctx context.Context, groupID int64) (*domain.Group, error) {
	const query = `SELECT id, name, creator_id, created_at FROM groups WHERE id = $1`

	var g domain.Group
	err := r.queryRow(ctx, query, groupID).Scan(&g.ID, &g.Name, &g.CreatorID, &g.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get group: %w", err)
	}
	return &g, nil
}

func (r *GroupRepository) ListGroups(ctx context.Context) ([]domain.Group, error) {
	return r.listGroups(ctx, `SELECT id, name, creator_id, created_at FROM groups ORDER BY id`)
}

func (r *GroupRepository) ListGroupsByMember(ctx context.Context, memberID int64) ([]domain.Group, error) {
	const query = `
SELECT g.id, g.name, g.creator_id, g.created_at
FROM groups g
JOIN group_members gm ON gm.group_id = g.id
WHERE gm.member_id = $1
ORDER BY g.id`
	return r.listGroups(ctx, query, memberID)
}

func (r *GroupRepository) DeleteGroupCascade(ctx context.Context, groupID int64) (bool, error) {
	tag, err := r.exec(ctx, `DELETE FROM groups WHERE id = $1`, groupID)
	if err != nil {
		return false, fmt.Errorf("delete group: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *GroupRepository) AddGroupMember(ctx context.Context, gm domain.GroupMember) error {
	const stmt = `INSERT INTO group_members (group_id, member_id, joined_at) VALUES ($1, $2, $3)`

	if _, err := r.exec(ctx, stmt, gm.GroupID, gm.MemberID, gm.JoinedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyMember
		}
		return fmt.Errorf("add group member: %w", err)
	}
	return nil
}

func (r *GroupRepository) RemoveGroupMember(ctx context.Context, groupID, memberID int64) (bool, error) {
	tag, err := r.exec(ctx, `DELETE FROM group_members WHERE group_id = $1 AND member_id = $2`, groupID, memberID)
	if err != nil {
		return false, fmt.Errorf("remove group member: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *GroupRepository) ListGroupMembers(ctx context.Context, groupID int64) ([]int64, error) {
	rows, err := r.query(ctx, `SELECT member_id FROM group_members WHERE group_id = $1 ORDER BY joined_at`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan group member: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group members: %w", err)
	}
	return out, nil
}

func (r *GroupRepository) listGroups(ctx context.Context, query string, args ...any) ([]domain.Group, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var out []domain.Group
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatorID, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return out, nil
}

func (r *GroupRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *GroupRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *GroupRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
