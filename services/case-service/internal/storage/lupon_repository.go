package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jmarbas/lupon-cms/libs/db"
	"github.com/jmarbas/lupon-cms/services/case-service/internal/model"
)

type LuponRepository struct {
	pool *db.Pool
}

func NewLuponRepository(pool *db.Pool) *LuponRepository {
	return &LuponRepository{pool: pool}
}

func (r *LuponRepository) CreateMember(ctx context.Context, m *model.LuponMember) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO lupon_members (name, position, contact_number, term_start, term_end, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, m.Name, m.Position, m.ContactNumber, m.TermStart, m.TermEnd, m.Active).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *LuponRepository) ListMembers(ctx context.Context) ([]model.LuponMember, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, position, COALESCE(contact_number, ''), term_start, term_end, active
		FROM lupon_members
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []model.LuponMember
	for rows.Next() {
		var m model.LuponMember
		if err := rows.Scan(&m.ID, &m.Name, &m.Position, &m.ContactNumber,
			&m.TermStart, &m.TermEnd, &m.Active); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *LuponRepository) UpdateMember(ctx context.Context, m *model.LuponMember) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE lupon_members
		SET name = $2, position = $3, contact_number = $4, term_start = $5, term_end = $6, active = $7
		WHERE id = $1
	`, m.ID, m.Name, m.Position, m.ContactNumber, m.TermStart, m.TermEnd, m.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
