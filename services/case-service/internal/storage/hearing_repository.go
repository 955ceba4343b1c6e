package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jmarbas/lupon-cms/libs/db"
	"github.com/jmarbas/lupon-cms/services/case-service/internal/model"
)

type HearingRepository struct {
	pool *db.Pool
}

func NewHearingRepository(pool *db.Pool) *HearingRepository {
	return &HearingRepository{pool: pool}
}

// ListSessionsForDate returns the non-cancelled sessions booked on a
// calendar date, ordered by slot time. Used to build the availability
// snapshot for that date.
func (r *HearingRepository) ListSessionsForDate(ctx context.Context, date time.Time) ([]model.HearingSession, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, complaint_id, session_type, hearing_date, slot_time, slot_label, status, created_at
		FROM hearing_sessions
		WHERE hearing_date = $1 AND status <> 'cancelled'
		ORDER BY slot_time ASC
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

// ListSessionsForDateLocked is ListSessionsForDate inside the booking
// transaction, with the rows locked so two concurrent bookings for the same
// date serialize on the capacity check.
func (r *HearingRepository) ListSessionsForDateLocked(ctx context.Context, tx pgx.Tx, date time.Time) ([]model.HearingSession, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, complaint_id, session_type, hearing_date, slot_time, slot_label, status, created_at
		FROM hearing_sessions
		WHERE hearing_date = $1 AND status <> 'cancelled'
		ORDER BY slot_time ASC
		FOR UPDATE
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

func scanSessions(rows pgx.Rows) ([]model.HearingSession, error) {
	var sessions []model.HearingSession
	for rows.Next() {
		var s model.HearingSession
		if err := rows.Scan(&s.ID, &s.ComplaintID, &s.SessionType, &s.HearingDate,
			&s.SlotTime, &s.SlotLabel, &s.Status, &s.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// CreateSession inserts a hearing session. The partial unique index on
// (hearing_date, slot_time) for non-cancelled rows turns a lost race into a
// conflict error while letting a cancelled slot be rebooked.
func (r *HearingRepository) CreateSession(ctx context.Context, tx pgx.Tx, s *model.HearingSession) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO hearing_sessions (complaint_id, session_type, hearing_date, slot_time, slot_label, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, s.ComplaintID, s.SessionType, s.HearingDate, s.SlotTime, s.SlotLabel, s.Status).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *HearingRepository) CancelSession(ctx context.Context, tx pgx.Tx, id int64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE hearing_sessions SET status = 'cancelled' WHERE id = $1 AND status <> 'cancelled'
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *HearingRepository) GetSessionForUpdate(ctx context.Context, tx pgx.Tx, id int64) (model.HearingSession, error) {
	var s model.HearingSession
	err := tx.QueryRow(ctx, `
		SELECT id, complaint_id, session_type, hearing_date, slot_time, slot_label, status, created_at
		FROM hearing_sessions
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&s.ID, &s.ComplaintID, &s.SessionType, &s.HearingDate,
		&s.SlotTime, &s.SlotLabel, &s.Status, &s.CreatedAt)
	if err != nil {
		return model.HearingSession{}, err
	}
	return s, nil
}
