package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmarbas/lupon-cms/libs/db"
	"github.com/jmarbas/lupon-cms/services/case-service/internal/model"
)

type CaseRepository struct {
	pool *db.Pool
}

func NewCaseRepository(pool *db.Pool) *CaseRepository {
	return &CaseRepository{pool: pool}
}

func (r *CaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *CaseRepository) CreateComplaint(ctx context.Context, tx pgx.Tx, c *model.Complaint) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO complaints
			(case_number, case_title, complainant, complainant_email, complainant_phone,
			 respondent, witness, description, status, date_filed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, c.CaseNumber, c.CaseTitle, c.Complainant, c.ComplainantEmail, c.ComplainantPhone,
		c.Respondent, c.Witness, c.Description, c.Status, c.DateFiled).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *CaseRepository) ListComplaints(ctx context.Context, limit int) ([]model.Complaint, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, case_number, case_title, complainant, complainant_email, complainant_phone,
			respondent, COALESCE(witness, ''), description, status, date_filed, created_at
		FROM complaints
		ORDER BY id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var complaints []model.Complaint
	for rows.Next() {
		var c model.Complaint
		if err := rows.Scan(&c.ID, &c.CaseNumber, &c.CaseTitle, &c.Complainant, &c.ComplainantEmail,
			&c.ComplainantPhone, &c.Respondent, &c.Witness, &c.Description, &c.Status,
			&c.DateFiled, &c.CreatedAt); err != nil {
			return nil, err
		}
		complaints = append(complaints, c)
	}
	return complaints, rows.Err()
}

func (r *CaseRepository) GetComplaintForUpdate(ctx context.Context, tx pgx.Tx, id int64) (model.Complaint, error) {
	var c model.Complaint
	err := tx.QueryRow(ctx, `
		SELECT id, case_number, case_title, complainant, complainant_email, complainant_phone,
			respondent, COALESCE(witness, ''), description, status, date_filed, created_at
		FROM complaints
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&c.ID, &c.CaseNumber, &c.CaseTitle, &c.Complainant, &c.ComplainantEmail,
		&c.ComplainantPhone, &c.Respondent, &c.Witness, &c.Description, &c.Status,
		&c.DateFiled, &c.CreatedAt)
	if err != nil {
		return model.Complaint{}, err
	}
	return c, nil
}

func (r *CaseRepository) UpdateComplaintStatus(ctx context.Context, tx pgx.Tx, id int64, status string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE complaints SET status = $2 WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *CaseRepository) CreateReferral(ctx context.Context, tx pgx.Tx, ref *model.Referral) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO referrals (complaint_id, case_title, agency, reason, status, date_referred)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, ref.ComplaintID, ref.CaseTitle, ref.Agency, ref.Reason, ref.Status, ref.DateReferred).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *CaseRepository) ListReferrals(ctx context.Context, limit int) ([]model.Referral, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, complaint_id, case_title, agency, reason, status, date_referred
		FROM referrals
		ORDER BY id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var referrals []model.Referral
	for rows.Next() {
		var ref model.Referral
		if err := rows.Scan(&ref.ID, &ref.ComplaintID, &ref.CaseTitle, &ref.Agency,
			&ref.Reason, &ref.Status, &ref.DateReferred); err != nil {
			return nil, err
		}
		referrals = append(referrals, ref)
	}
	return referrals, rows.Err()
}

func (r *CaseRepository) CreateSettlement(ctx context.Context, tx pgx.Tx, s *model.SettlementCase) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO settlements (complaint_id, case_title, session_type, terms, status, date_settled)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, s.ComplaintID, s.CaseTitle, s.SessionType, s.Terms, s.Status, s.DateSettled).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *CaseRepository) ListSettlements(ctx context.Context, limit int) ([]model.SettlementCase, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, complaint_id, case_title, session_type, terms, status, date_settled
		FROM settlements
		ORDER BY id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settlements []model.SettlementCase
	for rows.Next() {
		var s model.SettlementCase
		if err := rows.Scan(&s.ID, &s.ComplaintID, &s.CaseTitle, &s.SessionType,
			&s.Terms, &s.Status, &s.DateSettled); err != nil {
			return nil, err
		}
		settlements = append(settlements, s)
	}
	return settlements, rows.Err()
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// unique_violation or exclusion_violation
		return pgErr.Code == "23505" || pgErr.Code == "23P01"
	}
	return false
}
