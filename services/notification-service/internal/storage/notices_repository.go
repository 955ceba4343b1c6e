package storage

import (
	"context"

	"github.com/jmarbas/lupon-cms/libs/db"
)

// Notice is one delivery attempt: a single channel to a single recipient.
// An event that goes out by both email and SMS produces two rows.
type Notice struct {
	ComplaintID   int64
	CaseNumber    string
	EventType     string
	Channel       string
	Recipient     string
	Subject       string
	Body          string
	Status        string
	FailureReason string
}

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, n Notice) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notices (complaint_id, case_number, event_type, channel, recipient, subject, body, status, failure_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, n.ComplaintID, n.CaseNumber, n.EventType, n.Channel, n.Recipient, n.Subject, n.Body, n.Status, n.FailureReason)
	return err
}
