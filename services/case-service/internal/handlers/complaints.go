package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jmarbas/lupon-cms/services/case-service/internal/listquery"
	"github.com/jmarbas/lupon-cms/services/case-service/internal/model"
	"github.com/jmarbas/lupon-cms/services/case-service/internal/outbox"
	"github.com/jmarbas/lupon-cms/services/case-service/internal/storage"
)

type ComplaintHandler struct {
	repo       *storage.CaseRepository
	outboxRepo *outbox.Repository
	logger     *slog.Logger
	now        func() time.Time
}

func NewComplaintHandler(repo *storage.CaseRepository, outboxRepo *outbox.Repository, logger *slog.Logger, now func() time.Time) *ComplaintHandler {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &ComplaintHandler{repo: repo, outboxRepo: outboxRepo, logger: logger, now: now}
}

// complaintBindings wires Complaint fields into the list engine. Search
// covers everything a desk officer types into the search box.
var complaintBindings = listquery.Bindings[model.Complaint]{
	Search: []func(model.Complaint) listquery.Value{
		func(c model.Complaint) listquery.Value { return listquery.Text(c.CaseNumber) },
		func(c model.Complaint) listquery.Value { return listquery.Text(c.CaseTitle) },
		func(c model.Complaint) listquery.Value {
			return listquery.Texts(c.Complainant, c.Respondent)
		},
		func(c model.Complaint) listquery.Value {
			if c.Witness == "" {
				return listquery.None()
			}
			return listquery.Names(c.Witness)
		},
		func(c model.Complaint) listquery.Value { return listquery.Text(c.Status) },
	},
	Status: func(c model.Complaint) string { return c.Status },
	Title:  func(c model.Complaint) string { return c.CaseTitle },
	Filed:  func(c model.Complaint) time.Time { return c.DateFiled },
	ID:     func(c model.Complaint) int64 { return c.ID },
}

type fileComplaintRequest struct {
	CaseTitle        string `json:"case_title"`
	Complainant      string `json:"complainant"`
	ComplainantEmail string `json:"complainant_email"`
	ComplainantPhone string `json:"complainant_phone"`
	Respondent       string `json:"respondent"`
	Witness          string `json:"witness"`
	Description      string `json:"description"`
}

type complaintItem struct {
	ID               int64  `json:"id"`
	CaseNumber       string `json:"case_number"`
	CaseTitle        string `json:"case_title"`
	Complainant      string `json:"complainant"`
	ComplainantEmail string `json:"complainant_email,omitempty"`
	ComplainantPhone string `json:"complainant_phone,omitempty"`
	Respondent       string `json:"respondent"`
	Witness          string `json:"witness,omitempty"`
	Description      string `json:"description"`
	Status           string `json:"status"`
	DateFiled        string `json:"date_filed"`
	CreatedAt        string `json:"created_at"`
}

func toComplaintItem(c model.Complaint) complaintItem {
	return complaintItem{
		ID:               c.ID,
		CaseNumber:       c.CaseNumber,
		CaseTitle:        c.CaseTitle,
		Complainant:      c.Complainant,
		ComplainantEmail: c.ComplainantEmail,
		ComplainantPhone: c.ComplainantPhone,
		Respondent:       c.Respondent,
		Witness:          c.Witness,
		Description:      c.Description,
		Status:           c.Status,
		DateFiled:        c.DateFiled.UTC().Format(time.RFC3339),
		CreatedAt:        c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *ComplaintHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req fileComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json body")
		return
	}

	req.CaseTitle = strings.TrimSpace(req.CaseTitle)
	req.Complainant = strings.TrimSpace(req.Complainant)
	req.Respondent = strings.TrimSpace(req.Respondent)
	req.Description = strings.TrimSpace(req.Description)

	if req.CaseTitle == "" || req.Complainant == "" || req.Respondent == "" || req.Description == "" {
		writeMessage(w, http.StatusBadRequest, "case_title, complainant, respondent and description are required")
		return
	}

	now := h.now()
	c := &model.Complaint{
		CaseNumber:       newCaseNumber(now),
		CaseTitle:        req.CaseTitle,
		Complainant:      req.Complainant,
		ComplainantEmail: strings.TrimSpace(req.ComplainantEmail),
		ComplainantPhone: strings.TrimSpace(req.ComplainantPhone),
		Respondent:       req.Respondent,
		Witness:          strings.TrimSpace(req.Witness),
		Description:      req.Description,
		Status:           "for_mediation",
		DateFiled:        now,
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id, err := h.repo.CreateComplaint(ctx, tx, c)
	if err != nil {
		h.logger.Error("complaint insert failed", "err", err)
		writeMessage(w, http.StatusInternalServerError, "failed to file complaint")
		return
	}

	payload, err := json.Marshal(map[string]any{
		"complaint_id":      id,
		"case_number":       c.CaseNumber,
		"case_title":        c.CaseTitle,
		"complainant":       c.Complainant,
		"complainant_email": c.ComplainantEmail,
		"complainant_phone": c.ComplainantPhone,
		"respondent":        c.Respondent,
		"status":            c.Status,
		"date_filed":        c.DateFiled.Format(time.RFC3339),
	})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "failed to build event payload")
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "complaint",
		AggregateID:   fmt.Sprintf("%d", id),
		EventType:     outbox.EventCaseFiled,
		Payload:       payload,
	}); err != nil {
		writeMessage(w, http.StatusInternalServerError, "failed to write outbox event")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		writeMessage(w, http.StatusInternalServerError, "failed to commit")
		return
	}

	writeData(w, http.StatusCreated, map[string]any{
		"id":          id,
		"case_number": c.CaseNumber,
		"status":      c.Status,
	})
}

func (h *ComplaintHandler) List(w http.ResponseWriter, r *http.Request) {
	complaints, err := h.repo.ListComplaints(r.Context(), 500)
	if err != nil {
		h.logger.Error("complaint list failed", "err", err)
		writeMessage(w, http.StatusInternalServerError, "failed to list complaints")
		return
	}

	filtered := listquery.Apply(complaints, parseListOptions(r), complaintBindings, h.now())
	items := make([]complaintItem, 0, len(filtered))
	for _, c := range filtered {
		items = append(items, toComplaintItem(c))
	}
	writeData(w, http.StatusOK, items)
}

type updateStatusRequest struct {
	ComplaintID int64  `json:"complaint_id"`
	Status      string `json:"status"`
}

var allowedStatuses = map[string]bool{
	"for_mediation":    true,
	"for_conciliation": true,
	"for_arbitration":  true,
	"settled":          true,
	"withdrawn":        true,
	"referred":         true,
}

func (h *ComplaintHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if req.ComplaintID <= 0 || req.Status == "" {
		writeMessage(w, http.StatusBadRequest, "complaint_id and status are required")
		return
	}
	if !allowedStatuses[req.Status] {
		writeMessage(w, http.StatusBadRequest, "unknown status "+req.Status)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	c, err := h.repo.GetComplaintForUpdate(ctx, tx, req.ComplaintID)
	if err != nil {
		if storage.IsNotFound(err) {
			writeMessage(w, http.StatusNotFound, "complaint not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "failed to load complaint")
		return
	}
	if c.Status == req.Status {
		writeData(w, http.StatusOK, map[string]any{"id": c.ID, "status": c.Status})
		return
	}

	if err := h.repo.UpdateComplaintStatus(ctx, tx, c.ID, req.Status); err != nil {
		writeMessage(w, http.StatusInternalServerError, "failed to update status")
		return
	}
	if err := h.insertStatusChanged(ctx, tx, c, req.Status); err != nil {
		writeMessage(w, http.StatusInternalServerError, "failed to write outbox event")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		writeMessage(w, http.StatusInternalServerError, "failed to commit")
		return
	}
	writeData(w, http.StatusOK, map[string]any{"id": c.ID, "status": req.Status})
}

func (h *ComplaintHandler) insertStatusChanged(ctx context.Context, tx pgx.Tx, c model.Complaint, newStatus string) error {
	return insertStatusChangedEvent(ctx, tx, h.outboxRepo, c, newStatus, h.now())
}

// insertStatusChangedEvent is shared by every handler that transitions a
// complaint (status update, referral, settlement).
func insertStatusChangedEvent(ctx context.Context, tx pgx.Tx, repo *outbox.Repository, c model.Complaint, newStatus string, now time.Time) error {
	payload, err := json.Marshal(map[string]any{
		"complaint_id":      c.ID,
		"case_number":       c.CaseNumber,
		"case_title":        c.CaseTitle,
		"complainant":       c.Complainant,
		"complainant_email": c.ComplainantEmail,
		"complainant_phone": c.ComplainantPhone,
		"respondent":        c.Respondent,
		"old_status":        c.Status,
		"new_status":        newStatus,
		"changed_at":        now.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return repo.Insert(ctx, tx, outbox.Event{
		AggregateType: "complaint",
		AggregateID:   fmt.Sprintf("%d", c.ID),
		EventType:     outbox.EventCaseStatusChanged,
		Payload:       payload,
	})
}

func newCaseNumber(now time.Time) string {
	// KP-<year>-<short random suffix>, unique enough for a single barangay.
	return fmt.Sprintf("KP-%d-%s", now.Year(), strings.ToUpper(uuid.NewString()[:8]))
}
