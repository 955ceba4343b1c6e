package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jmarbas/lupon-cms/services/case-service/internal/listquery"
	"github.com/jmarbas/lupon-cms/services/case-service/internal/model"
	"github.com/jmarbas/lupon-cms/services/case-service/internal/outbox"
	"github.com/jmarbas/lupon-cms/services/case-service/internal/storage"
)

type ReferralHandler struct {
	repo       *storage.CaseRepository
	outboxRepo *outbox.Repository
	logger     *slog.Logger
	now        func() time.Time
}

func NewReferralHandler(repo *storage.CaseRepository, outboxRepo *outbox.Repository, logger *slog.Logger, now func() time.Time) *ReferralHandler {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &ReferralHandler{repo: repo, outboxRepo: outboxRepo, logger: logger, now: now}
}

var referralBindings = listquery.Bindings[model.Referral]{
	Search: []func(model.Referral) listquery.Value{
		func(r model.Referral) listquery.Value { return listquery.Text(r.CaseTitle) },
		func(r model.Referral) listquery.Value { return listquery.Texts(r.Agency, r.Reason) },
		func(r model.Referral) listquery.Value { return listquery.Text(r.Status) },
	},
	Status: func(r model.Referral) string { return r.Status },
	Title:  func(r model.Referral) string { return r.CaseTitle },
	Filed:  func(r model.Referral) time.Time { return r.DateReferred },
	ID:     func(r model.Referral) int64 { return r.ID },
}

type createReferralRequest struct {
	ComplaintID int64  `json:"complaint_id"`
	Agency      string `json:"agency"`
	Reason      string `json:"reason"`
}

type referralItem struct {
	ID           int64  `json:"id"`
	ComplaintID  int64  `json:"complaint_id"`
	CaseTitle    string `json:"case_title"`
	Agency       string `json:"agency"`
	Reason       string `json:"reason"`
	Status       string `json:"status"`
	DateReferred string `json:"date_referred"`
}

func (h *ReferralHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReferralRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Agency = strings.TrimSpace(req.Agency)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.ComplaintID <= 0 || req.Agency == "" || req.Reason == "" {
		writeMessage(w, http.StatusBadRequest, "complaint_id, agency and reason are required")
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
	if c.Status == "referred" {
		writeMessage(w, http.StatusConflict, "complaint is already referred")
		return
	}

	now := h.now()
	ref := &model.Referral{
		ComplaintID:  c.ID,
		CaseTitle:    c.CaseTitle,
		Agency:       req.Agency,
		Reason:       req.Reason,
		Status:       "referred",
		DateReferred: now,
	}
	id, err := h.repo.CreateReferral(ctx, tx, ref)
	if err != nil {
		h.logger.Error("referral insert failed", "err", err)
		writeMessage(w, http.StatusInternalServerError, "failed to create referral")
		return
	}
	if err := h.repo.UpdateComplaintStatus(ctx, tx, c.ID, "referred"); err != nil {
		writeMessage(w, http.StatusInternalServerError, "failed to update complaint")
		return
	}
	if err := insertStatusChangedEvent(ctx, tx, h.outboxRepo, c, "referred", now); err != nil {
		writeMessage(w, http.StatusInternalServerError, "failed to write outbox event")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		writeMessage(w, http.StatusInternalServerError, "failed to commit")
		return
	}
	writeData(w, http.StatusCreated, map[string]any{"id": id, "status": "referred"})
}

func (h *ReferralHandler) List(w http.ResponseWriter, r *http.Request) {
	referrals, err := h.repo.ListReferrals(r.Context(), 500)
	if err != nil {
		h.logger.Error("referral list failed", "err", err)
		writeMessage(w, http.StatusInternalServerError, "failed to list referrals")
		return
	}

	filtered := listquery.Apply(referrals, parseListOptions(r), referralBindings, h.now())
	items := make([]referralItem, 0, len(filtered))
	for _, ref := range filtered {
		items = append(items, referralItem{
			ID:           ref.ID,
			ComplaintID:  ref.ComplaintID,
			CaseTitle:    ref.CaseTitle,
			Agency:       ref.Agency,
			Reason:       ref.Reason,
			Status:       ref.Status,
			DateReferred: ref.DateReferred.UTC().Format(time.RFC3339),
		})
	}
	writeData(w, http.StatusOK, items)
}
