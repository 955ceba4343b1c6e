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

type SettlementHandler struct {
	repo       *storage.CaseRepository
	outboxRepo *outbox.Repository
	logger     *slog.Logger
	now        func() time.Time
}

func NewSettlementHandler(repo *storage.CaseRepository, outboxRepo *outbox.Repository, logger *slog.Logger, now func() time.Time) *SettlementHandler {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &SettlementHandler{repo: repo, outboxRepo: outboxRepo, logger: logger, now: now}
}

var settlementBindings = listquery.Bindings[model.SettlementCase]{
	Search: []func(model.SettlementCase) listquery.Value{
		func(s model.SettlementCase) listquery.Value { return listquery.Text(s.CaseTitle) },
		func(s model.SettlementCase) listquery.Value { return listquery.Texts(s.SessionType, s.Terms) },
		func(s model.SettlementCase) listquery.Value { return listquery.Text(s.Status) },
	},
	Status: func(s model.SettlementCase) string { return s.Status },
	Title:  func(s model.SettlementCase) string { return s.CaseTitle },
	Filed:  func(s model.SettlementCase) time.Time { return s.DateSettled },
	ID:     func(s model.SettlementCase) int64 { return s.ID },
}

var sessionTypes = map[string]bool{
	"mediation":    true,
	"conciliation": true,
	"arbitration":  true,
}

type createSettlementRequest struct {
	ComplaintID int64  `json:"complaint_id"`
	SessionType string `json:"session_type"`
	Terms       string `json:"terms"`
}

type settlementItem struct {
	ID          int64  `json:"id"`
	ComplaintID int64  `json:"complaint_id"`
	CaseTitle   string `json:"case_title"`
	SessionType string `json:"session_type"`
	Terms       string `json:"terms"`
	Status      string `json:"status"`
	DateSettled string `json:"date_settled"`
}

func (h *SettlementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.SessionType = strings.ToLower(strings.TrimSpace(req.SessionType))
	req.Terms = strings.TrimSpace(req.Terms)
	if req.ComplaintID <= 0 || req.Terms == "" {
		writeMessage(w, http.StatusBadRequest, "complaint_id and terms are required")
		return
	}
	if !sessionTypes[req.SessionType] {
		writeMessage(w, http.StatusBadRequest, "session_type must be mediation, conciliation or arbitration")
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
	if c.Status == "settled" {
		writeMessage(w, http.StatusConflict, "complaint is already settled")
		return
	}

	now := h.now()
	s := &model.SettlementCase{
		ComplaintID: c.ID,
		CaseTitle:   c.CaseTitle,
		SessionType: req.SessionType,
		Terms:       req.Terms,
		Status:      "settled",
		DateSettled: now,
	}
	id, err := h.repo.CreateSettlement(ctx, tx, s)
	if err != nil {
		h.logger.Error("settlement insert failed", "err", err)
		writeMessage(w, http.StatusInternalServerError, "failed to record settlement")
		return
	}
	if err := h.repo.UpdateComplaintStatus(ctx, tx, c.ID, "settled"); err != nil {
		writeMessage(w, http.StatusInternalServerError, "failed to update complaint")
		return
	}
	if err := insertStatusChangedEvent(ctx, tx, h.outboxRepo, c, "settled", now); err != nil {
		writeMessage(w, http.StatusInternalServerError, "failed to write outbox event")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		writeMessage(w, http.StatusInternalServerError, "failed to commit")
		return
	}
	writeData(w, http.StatusCreated, map[string]any{"id": id, "status": "settled"})
}

func (h *SettlementHandler) List(w http.ResponseWriter, r *http.Request) {
	settlements, err := h.repo.ListSettlements(r.Context(), 500)
	if err != nil {
		h.logger.Error("settlement list failed", "err", err)
		writeMessage(w, http.StatusInternalServerError, "failed to list settlements")
		return
	}

	filtered := listquery.Apply(settlements, parseListOptions(r), settlementBindings, h.now())
	items := make([]settlementItem, 0, len(filtered))
	for _, s := range filtered {
		items = append(items, settlementItem{
			ID:          s.ID,
			ComplaintID: s.ComplaintID,
			CaseTitle:   s.CaseTitle,
			SessionType: s.SessionType,
			Terms:       s.Terms,
			Status:      s.Status,
			DateSettled: s.DateSettled.UTC().Format(time.RFC3339),
		})
	}
	writeData(w, http.StatusOK, items)
}
