package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jmarbas/lupon-cms/services/case-service/internal/model"
	"github.com/jmarbas/lupon-cms/services/case-service/internal/outbox"
	"github.com/jmarbas/lupon-cms/services/case-service/internal/schedule"
	"github.com/jmarbas/lupon-cms/services/case-service/internal/storage"
)

type ScheduleHandler struct {
	cases      *storage.CaseRepository
	hearings   *storage.HearingRepository
	outboxRepo *outbox.Repository
	cache      *schedule.Cache
	logger     *slog.Logger
	now        func() time.Time
}

func NewScheduleHandler(cases *storage.CaseRepository, hearings *storage.HearingRepository, outboxRepo *outbox.Repository, cache *schedule.Cache, logger *slog.Logger, now func() time.Time) *ScheduleHandler {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &ScheduleHandler{
		cases:      cases,
		hearings:   hearings,
		outboxRepo: outboxRepo,
		cache:      cache,
		logger:     logger,
		now:        now,
	}
}

// AvailableSlots serves GET /api/mediation/available-slots/{date}. Snapshots
// are cached per date; the cache's sequence guard ensures a slow load never
// overwrites a fresher one.
func (h *ScheduleHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	dateStr := strings.TrimSpace(r.PathValue("date"))
	day, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	if avail, ok := h.cache.Get(dateStr); ok {
		writeData(w, http.StatusOK, avail)
		return
	}

	seq := h.cache.Begin(dateStr)
	sessions, err := h.hearings.ListSessionsForDate(r.Context(), day)
	if err != nil {
		h.logger.Error("availability load failed", "err", err, "date", dateStr)
		writeMessage(w, http.StatusInternalServerError, "failed to load availability")
		return
	}
	avail := buildAvailability(sessions)
	h.cache.Store(dateStr, seq, avail)
	writeData(w, http.StatusOK, avail)
}

func buildAvailability(sessions []model.HearingSession) schedule.DayAvailability {
	scheduled := make([]string, 0, len(sessions))
	booked := make([]string, 0, len(sessions))
	for _, s := range sessions {
		scheduled = append(scheduled, s.SlotLabel)
		booked = append(booked, s.SlotTime)
	}
	max := len(schedule.DailySlots)
	return schedule.DayAvailability{
		UsedSlots:      len(sessions),
		MaxSlotsPerDay: max,
		IsFull:         len(sessions) >= max,
		ScheduledTimes: scheduled,
		BookedTimes:    booked,
	}
}

type scheduleRequest struct {
	ComplaintID int64  `json:"complaint_id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// Schedule serves POST /api/mediation/schedule. Validation runs against a
// snapshot built inside the booking transaction with the day's rows locked,
// and the unique (date, slot) constraint backstops any remaining race.
func (h *ScheduleHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	if req.ComplaintID <= 0 {
		writeMessage(w, http.StatusBadRequest, "complaint_id is required")
		return
	}

	now := h.now()
	// Cheap pre-checks that need no availability data.
	if err := schedule.ValidateBooking(req.Date, req.Time, schedule.DayAvailability{}, now); err != nil {
		writeMessage(w, validationStatus(err), err.Error())
		return
	}
	day, _ := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	slot, ok := slotByValue(req.Time)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "time must be one of the fixed hearing slots")
		return
	}

	ctx := r.Context()
	tx, err := h.cases.Begin(ctx)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	c, err := h.cases.GetComplaintForUpdate(ctx, tx, req.ComplaintID)
	if err != nil {
		if storage.IsNotFound(err) {
			writeMessage(w, http.StatusNotFound, "complaint not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "failed to load complaint")
		return
	}

	sessions, err := h.hearings.ListSessionsForDateLocked(ctx, tx, day)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "failed to load availability")
		return
	}
	if err := schedule.ValidateBooking(req.Date, req.Time, buildAvailability(sessions), now); err != nil {
		writeMessage(w, validationStatus(err), err.Error())
		return
	}

	session := &model.HearingSession{
		ComplaintID: c.ID,
		SessionType: "mediation",
		HearingDate: day,
		SlotTime:    slot.Value,
		SlotLabel:   slot.Label,
		Status:      "scheduled",
	}
	id, err := h.hearings.CreateSession(ctx, tx, session)
	if err != nil {
		if storage.IsConflict(err) {
			writeMessage(w, http.StatusConflict, schedule.ErrSlotTaken.Error())
			return
		}
		h.logger.Error("session insert failed", "err", err)
		writeMessage(w, http.StatusInternalServerError, "failed to schedule hearing")
		return
	}

	if err := h.insertHearingScheduled(ctx, tx, c, session, id); err != nil {
		writeMessage(w, http.StatusInternalServerError, "failed to write outbox event")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		writeMessage(w, http.StatusInternalServerError, "failed to commit")
		return
	}

	h.cache.Invalidate(req.Date)
	writeData(w, http.StatusCreated, map[string]any{
		"session_id": id,
		"date":       req.Date,
		"time":       slot.Value,
		"label":      slot.Label,
	})
}

type cancelRequest struct {
	SessionID int64 `json:"session_id"`
}

// Cancel serves POST /api/mediation/cancel. Cancelled sessions free their
// slot, so the day's availability snapshot is invalidated.
func (h *ScheduleHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.SessionID <= 0 {
		writeMessage(w, http.StatusBadRequest, "session_id is required")
		return
	}

	ctx := r.Context()
	tx, err := h.cases.Begin(ctx)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	s, err := h.hearings.GetSessionForUpdate(ctx, tx, req.SessionID)
	if err != nil {
		if storage.IsNotFound(err) {
			writeMessage(w, http.StatusNotFound, "session not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if s.Status == "cancelled" {
		writeData(w, http.StatusOK, map[string]any{"session_id": s.ID, "status": s.Status})
		return
	}

	if err := h.hearings.CancelSession(ctx, tx, s.ID); err != nil {
		h.logger.Error("session cancel failed", "err", err)
		writeMessage(w, http.StatusInternalServerError, "failed to cancel session")
		return
	}

	payload, err := json.Marshal(map[string]any{
		"session_id":   s.ID,
		"complaint_id": s.ComplaintID,
		"session_type": s.SessionType,
		"date":         s.HearingDate.Format("2006-01-02"),
		"time":         s.SlotTime,
	})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "failed to build event payload")
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "hearing_session",
		AggregateID:   fmt.Sprintf("%d", s.ID),
		EventType:     outbox.EventHearingCancelled,
		Payload:       payload,
	}); err != nil {
		writeMessage(w, http.StatusInternalServerError, "failed to write outbox event")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		writeMessage(w, http.StatusInternalServerError, "failed to commit")
		return
	}

	h.cache.Invalidate(s.HearingDate.Format("2006-01-02"))
	writeData(w, http.StatusOK, map[string]any{"session_id": s.ID, "status": "cancelled"})
}

func (h *ScheduleHandler) insertHearingScheduled(ctx context.Context, tx pgx.Tx, c model.Complaint, s *model.HearingSession, sessionID int64) error {
	payload, err := json.Marshal(map[string]any{
		"session_id":        sessionID,
		"complaint_id":      c.ID,
		"case_number":       c.CaseNumber,
		"case_title":        c.CaseTitle,
		"complainant":       c.Complainant,
		"complainant_email": c.ComplainantEmail,
		"complainant_phone": c.ComplainantPhone,
		"respondent":        c.Respondent,
		"session_type":      s.SessionType,
		"date":              s.HearingDate.Format("2006-01-02"),
		"time":              s.SlotTime,
		"label":             s.SlotLabel,
	})
	if err != nil {
		return err
	}
	return h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "hearing_session",
		AggregateID:   fmt.Sprintf("%d", sessionID),
		EventType:     outbox.EventHearingScheduled,
		Payload:       payload,
	})
}

func validationStatus(err error) int {
	switch {
	case errors.Is(err, schedule.ErrMissingFields):
		return http.StatusBadRequest
	case errors.Is(err, schedule.ErrPastSlot):
		return http.StatusUnprocessableEntity
	case errors.Is(err, schedule.ErrSlotTaken), errors.Is(err, schedule.ErrDayFull):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func slotByValue(value string) (schedule.Slot, bool) {
	for _, s := range schedule.DailySlots {
		if s.Value == value {
			return s, true
		}
	}
	return schedule.Slot{}, false
}
