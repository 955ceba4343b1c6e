package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jmarbas/lupon-cms/services/case-service/internal/listquery"
	"github.com/jmarbas/lupon-cms/services/case-service/internal/model"
	"github.com/jmarbas/lupon-cms/services/case-service/internal/storage"
)

type LuponHandler struct {
	repo   *storage.LuponRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewLuponHandler(repo *storage.LuponRepository, logger *slog.Logger, now func() time.Time) *LuponHandler {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &LuponHandler{repo: repo, logger: logger, now: now}
}

var memberBindings = listquery.Bindings[model.LuponMember]{
	Search: []func(model.LuponMember) listquery.Value{
		func(m model.LuponMember) listquery.Value { return listquery.Names(m.Name) },
		func(m model.LuponMember) listquery.Value { return listquery.Texts(m.Position, m.ContactNumber) },
	},
	Title: func(m model.LuponMember) string { return m.Name },
	Filed: func(m model.LuponMember) time.Time { return m.TermStart },
	ID:    func(m model.LuponMember) int64 { return m.ID },
}

type memberRequest struct {
	ID            int64  `json:"id,omitempty"`
	Name          string `json:"name"`
	Position      string `json:"position"`
	ContactNumber string `json:"contact_number"`
	TermStart     string `json:"term_start"`
	TermEnd       string `json:"term_end"`
	Active        *bool  `json:"active,omitempty"`
}

type memberItem struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Position      string `json:"position"`
	ContactNumber string `json:"contact_number,omitempty"`
	TermStart     string `json:"term_start"`
	TermEnd       string `json:"term_end"`
	Active        bool   `json:"active"`
}

func (h *LuponHandler) parseMember(req memberRequest) (*model.LuponMember, string) {
	req.Name = strings.TrimSpace(req.Name)
	req.Position = strings.TrimSpace(req.Position)
	if req.Name == "" || req.Position == "" {
		return nil, "name and position are required"
	}
	start, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.TermStart), time.UTC)
	if err != nil {
		return nil, "term_start must be YYYY-MM-DD"
	}
	end, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.TermEnd), time.UTC)
	if err != nil {
		return nil, "term_end must be YYYY-MM-DD"
	}
	if !end.After(start) {
		return nil, "term_end must be after term_start"
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return &model.LuponMember{
		ID:            req.ID,
		Name:          req.Name,
		Position:      req.Position,
		ContactNumber: strings.TrimSpace(req.ContactNumber),
		TermStart:     start,
		TermEnd:       end,
		Active:        active,
	}, ""
}

func (h *LuponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json body")
		return
	}
	m, msg := h.parseMember(req)
	if msg != "" {
		writeMessage(w, http.StatusBadRequest, msg)
		return
	}

	id, err := h.repo.CreateMember(r.Context(), m)
	if err != nil {
		h.logger.Error("member insert failed", "err", err)
		writeMessage(w, http.StatusInternalServerError, "failed to add member")
		return
	}
	writeData(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *LuponHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.repo.ListMembers(r.Context())
	if err != nil {
		h.logger.Error("member list failed", "err", err)
		writeMessage(w, http.StatusInternalServerError, "failed to list members")
		return
	}

	filtered := listquery.Apply(members, parseListOptions(r), memberBindings, h.now())
	items := make([]memberItem, 0, len(filtered))
	for _, m := range filtered {
		items = append(items, memberItem{
			ID:            m.ID,
			Name:          m.Name,
			Position:      m.Position,
			ContactNumber: m.ContactNumber,
			TermStart:     m.TermStart.Format("2006-01-02"),
			TermEnd:       m.TermEnd.Format("2006-01-02"),
			Active:        m.Active,
		})
	}
	writeData(w, http.StatusOK, items)
}

func (h *LuponHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.ID <= 0 {
		writeMessage(w, http.StatusBadRequest, "id is required")
		return
	}
	m, msg := h.parseMember(req)
	if msg != "" {
		writeMessage(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.repo.UpdateMember(r.Context(), m); err != nil {
		if storage.IsNotFound(err) {
			writeMessage(w, http.StatusNotFound, "member not found")
			return
		}
		h.logger.Error("member update failed", "err", err)
		writeMessage(w, http.StatusInternalServerError, "failed to update member")
		return
	}
	writeData(w, http.StatusOK, map[string]any{"id": m.ID})
}
