package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jmarbas/lupon-cms/services/case-service/internal/listquery"
	"github.com/jmarbas/lupon-cms/services/case-service/internal/model"
	"github.com/jmarbas/lupon-cms/services/case-service/internal/schedule"
)

func TestBuildAvailability(t *testing.T) {
	day := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	sessions := []model.HearingSession{
		{ComplaintID: 1, HearingDate: day, SlotTime: "09:00", SlotLabel: "9:00 AM"},
		{ComplaintID: 2, HearingDate: day, SlotTime: "13:00", SlotLabel: "1:00 PM"},
	}

	avail := buildAvailability(sessions)
	if avail.UsedSlots != 2 || avail.MaxSlotsPerDay != 10 || avail.IsFull {
		t.Fatalf("unexpected availability: %+v", avail)
	}
	if len(avail.ScheduledTimes) != len(avail.BookedTimes) || len(avail.BookedTimes) != avail.UsedSlots {
		t.Fatalf("length invariant broken: %+v", avail)
	}
	if avail.BookedTimes[1] != "13:00" || avail.ScheduledTimes[1] != "1:00 PM" {
		t.Fatalf("canonical/display split wrong: %+v", avail)
	}
}

func TestBuildAvailability_FullDay(t *testing.T) {
	sessions := make([]model.HearingSession, 0, len(schedule.DailySlots))
	for _, s := range schedule.DailySlots {
		sessions = append(sessions, model.HearingSession{SlotTime: s.Value, SlotLabel: s.Label})
	}
	avail := buildAvailability(sessions)
	if !avail.IsFull || avail.UsedSlots != 10 {
		t.Fatalf("10 sessions should fill the day: %+v", avail)
	}
}

func TestCancelledSessionFreesSlotForRebooking(t *testing.T) {
	date := "2026-03-20"
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	live := []model.HearingSession{
		{ComplaintID: 1, SlotTime: "09:00", SlotLabel: "9:00 AM", Status: "scheduled"},
	}
	if err := schedule.ValidateBooking(date, "09:00", buildAvailability(live), now); err != schedule.ErrSlotTaken {
		t.Fatalf("live session should block its slot, got %v", err)
	}

	// Cancellation removes the session from the day's rows (the listing
	// filters cancelled rows and the unique index is partial on status), so
	// the same slot must validate clean for a new booking.
	if err := schedule.ValidateBooking(date, "09:00", buildAvailability(nil), now); err != nil {
		t.Fatalf("cancelled session must free its slot, got %v", err)
	}
}

func TestValidationStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{schedule.ErrMissingFields, http.StatusBadRequest},
		{schedule.ErrPastSlot, http.StatusUnprocessableEntity},
		{schedule.ErrSlotTaken, http.StatusConflict},
		{schedule.ErrDayFull, http.StatusConflict},
	}
	for _, tc := range cases {
		if got := validationStatus(tc.err); got != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, got)
		}
	}
}

func TestParseListOptions(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/complaints?"+url.Values{
		"q":      {"cruz"},
		"status": {"mediation"},
		"dates":  {"week"},
		"sort":   {"title_asc"},
	}.Encode(), nil)

	opts := parseListOptions(req)
	if opts.Query != "cruz" || opts.Status != "mediation" ||
		opts.Dates != listquery.DatesWeek || opts.Sort != listquery.SortTitleAsc {
		t.Fatalf("unexpected options: %+v", opts)
	}

	// Absent params must disable filtering, not filter everything out.
	opts = parseListOptions(httptest.NewRequest(http.MethodGet, "/api/complaints", nil))
	if opts.Status != "all" || opts.Dates != listquery.DatesAll {
		t.Fatalf("defaults wrong: %+v", opts)
	}
}

func TestComplaintBindingsSearchFields(t *testing.T) {
	c := model.Complaint{
		ID:          7,
		CaseNumber:  "KP-2026-AB12CD34",
		CaseTitle:   "Boundary dispute",
		Complainant: "Juan Dela Cruz",
		Respondent:  "Pedro Santos",
		Witness:     "Ana Lim",
		Status:      "for_mediation",
		DateFiled:   time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	for _, q := range []string{"kp-2026", "boundary", "dela cruz", "santos", "ana", "for_med"} {
		got := listquery.Apply([]model.Complaint{c}, listquery.Options{Query: q}, complaintBindings, now)
		if len(got) != 1 {
			t.Fatalf("query %q should match the complaint", q)
		}
	}
	if got := listquery.Apply([]model.Complaint{c}, listquery.Options{Query: "nobody"}, complaintBindings, now); len(got) != 0 {
		t.Fatalf("query %q must not match", "nobody")
	}
}
