package schedule

import (
	"errors"
	"testing"
	"time"
)

func TestParseSlotLabel(t *testing.T) {
	cases := []struct {
		label string
		hour  int
	}{
		{"12:00 AM", 0},
		{"12:00 PM", 12},
		{"1:00 PM", 13},
		{"8:00 AM", 8},
		{"11:00 AM", 11},
		{"6:00 PM", 18},
	}
	for _, tc := range cases {
		h, m, err := ParseSlotLabel(tc.label)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.label, err)
		}
		if h != tc.hour || m != 0 {
			t.Fatalf("%s: expected %02d:00, got %02d:%02d", tc.label, tc.hour, h, m)
		}
	}

	for _, bad := range []string{"", "13:00 PM", "1 PM", "1:00", "1:00 XM"} {
		if _, _, err := ParseSlotLabel(bad); err == nil {
			t.Fatalf("%q: expected parse error", bad)
		}
	}
}

func TestDailySlotsLabelsMatchValues(t *testing.T) {
	if len(DailySlots) != 10 {
		t.Fatalf("expected 10 fixed slots, got %d", len(DailySlots))
	}
	for _, slot := range DailySlots {
		h, m, err := ParseSlotLabel(slot.Label)
		if err != nil {
			t.Fatalf("%s: %v", slot.Label, err)
		}
		if got := slotMinutes(slot.Value); got != h*60+m {
			t.Fatalf("%s: label parses to %d minutes but value is %d", slot.Label, h*60+m, got)
		}
	}
}

func slotByValue(t *testing.T, value string) Slot {
	t.Helper()
	for _, s := range DailySlots {
		if s.Value == value {
			return s
		}
	}
	t.Fatalf("no slot %s", value)
	return Slot{}
}

func TestSlotState_PastBoundary(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	// The <= rule: 14:00 is past-disabled at exactly 14:00, 15:00 is not.
	if got := SlotState(slotByValue(t, "14:00"), today, DayAvailability{}, "", now); got != Past {
		t.Fatalf("14:00 at 14:00 should be Past, got %v", got)
	}
	if got := SlotState(slotByValue(t, "15:00"), today, DayAvailability{}, "", now); got != Selectable {
		t.Fatalf("15:00 at 14:00 should be Selectable, got %v", got)
	}

	// Tomorrow: nothing is past regardless of the clock.
	tomorrow := today.AddDate(0, 0, 1)
	if got := SlotState(slotByValue(t, "08:00"), tomorrow, DayAvailability{}, "", now); got != Selectable {
		t.Fatalf("tomorrow 08:00 should be Selectable, got %v", got)
	}
}

func TestSlotState_BookedAndCapacity(t *testing.T) {
	now := time.Date(2026, 3, 15, 7, 0, 0, 0, time.UTC)
	day := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

	avail := DayAvailability{
		UsedSlots:      1,
		MaxSlotsPerDay: len(DailySlots),
		BookedTimes:    []string{"09:00"},
	}
	if got := SlotState(slotByValue(t, "09:00"), day, avail, "", now); got != Booked {
		t.Fatalf("booked slot should be Booked, got %v", got)
	}
	if got := SlotState(slotByValue(t, "10:00"), day, avail, "", now); got != Selectable {
		t.Fatalf("free slot should be Selectable, got %v", got)
	}

	full := DayAvailability{UsedSlots: 10, MaxSlotsPerDay: 10, IsFull: true}
	if got := SlotState(slotByValue(t, "10:00"), day, full, "", now); got != Full {
		t.Fatalf("unselected slot on a full day should be Full, got %v", got)
	}
	// The user's current pick stays selectable even when the day fills up.
	if got := SlotState(slotByValue(t, "10:00"), day, full, "10:00", now); got != Selectable {
		t.Fatalf("selected slot on a full day should stay Selectable, got %v", got)
	}
}

func TestSlotState_CapacityBoundary(t *testing.T) {
	now := time.Date(2026, 3, 15, 7, 0, 0, 0, time.UTC)
	day := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

	nine := DayAvailability{UsedSlots: 9, MaxSlotsPerDay: 10, IsFull: false}
	for _, slot := range DailySlots {
		if got := SlotState(slot, day, nine, "", now); got != Selectable {
			t.Fatalf("9/10 used: %s should be Selectable, got %v", slot.Value, got)
		}
	}
	ten := DayAvailability{UsedSlots: 10, MaxSlotsPerDay: 10, IsFull: true}
	for _, slot := range DailySlots {
		if got := SlotState(slot, day, ten, "", now); got != Full {
			t.Fatalf("10/10 used: %s should be Full, got %v", slot.Value, got)
		}
	}
}

func TestValidateBooking_ReasonPriority(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)

	// Missing fields wins over everything, even a full day.
	full := DayAvailability{IsFull: true, BookedTimes: []string{"13:00"}}
	if err := ValidateBooking("", "", full, now); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if err := ValidateBooking("2026-03-16", "", full, now); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if err := ValidateBooking("not-a-date", "09:00", full, now); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("unparsable date should report ErrMissingFields, got %v", err)
	}

	// Past beats booked and full.
	if err := ValidateBooking("2026-03-15", "13:00", full, now); !errors.Is(err, ErrPastSlot) {
		t.Fatalf("expected ErrPastSlot, got %v", err)
	}
	if err := ValidateBooking("2026-03-14", "18:00", full, now); !errors.Is(err, ErrPastSlot) {
		t.Fatalf("whole day in the past should be ErrPastSlot, got %v", err)
	}

	// Booked beats full.
	if err := ValidateBooking("2026-03-16", "13:00", full, now); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
	if err := ValidateBooking("2026-03-16", "15:00", full, now); !errors.Is(err, ErrDayFull) {
		t.Fatalf("expected ErrDayFull, got %v", err)
	}

	open := DayAvailability{UsedSlots: 2, MaxSlotsPerDay: 10, BookedTimes: []string{"08:00", "09:00"}}
	if err := ValidateBooking("2026-03-16", "15:00", open, now); err != nil {
		t.Fatalf("valid booking rejected: %v", err)
	}
	// Same-day future slot is fine: 15:00 > 14:00.
	if err := ValidateBooking("2026-03-15", "15:00", open, now); err != nil {
		t.Fatalf("same-day future slot rejected: %v", err)
	}
}
