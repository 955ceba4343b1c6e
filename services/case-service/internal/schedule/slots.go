// Package schedule decides which mediation hearing slots are selectable on a
// given date and validates booking attempts against capacity and past-time
// rules. Like the rest of the case core it is pure: callers pass "now" in.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Slot is one of the fixed daily hearing windows. Value is the canonical
// 24-hour form stored and compared everywhere; Label is what the UI shows.
type Slot struct {
	Value string
	Label string
}

// DailySlots is the fixed menu: five morning and five afternoon slots,
// hourly, skipping the noon break. Never mutated.
var DailySlots = []Slot{
	{Value: "08:00", Label: "8:00 AM"},
	{Value: "09:00", Label: "9:00 AM"},
	{Value: "10:00", Label: "10:00 AM"},
	{Value: "11:00", Label: "11:00 AM"},
	{Value: "13:00", Label: "1:00 PM"},
	{Value: "14:00", Label: "2:00 PM"},
	{Value: "15:00", Label: "3:00 PM"},
	{Value: "16:00", Label: "4:00 PM"},
	{Value: "17:00", Label: "5:00 PM"},
	{Value: "18:00", Label: "6:00 PM"},
}

// DayAvailability is the per-date slot usage snapshot served to clients.
// Invariants: UsedSlots == len(ScheduledTimes) == len(BookedTimes) and
// IsFull == (UsedSlots >= MaxSlotsPerDay).
type DayAvailability struct {
	UsedSlots      int      `json:"usedSlots"`
	MaxSlotsPerDay int      `json:"maxSlotsPerDay"`
	IsFull         bool     `json:"isFull"`
	ScheduledTimes []string `json:"scheduledTimes"`
	BookedTimes    []string `json:"bookedTimes"`
}

// ParseSlotLabel converts a 12-hour display string like "1:00 PM" to
// 24-hour clock values. 12 AM maps to hour 0 and 12 PM stays 12.
func ParseSlotLabel(label string) (hour, minute int, err error) {
	parts := strings.Fields(strings.TrimSpace(label))
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed slot label %q", label)
	}
	clock := strings.SplitN(parts[0], ":", 2)
	if len(clock) != 2 {
		return 0, 0, fmt.Errorf("malformed slot label %q", label)
	}
	hour, err = strconv.Atoi(clock[0])
	if err != nil || hour < 1 || hour > 12 {
		return 0, 0, fmt.Errorf("malformed slot label %q", label)
	}
	minute, err = strconv.Atoi(clock[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("malformed slot label %q", label)
	}
	switch strings.ToUpper(parts[1]) {
	case "PM":
		if hour != 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	default:
		return 0, 0, fmt.Errorf("malformed slot label %q", label)
	}
	return hour, minute, nil
}

// State is the selectability of a single slot on a selected date.
type State int

const (
	Selectable State = iota
	Booked            // canonical value already present in BookedTimes
	Past              // selected date is today and the slot time has passed
	Full              // day at capacity and this is not the caller's current pick
)

// SlotState evaluates one slot. The Full rule deliberately exempts the
// currently selected slot so a user who already picked it is not locked out
// when the day fills up from elsewhere.
func SlotState(slot Slot, day time.Time, avail DayAvailability, selected string, now time.Time) State {
	for _, booked := range avail.BookedTimes {
		if booked == slot.Value {
			return Booked
		}
	}
	if sameDay(day, now) && slotMinutes(slot.Value) <= minutesOfDay(now) {
		return Past
	}
	if avail.IsFull && slot.Value != selected {
		return Full
	}
	return Selectable
}

// Booking validation failures, in the order they are checked. The messages
// are shown to the user verbatim.
var (
	ErrMissingFields = errors.New("please select both a date and a time")
	ErrPastSlot      = errors.New("the selected time has already passed")
	ErrSlotTaken     = errors.New("that time slot is already booked for this date")
	ErrDayFull       = errors.New("no more slots are available on the selected date")
)

// ValidateBooking checks a candidate (date, time) against the availability
// snapshot. Checks run in priority order so the caller always gets the most
// specific applicable reason. A nil return means the booking is locally
// valid; actually reserving the slot is the storage layer's job.
func ValidateBooking(dateStr, slotValue string, avail DayAvailability, now time.Time) error {
	dateStr = strings.TrimSpace(dateStr)
	slotValue = strings.TrimSpace(slotValue)
	if dateStr == "" || slotValue == "" {
		return ErrMissingFields
	}
	day, err := time.ParseInLocation("2006-01-02", dateStr, now.Location())
	if err != nil {
		return ErrMissingFields
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if day.Before(today) {
		return ErrPastSlot
	}
	if sameDay(day, now) && slotMinutes(slotValue) <= minutesOfDay(now) {
		return ErrPastSlot
	}
	for _, booked := range avail.BookedTimes {
		if booked == slotValue {
			return ErrSlotTaken
		}
	}
	if avail.IsFull {
		return ErrDayFull
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// slotMinutes parses a canonical "HH:MM" value. Anything malformed counts
// as minute zero, i.e. always in the past once the day has started.
func slotMinutes(value string) int {
	clock := strings.SplitN(value, ":", 2)
	if len(clock) != 2 {
		return 0
	}
	h, err1 := strconv.Atoi(clock[0])
	m, err2 := strconv.Atoi(clock[1])
	if err1 != nil || err2 != nil {
		return 0
	}
	return h*60 + m
}

func minutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
