package entity

import (
	"time"

	"github.com/google/uuid"
)

// TimeSlot is a single bookable point in time for one doctor. Slots are
// values: identity is the (doctor, date, time) tuple, nothing is stored.
type TimeSlot struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	StartsAt time.Time `json:"starts_at"`
}

// HHMM renders the slot's time of day as "HH:MM".
func (s TimeSlot) HHMM() string {
	return s.StartsAt.Format("15:04")
}

// DateOf truncates a timestamp to midnight in its own location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AlignedToGrid reports whether a timestamp sits exactly on the quantization
// grid: minute divisible by slotMinutes, no seconds or finer.
func AlignedToGrid(t time.Time, slotMinutes int) bool {
	if slotMinutes <= 0 {
		return false
	}
	return t.Minute()%slotMinutes == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

// atOnDate projects an "HH:MM" time of day onto the given date.
func atOnDate(hm string, date time.Time) (time.Time, bool) {
	parsed, err := time.Parse("15:04", hm)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0,
		date.Location(),
	), true
}

// SlotTimes generates the canonical ordered grid of bookable time points for
// the doctor on the given date: every slotMinutes step inside working hours,
// skipping the break window. Dates outside the active range yield nil. When
// the date is today, times not strictly after now are dropped.
//
// Pure function of the receiver and its arguments; callers may invoke it as
// often as they like and always get the same sequence.
func (d *DoctorProfile) SlotTimes(date time.Time, slotMinutes int, now time.Time) []time.Time {
	if slotMinutes <= 0 || !d.ActiveOn(date) {
		return nil
	}

	dayStart, ok := atOnDate(d.StartTime, date)
	if !ok {
		return nil
	}
	dayEnd, ok := atOnDate(d.EndTime, date)
	if !ok || !dayEnd.After(dayStart) {
		return nil
	}

	var breakStart, breakEnd time.Time
	hasBreak := false
	if d.BreakStart != "" && d.BreakEnd != "" {
		bs, okS := atOnDate(d.BreakStart, date)
		be, okE := atOnDate(d.BreakEnd, date)
		if okS && okE && be.After(bs) {
			breakStart, breakEnd = bs, be
			hasBreak = true
		}
	}

	step := time.Duration(slotMinutes) * time.Minute
	var slots []time.Time
	for cur := dayStart; cur.Add(step).Before(dayEnd) || cur.Add(step).Equal(dayEnd); cur = cur.Add(step) {
		if hasBreak && cur.Before(breakEnd) && cur.Add(step).After(breakStart) {
			continue
		}
		if !cur.After(now) {
			continue
		}
		slots = append(slots, cur)
	}
	return slots
}

// HasSlotAt reports whether ts is a member of the doctor's generated grid for
// its own date. This is the candidate-sequence check booking validation uses.
func (d *DoctorProfile) HasSlotAt(ts time.Time, slotMinutes int, now time.Time) bool {
	for _, slot := range d.SlotTimes(DateOf(ts), slotMinutes, now) {
		if slot.Equal(ts) {
			return true
		}
	}
	return false
}
