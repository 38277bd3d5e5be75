package entity

import (
	"testing"
	"time"
)

func testDoctor() *DoctorProfile {
	return &DoctorProfile{
		StartTime: "09:00",
		EndTime:   "17:00",
	}
}

func hhmmAll(slots []time.Time) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.Format("15:04")
	}
	return out
}

func TestSlotTimesGrid(t *testing.T) {
	doctor := testDoctor()
	doctor.EndTime = "10:00"

	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	slots := doctor.SlotTimes(date, 20, now)
	got := hhmmAll(slots)
	want := []string{"09:00", "09:20", "09:40"}

	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSlotTimesSkipsBreakWindow(t *testing.T) {
	doctor := testDoctor()
	doctor.EndTime = "14:00"
	doctor.BreakStart = "12:00"
	doctor.BreakEnd = "13:00"

	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	for _, slot := range doctor.SlotTimes(date, 20, now) {
		hm := slot.Format("15:04")
		if hm >= "12:00" && hm < "13:00" {
			t.Fatalf("slot %s falls inside the break window", hm)
		}
	}
}

func TestSlotTimesOutsideActiveRange(t *testing.T) {
	doctor := testDoctor()
	until := time.Date(2025, 5, 31, 0, 0, 0, 0, time.Local)
	doctor.ActiveUntil = &until

	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.Local)

	if slots := doctor.SlotTimes(date, 20, now); len(slots) != 0 {
		t.Fatalf("expected no slots after active range, got %v", hhmmAll(slots))
	}
}

func TestSlotTimesTodayExcludesPast(t *testing.T) {
	doctor := testDoctor()

	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)
	now := time.Date(2025, 6, 2, 12, 10, 0, 0, time.Local)

	slots := doctor.SlotTimes(date, 20, now)
	if len(slots) == 0 {
		t.Fatal("expected afternoon slots to remain")
	}
	if first := slots[0].Format("15:04"); first != "12:20" {
		t.Fatalf("expected first remaining slot 12:20, got %s", first)
	}
}

func TestSlotTimesDeterministic(t *testing.T) {
	doctor := testDoctor()
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	first := doctor.SlotTimes(date, 20, now)
	second := doctor.SlotTimes(date, 20, now)

	if len(first) != len(second) {
		t.Fatalf("non-deterministic slot count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Fatalf("non-deterministic slot at %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestHasSlotAt(t *testing.T) {
	doctor := testDoctor()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	inGrid := time.Date(2025, 6, 2, 9, 20, 0, 0, time.Local)
	if !doctor.HasSlotAt(inGrid, 20, now) {
		t.Fatalf("expected %v to be a candidate slot", inGrid)
	}

	beforeHours := time.Date(2025, 6, 2, 8, 0, 0, 0, time.Local)
	if doctor.HasSlotAt(beforeHours, 20, now) {
		t.Fatalf("expected %v to be outside working hours", beforeHours)
	}

	offGrid := time.Date(2025, 6, 2, 9, 10, 0, 0, time.Local)
	if doctor.HasSlotAt(offGrid, 20, now) {
		t.Fatalf("expected %v to be off the grid", offGrid)
	}
}

func TestAlignedToGrid(t *testing.T) {
	tests := []struct {
		name    string
		t       time.Time
		aligned bool
	}{
		{"on grid", time.Date(2025, 6, 2, 9, 20, 0, 0, time.Local), true},
		{"on hour", time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local), true},
		{"off minute", time.Date(2025, 6, 2, 9, 10, 0, 0, time.Local), false},
		{"has seconds", time.Date(2025, 6, 2, 9, 20, 30, 0, time.Local), false},
		{"has nanos", time.Date(2025, 6, 2, 9, 20, 0, 1, time.Local), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AlignedToGrid(tt.t, 20); got != tt.aligned {
				t.Fatalf("AlignedToGrid(%v) = %v, want %v", tt.t, got, tt.aligned)
			}
		})
	}
}
