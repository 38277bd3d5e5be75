package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"telemed-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newAvailabilityFixture(t *testing.T) (*availabilityUsecase, *appointmentUsecase, *bookingUsecase, uuid.UUID) {
	t.Helper()

	doctorRepo := newFakeDoctorRepo()
	appointmentRepo := newFakeAppointmentRepo()
	log := testLogger()

	// 09:00-10:00 yields exactly three 20-minute candidates:
	// 09:00, 09:20, 09:40
	doctor := &entity.DoctorProfile{
		FullName:        "Dr. Santoso",
		Specialization:  "dermatology",
		ConsultationFee: decimal.NewFromInt(200),
		StartTime:       "09:00",
		EndTime:         "10:00",
	}
	if err := doctorRepo.Create(context.Background(), nil, doctor); err != nil {
		t.Fatal(err)
	}

	availability := NewAvailabilityUsecase(nil, log, testBookingConfig, doctorRepo, appointmentRepo, nil).(*availabilityUsecase)
	availability.nowFn = func() time.Time { return testNow }

	booking := NewBookingUsecase(nil, log, testBookingConfig, doctorRepo, appointmentRepo, nil, nil).(*bookingUsecase)
	booking.nowFn = func() time.Time { return testNow }

	appointments := NewAppointmentUsecase(nil, log, appointmentRepo, nil, nil).(*appointmentUsecase)
	appointments.nowFn = func() time.Time { return testNow }

	return availability, appointments, booking, doctor.ID
}

func assertSlots(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("slots = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("slots = %v, want %v", got, want)
		}
	}
}

func TestGetDoctorSlotsSubtraction(t *testing.T) {
	availability, _, booking, doctorID := newAvailabilityFixture(t)

	// all candidates free
	resp, err := availability.GetDoctorSlots(context.Background(), doctorID, "2025-06-03")
	if err != nil {
		t.Fatal(err)
	}
	assertSlots(t, resp.Slots, []string{"09:00", "09:20", "09:40"})

	// book 09:20; it must disappear, its neighbors must not
	slot := time.Date(2025, 6, 3, 9, 20, 0, 0, time.Local)
	if _, err := booking.CreateAppointment(context.Background(), bookingRequest(doctorID, slot)); err != nil {
		t.Fatal(err)
	}

	resp, err = availability.GetDoctorSlots(context.Background(), doctorID, "2025-06-03")
	if err != nil {
		t.Fatal(err)
	}
	assertSlots(t, resp.Slots, []string{"09:00", "09:40"})
}

func TestGetDoctorSlotsIdempotent(t *testing.T) {
	availability, _, _, doctorID := newAvailabilityFixture(t)

	first, err := availability.GetDoctorSlots(context.Background(), doctorID, "2025-06-03")
	if err != nil {
		t.Fatal(err)
	}
	second, err := availability.GetDoctorSlots(context.Background(), doctorID, "2025-06-03")
	if err != nil {
		t.Fatal(err)
	}
	assertSlots(t, second.Slots, first.Slots)
}

func TestCancellationReleasesSlot(t *testing.T) {
	availability, appointments, booking, doctorID := newAvailabilityFixture(t)

	slot := time.Date(2025, 6, 3, 9, 20, 0, 0, time.Local)
	created, err := booking.CreateAppointment(context.Background(), bookingRequest(doctorID, slot))
	if err != nil {
		t.Fatal(err)
	}

	resp, err := availability.GetDoctorSlots(context.Background(), doctorID, "2025-06-03")
	if err != nil {
		t.Fatal(err)
	}
	assertSlots(t, resp.Slots, []string{"09:00", "09:40"})

	if _, err := appointments.CancelAppointment(context.Background(), created.ID); err != nil {
		t.Fatal(err)
	}

	resp, err = availability.GetDoctorSlots(context.Background(), doctorID, "2025-06-03")
	if err != nil {
		t.Fatal(err)
	}
	assertSlots(t, resp.Slots, []string{"09:00", "09:20", "09:40"})
}

func TestCompletedAppointmentNoLongerHoldsSlot(t *testing.T) {
	availability, appointments, booking, doctorID := newAvailabilityFixture(t)

	slot := time.Date(2025, 6, 3, 9, 20, 0, 0, time.Local)
	created, err := booking.CreateAppointment(context.Background(), bookingRequest(doctorID, slot))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := appointments.ConfirmAppointment(context.Background(), created.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := appointments.CompleteAppointment(context.Background(), created.ID); err != nil {
		t.Fatal(err)
	}

	// completed is terminal: the record no longer sits in the slot-holding
	// set, and the subtraction reflects exactly {pending, confirmed}. In
	// production the timestamp is historical and never queried as a future
	// slot anyway.
	resp, err := availability.GetDoctorSlots(context.Background(), doctorID, "2025-06-03")
	if err != nil {
		t.Fatal(err)
	}
	assertSlots(t, resp.Slots, []string{"09:00", "09:20", "09:40"})
}

func TestGetDoctorSlotsValidation(t *testing.T) {
	availability, _, _, doctorID := newAvailabilityFixture(t)

	if _, err := availability.GetDoctorSlots(context.Background(), doctorID, "03-06-2025"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("error = %v, want ErrInvalidDate", err)
	}
	if _, err := availability.GetDoctorSlots(context.Background(), uuid.New(), "2025-06-03"); !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("error = %v, want ErrDoctorNotFound", err)
	}
}

func TestInvalidTransitionIsConflict(t *testing.T) {
	_, appointments, booking, doctorID := newAvailabilityFixture(t)

	slot := time.Date(2025, 6, 3, 9, 0, 0, 0, time.Local)
	created, err := booking.CreateAppointment(context.Background(), bookingRequest(doctorID, slot))
	if err != nil {
		t.Fatal(err)
	}

	// complete requires confirmed first
	if _, err := appointments.CompleteAppointment(context.Background(), created.ID); !errors.Is(err, entity.ErrInvalidTransition) {
		t.Fatalf("error = %v, want ErrInvalidTransition", err)
	}

	// double cancel is rejected by the guarded update
	if _, err := appointments.CancelAppointment(context.Background(), created.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := appointments.CancelAppointment(context.Background(), created.ID); !errors.Is(err, entity.ErrInvalidTransition) {
		t.Fatalf("error = %v, want ErrInvalidTransition", err)
	}
}
