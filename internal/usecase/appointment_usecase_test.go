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

func newAppointmentFixture(t *testing.T) (*appointmentUsecase, *bookingUsecase, *fakeAppointmentRepo, uuid.UUID) {
	t.Helper()

	doctorRepo := newFakeDoctorRepo()
	appointmentRepo := newFakeAppointmentRepo()
	log := testLogger()

	doctor := &entity.DoctorProfile{
		FullName:        "Dr. Hartono",
		Specialization:  "cardiology",
		ConsultationFee: decimal.NewFromInt(300),
		StartTime:       "09:00",
		EndTime:         "17:00",
	}
	if err := doctorRepo.Create(context.Background(), nil, doctor); err != nil {
		t.Fatal(err)
	}

	booking := NewBookingUsecase(nil, log, testBookingConfig, doctorRepo, appointmentRepo, nil, nil).(*bookingUsecase)
	booking.nowFn = func() time.Time { return testNow }

	appointments := NewAppointmentUsecase(nil, log, appointmentRepo, nil, nil).(*appointmentUsecase)
	appointments.nowFn = func() time.Time { return testNow }

	return appointments, booking, appointmentRepo, doctor.ID
}

func mustBook(t *testing.T, booking *bookingUsecase, doctorID uuid.UUID, slot time.Time) uuid.UUID {
	t.Helper()
	resp, err := booking.CreateAppointment(context.Background(), bookingRequest(doctorID, slot))
	if err != nil {
		t.Fatal(err)
	}
	return resp.ID
}

// A confirm that interleaves with a cancel must lose: the cancel's guarded
// update already moved the row to terminal, so the confirm's own guarded
// update matches nothing and the cancelled record stays cancelled.
func TestConfirmRacingCancelCannotResurrect(t *testing.T) {
	appointments, booking, repo, doctorID := newAppointmentFixture(t)

	slot := time.Date(2025, 6, 3, 10, 0, 0, 0, time.Local)
	id := mustBook(t, booking, doctorID, slot)

	// cancel lands in the gap between the confirm's read and its write
	repo.afterFind = func() {
		repo.afterFind = nil
		if affected, err := repo.CancelGuarded(context.Background(), nil, id, testNow); err != nil || affected != 1 {
			t.Errorf("interleaved cancel: affected=%d err=%v", affected, err)
		}
	}

	if _, err := appointments.ConfirmAppointment(context.Background(), id); !errors.Is(err, entity.ErrInvalidTransition) {
		t.Fatalf("error = %v, want ErrInvalidTransition", err)
	}

	stored, err := repo.FindByID(context.Background(), nil, id)
	if err != nil || stored == nil {
		t.Fatalf("stored lookup: %v", err)
	}
	if stored.Status != entity.AppointmentStatusCancelled {
		t.Fatalf("status = %s, want cancelled", stored.Status)
	}
	if stored.CancelledAt == nil {
		t.Fatal("cancelled_at was cleared")
	}
}

func TestCompleteRacingCancelCannotResurrect(t *testing.T) {
	appointments, booking, repo, doctorID := newAppointmentFixture(t)

	slot := time.Date(2025, 6, 3, 11, 0, 0, 0, time.Local)
	id := mustBook(t, booking, doctorID, slot)
	if _, err := appointments.ConfirmAppointment(context.Background(), id); err != nil {
		t.Fatal(err)
	}

	repo.afterFind = func() {
		repo.afterFind = nil
		if affected, err := repo.CancelGuarded(context.Background(), nil, id, testNow); err != nil || affected != 1 {
			t.Errorf("interleaved cancel: affected=%d err=%v", affected, err)
		}
	}

	if _, err := appointments.CompleteAppointment(context.Background(), id); !errors.Is(err, entity.ErrInvalidTransition) {
		t.Fatalf("error = %v, want ErrInvalidTransition", err)
	}

	stored, err := repo.FindByID(context.Background(), nil, id)
	if err != nil || stored == nil {
		t.Fatalf("stored lookup: %v", err)
	}
	if stored.Status != entity.AppointmentStatusCancelled {
		t.Fatalf("status = %s, want cancelled", stored.Status)
	}
}

func TestConfirmAfterCancelIsRejected(t *testing.T) {
	appointments, booking, _, doctorID := newAppointmentFixture(t)

	slot := time.Date(2025, 6, 3, 14, 0, 0, 0, time.Local)
	id := mustBook(t, booking, doctorID, slot)

	if _, err := appointments.CancelAppointment(context.Background(), id); err != nil {
		t.Fatal(err)
	}
	if _, err := appointments.ConfirmAppointment(context.Background(), id); !errors.Is(err, entity.ErrInvalidTransition) {
		t.Fatalf("error = %v, want ErrInvalidTransition", err)
	}
}

func TestTransitionTimestamps(t *testing.T) {
	appointments, booking, repo, doctorID := newAppointmentFixture(t)

	slot := time.Date(2025, 6, 3, 15, 0, 0, 0, time.Local)
	id := mustBook(t, booking, doctorID, slot)

	if _, err := appointments.ConfirmAppointment(context.Background(), id); err != nil {
		t.Fatal(err)
	}
	if _, err := appointments.CompleteAppointment(context.Background(), id); err != nil {
		t.Fatal(err)
	}

	stored, err := repo.FindByID(context.Background(), nil, id)
	if err != nil || stored == nil {
		t.Fatalf("stored lookup: %v", err)
	}
	if stored.ConfirmedAt == nil || !stored.ConfirmedAt.Equal(testNow) {
		t.Fatalf("confirmed_at = %v, want %v", stored.ConfirmedAt, testNow)
	}
	if stored.CompletedAt == nil || !stored.CompletedAt.Equal(testNow) {
		t.Fatalf("completed_at = %v, want %v", stored.CompletedAt, testNow)
	}
}
