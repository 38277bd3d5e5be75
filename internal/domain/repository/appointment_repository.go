package repository

import (
	"context"
	"errors"
	"time"

	"telemed-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrSlotConflict is returned by Create when the unique (doctor_id,
// scheduled_at) constraint over non-terminal statuses rejects the insert.
// Exactly one concurrent attempt per slot avoids it; everyone else gets it.
var ErrSlotConflict = errors.New("slot already held by another appointment")

type AppointmentRepository interface {
	// Create inserts the appointment. Returns ErrSlotConflict when another
	// pending/confirmed appointment already holds the (doctor, scheduled_at)
	// tuple; the insert itself is the arbiter, no prior availability read
	// is consulted.
	Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error

	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)

	FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error)

	// ListBookedTimes returns the scheduled timestamps of all appointments in
	// a slot-holding status (pending, confirmed) for the doctor within
	// [from, to).
	ListBookedTimes(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, from, to time.Time) ([]time.Time, error)

	// ConfirmGuarded atomically confirms the appointment only while it is
	// still pending. Returns affected rows: 0 means the row left pending
	// since it was read (a concurrent cancel wins, the record stays terminal).
	ConfirmGuarded(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (int64, error)

	// CompleteGuarded atomically completes the appointment only while it is
	// confirmed. Same rows-affected contract as ConfirmGuarded.
	CompleteGuarded(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (int64, error)

	// CancelGuarded atomically cancels the appointment only while it still
	// holds its slot. Returns affected rows: 1 = cancelled, 0 = the record
	// was already terminal (prevents double-cancel races).
	CancelGuarded(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (int64, error)
}
