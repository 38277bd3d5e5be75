package repository

import (
	"context"
	"errors"
	"time"

	"telemed-booking/internal/domain/entity"
	domainRepo "telemed-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

// Create inserts the appointment and lets the partial unique index
// uq_appointments_doctor_slot decide the race: the first committed insert for
// a (doctor_id, scheduled_at) tuple wins, every other one fails with a unique
// violation which is translated to ErrSlotConflict. No lock is taken before
// the insert.
func (r *appointmentRepository) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	err := db.WithContext(ctx).Create(appointment).Error
	if err != nil && isUniqueViolation(err) {
		return domainRepo.ErrSlotConflict
	}
	return err
}

func (r *appointmentRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.WithContext(ctx).Preload("Doctor").Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.WithContext(ctx).Preload("Doctor").
		Where("patient_id = ?", patientID).
		Order("scheduled_at DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) ListBookedTimes(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	var times []time.Time
	err := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("doctor_id = ? AND scheduled_at >= ? AND scheduled_at < ?", doctorID, from, to).
		Where("status IN ?", []entity.AppointmentStatus{entity.AppointmentStatusPending, entity.AppointmentStatusConfirmed}).
		Order("scheduled_at ASC").
		Pluck("scheduled_at", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}

// ConfirmGuarded confirms in a single guarded statement. A row that left
// pending between the caller's read and this write affects zero rows instead
// of being overwritten, so a cancelled appointment cannot come back.
func (r *appointmentRepository) ConfirmGuarded(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, entity.AppointmentStatusPending).
		Updates(map[string]interface{}{
			"status":       entity.AppointmentStatusConfirmed,
			"confirmed_at": now,
		})
	return result.RowsAffected, result.Error
}

// CompleteGuarded completes in a single guarded statement, confirmed rows
// only.
func (r *appointmentRepository) CompleteGuarded(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, entity.AppointmentStatusConfirmed).
		Updates(map[string]interface{}{
			"status":       entity.AppointmentStatusCompleted,
			"completed_at": now,
		})
	return result.RowsAffected, result.Error
}

// CancelGuarded cancels in a single guarded statement so two concurrent
// cancels (or a cancel racing a complete) cannot both apply.
func (r *appointmentRepository) CancelGuarded(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND status IN ?", id, []entity.AppointmentStatus{entity.AppointmentStatusPending, entity.AppointmentStatusConfirmed}).
		Updates(map[string]interface{}{
			"status":       entity.AppointmentStatusCancelled,
			"cancelled_at": now,
		})
	return result.RowsAffected, result.Error
}

// isUniqueViolation recognizes a unique-constraint rejection both through
// gorm's translated error and the raw postgres 23505 code.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
