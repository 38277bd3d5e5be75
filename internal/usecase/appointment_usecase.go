package usecase

import (
	"context"
	"errors"
	"time"

	"telemed-booking/internal/converter"
	"telemed-booking/internal/delivery/dto"
	"telemed-booking/internal/domain/entity"
	"telemed-booking/internal/domain/repository"
	"telemed-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

// AppointmentUsecase covers reads and the status transitions driven by
// downstream collaborators (payment confirmation, doctor/admin action).
// Creation is BookingUsecase's job alone.
type AppointmentUsecase interface {
	GetAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	GetPatientAppointments(ctx context.Context, patientID uuid.UUID) (*dto.AppointmentListResponse, error)
	ConfirmAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	CompleteAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	CancelAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	cache           *service.AvailabilityCache
	audit           service.AuditService

	nowFn func() time.Time
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	cache *service.AvailabilityCache,
	audit service.AuditService,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		cache:           cache,
		audit:           audit,
		nowFn:           time.Now,
	}
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) GetPatientAppointments(ctx context.Context, patientID uuid.UUID) (*dto.AppointmentListResponse, error) {
	appointments, err := u.appointmentRepo.FindByPatientID(ctx, u.db, patientID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for patient %s: %+v", patientID, err)
		return nil, err
	}
	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// ConfirmAppointment transitions pending → confirmed.
func (u *appointmentUsecase) ConfirmAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	return u.transition(ctx, id, entity.AuditActionAppointmentConfirm, u.appointmentRepo.ConfirmGuarded,
		func(a *entity.Appointment, now time.Time) error {
			return a.Confirm(now)
		})
}

// CompleteAppointment transitions confirmed → completed. The slot stays
// historical; completed records never re-enter availability.
func (u *appointmentUsecase) CompleteAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	return u.transition(ctx, id, entity.AuditActionAppointmentComplete, u.appointmentRepo.CompleteGuarded,
		func(a *entity.Appointment, now time.Time) error {
			return a.Complete(now)
		})
}

// transition runs a confirm/complete in two steps: the in-memory guard on the
// loaded snapshot gives a precise early rejection, then a single guarded
// UPDATE is the arbiter, exactly as cancel does it. The snapshot is never
// written back, so a row that a concurrent cancel already moved to terminal
// cannot be overwritten into a live status.
func (u *appointmentUsecase) transition(
	ctx context.Context,
	id uuid.UUID,
	auditAction string,
	guarded func(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (int64, error),
	apply func(*entity.Appointment, time.Time) error,
) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	now := u.nowFn()
	if err := apply(appointment, now); err != nil {
		return nil, err
	}

	affected, err := guarded(ctx, u.db, id, now)
	if err != nil {
		u.log.Warnf("Failed to update appointment %s: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		// lost the race against another transition
		return nil, entity.ErrInvalidTransition
	}

	if u.audit != nil {
		u.audit.LogAction(u.db, nil, auditAction, entity.JSON{
			"appointment_id": appointment.ID.String(),
			"status":         string(appointment.Status),
		})
	}

	u.log.Infof("Appointment %s: id=%s", appointment.Status, appointment.ID)
	return converter.AppointmentToResponse(appointment), nil
}

// CancelAppointment transitions a slot-holding appointment to cancelled and
// releases its (doctor, scheduled_at) slot back into availability.
//
// The update is a single guarded statement so a cancel racing another cancel
// (or a complete) applies at most once; zero affected rows means the record
// was already terminal.
func (u *appointmentUsecase) CancelAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	now := u.nowFn()
	affected, err := u.appointmentRepo.CancelGuarded(ctx, u.db, id, now)
	if err != nil {
		u.log.Warnf("Failed to cancel appointment %s: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		return nil, entity.ErrInvalidTransition
	}

	appointment.Status = entity.AppointmentStatusCancelled
	appointment.CancelledAt = &now

	// The freed slot must show up on the next availability poll
	u.cache.Invalidate(appointment.DoctorID, appointment.ScheduledAt)

	if u.audit != nil {
		u.audit.LogAction(u.db, nil, entity.AuditActionAppointmentCancel, entity.JSON{
			"appointment_id": appointment.ID.String(),
			"doctor_id":      appointment.DoctorID.String(),
			"scheduled_at":   appointment.ScheduledAt,
		})
	}

	u.log.Infof("Appointment cancelled: id=%s, slot released at=%s", appointment.ID, appointment.ScheduledAt)
	return converter.AppointmentToResponse(appointment), nil
}
