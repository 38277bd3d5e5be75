package usecase

import (
	"context"
	"errors"
	"time"

	"telemed-booking/config"
	"telemed-booking/internal/converter"
	"telemed-booking/internal/delivery/dto"
	"telemed-booking/internal/domain/entity"
	"telemed-booking/internal/domain/repository"
	"telemed-booking/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrInvalidScheduledAt  = errors.New("invalid scheduled_at, use RFC 3339 format")
	ErrSlotInPast          = errors.New("requested slot is in the past")
	ErrLeadTimeTooShort    = errors.New("requested slot is below the minimum lead time")
	ErrSlotMisaligned      = errors.New("requested slot is not aligned to the booking grid")
	ErrSlotOutsideSchedule = errors.New("requested slot is outside the doctor's schedule")
	ErrSlotTaken           = errors.New("slot is no longer available")
)

type BookingUsecase interface {
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
}

type bookingUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	cfg             config.BookingConfig
	doctorRepo      repository.DoctorProfileRepository
	appointmentRepo repository.AppointmentRepository
	cache           *service.AvailabilityCache
	audit           service.AuditService

	// injectable clock
	nowFn func() time.Time
}

func NewBookingUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	cfg config.BookingConfig,
	doctorRepo repository.DoctorProfileRepository,
	appointmentRepo repository.AppointmentRepository,
	cache *service.AvailabilityCache,
	audit service.AuditService,
) BookingUsecase {
	return &bookingUsecase{
		db:              db,
		log:             log,
		cfg:             cfg,
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
		cache:           cache,
		audit:           audit,
		nowFn:           time.Now,
	}
}

// CreateAppointment is the only path from "no record" to a slot-holding
// appointment.
//
// Flow:
// 1. Resolve the doctor and validate every precondition against the clock
// 2. Insert with status pending; the partial unique index arbitrates the
//    race, so there is no read-then-write window
// 3. A unique violation, and only that, is reported as ErrSlotTaken
// 4. On success: invalidate the cached availability view and audit
//
// Which of N concurrent attempts for the same slot wins is decided by commit
// order in Postgres and deliberately unspecified; the invariant is that
// exactly one wins and the rest get ErrSlotTaken.
func (u *bookingUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return nil, ErrInvalidScheduledAt
	}
	// Any RFC 3339 offset is accepted as a spelling of the instant, but every
	// rule below (grid alignment, working hours) is evaluated in the server
	// zone; a foreign offset must not shift the instant relative to the
	// doctor's schedule.
	scheduledAt = scheduledAt.In(time.Local)

	// Step 1: Resolve doctor
	doctor, err := u.doctorRepo.FindByID(ctx, u.db, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	// Step 2: Preconditions. The same rules run client-side before submission,
	// but only this check matters for correctness.
	now := u.nowFn()
	if err := u.validateSlot(doctor, scheduledAt, now); err != nil {
		return nil, err
	}

	amount := doctor.ConsultationFee
	if req.Amount != nil {
		amount = *req.Amount
	}

	appointment := &entity.Appointment{
		DoctorID:        req.DoctorID,
		PatientID:       req.PatientID,
		ScheduledAt:     scheduledAt,
		Type:            entity.AppointmentType(req.AppointmentType),
		Amount:          amount,
		Status:          entity.AppointmentStatusPending,
		Symptoms:        entity.StringList(req.Symptoms),
		ReportReference: req.ReportReference,
		ClinicalSummary: req.ClinicalSummary,
	}

	// Step 3: Atomic check-and-reserve. The insert either commits uniquely or
	// fails; losing the race is a routine outcome, not a fault.
	if err := u.appointmentRepo.Create(ctx, u.db, appointment); err != nil {
		if errors.Is(err, repository.ErrSlotConflict) {
			u.log.Infof("Slot conflict: doctor=%s at=%s patient=%s", req.DoctorID, scheduledAt, req.PatientID)
			return nil, ErrSlotTaken
		}
		u.log.Warnf("Failed to insert appointment: %+v", err)
		return nil, err
	}

	// Step 4: Narrow every cached view of this slot's day
	u.cache.Invalidate(appointment.DoctorID, appointment.ScheduledAt)

	if u.audit != nil {
		u.audit.LogAction(u.db, &appointment.PatientID, entity.AuditActionAppointmentCreate, entity.JSON{
			"appointment_id": appointment.ID.String(),
			"doctor_id":      appointment.DoctorID.String(),
			"scheduled_at":   appointment.ScheduledAt,
		})
	}

	u.log.Infof("Appointment created: id=%s, doctor=%s, at=%s", appointment.ID, appointment.DoctorID, appointment.ScheduledAt)

	// Reload with doctor info for the response
	full, err := u.appointmentRepo.FindByID(ctx, u.db, appointment.ID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload appointment %s: %+v", appointment.ID, err)
		return converter.AppointmentToResponse(appointment), nil
	}
	return converter.AppointmentToResponse(full), nil
}

// validateSlot enforces the booking preconditions in order: not past, lead
// time, grid alignment, membership in the doctor's generated candidate grid.
func (u *bookingUsecase) validateSlot(doctor *entity.DoctorProfile, scheduledAt, now time.Time) error {
	if !scheduledAt.After(now) {
		return ErrSlotInPast
	}
	if scheduledAt.Sub(now) < u.cfg.MinLeadTime {
		return ErrLeadTimeTooShort
	}
	if !entity.AlignedToGrid(scheduledAt, u.cfg.SlotMinutes) {
		return ErrSlotMisaligned
	}
	if !doctor.HasSlotAt(scheduledAt, u.cfg.SlotMinutes, now) {
		return ErrSlotOutsideSchedule
	}
	return nil
}
