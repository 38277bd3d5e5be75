package usecase

import (
	"context"
	"errors"
	"time"

	"telemed-booking/config"
	"telemed-booking/internal/delivery/dto"
	"telemed-booking/internal/domain/repository"
	"telemed-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrInvalidDate = errors.New("invalid date, use YYYY-MM-DD")

type AvailabilityUsecase interface {
	GetDoctorSlots(ctx context.Context, doctorID uuid.UUID, date string) (*dto.AvailabilityResponse, error)
}

type availabilityUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	cfg             config.BookingConfig
	doctorRepo      repository.DoctorProfileRepository
	appointmentRepo repository.AppointmentRepository
	cache           *service.AvailabilityCache

	nowFn func() time.Time
}

func NewAvailabilityUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	cfg config.BookingConfig,
	doctorRepo repository.DoctorProfileRepository,
	appointmentRepo repository.AppointmentRepository,
	cache *service.AvailabilityCache,
) AvailabilityUsecase {
	return &availabilityUsecase{
		db:              db,
		log:             log,
		cfg:             cfg,
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
		cache:           cache,
		nowFn:           time.Now,
	}
}

// GetDoctorSlots answers "what can still be booked?" for one doctor on one
// date: the generated candidate grid minus every timestamp held by a pending
// or confirmed appointment. Read-only and safe to poll; the short-TTL cache
// only ever serves a view the write paths have not invalidated.
func (u *availabilityUsecase) GetDoctorSlots(ctx context.Context, doctorID uuid.UUID, date string) (*dto.AvailabilityResponse, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return nil, ErrInvalidDate
	}

	if slots, ok := u.cache.Get(ctx, doctorID, date); ok {
		return &dto.AvailabilityResponse{DoctorID: doctorID, Date: date, Slots: slots}, nil
	}

	doctor, err := u.doctorRepo.FindByID(ctx, u.db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	candidates := doctor.SlotTimes(day, u.cfg.SlotMinutes, u.nowFn())

	// Subtraction against the latest committed state; no cached view is
	// authoritative.
	booked, err := u.appointmentRepo.ListBookedTimes(ctx, u.db, doctorID, day, day.AddDate(0, 0, 1))
	if err != nil {
		u.log.Warnf("Failed to list booked times for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	held := make(map[int64]struct{}, len(booked))
	for _, t := range booked {
		held[t.Unix()] = struct{}{}
	}

	slots := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if _, taken := held[candidate.Unix()]; taken {
			continue
		}
		slots = append(slots, candidate.Format("15:04"))
	}

	// A booking that committed while this view was being computed has already
	// invalidated the key, and this Set can put the older view back for up to
	// one TTL. Tolerated: the TTL is bounded by the client poll interval, and
	// booking never consults a cached view, so the window can only delay what
	// a client sees, never what it can reserve.
	u.cache.Set(ctx, doctorID, date, slots)

	return &dto.AvailabilityResponse{
		DoctorID: doctorID,
		Date:     date,
		Slots:    slots,
	}, nil
}
