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

var (
	ErrInvalidTimeFormat  = errors.New("invalid time format, use HH:MM")
	ErrInvalidWorkingDay  = errors.New("end_time must be after start_time")
	ErrInvalidBreakWindow = errors.New("break window must lie inside working hours")
	ErrInvalidActiveRange = errors.New("active_until must not precede active_from")
)

type DoctorUsecase interface {
	CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*dto.DoctorResponse, error)
	GetAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error)
}

type doctorUsecase struct {
	db         *gorm.DB
	log        *logrus.Logger
	doctorRepo repository.DoctorProfileRepository
	audit      service.AuditService
}

func NewDoctorUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorProfileRepository,
	audit service.AuditService,
) DoctorUsecase {
	return &doctorUsecase{
		db:         db,
		log:        log,
		doctorRepo: doctorRepo,
		audit:      audit,
	}
}

func (u *doctorUsecase) CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error) {
	start, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}
	end, err := time.Parse("15:04", req.EndTime)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}
	if !end.After(start) {
		return nil, ErrInvalidWorkingDay
	}

	if (req.BreakStart == "") != (req.BreakEnd == "") {
		return nil, ErrInvalidBreakWindow
	}
	if req.BreakStart != "" {
		bs, err := time.Parse("15:04", req.BreakStart)
		if err != nil {
			return nil, ErrInvalidTimeFormat
		}
		be, err := time.Parse("15:04", req.BreakEnd)
		if err != nil {
			return nil, ErrInvalidTimeFormat
		}
		if !be.After(bs) || bs.Before(start) || be.After(end) {
			return nil, ErrInvalidBreakWindow
		}
	}

	doctor := &entity.DoctorProfile{
		FullName:        req.FullName,
		Specialization:  req.Specialization,
		ConsultationFee: req.ConsultationFee,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		BreakStart:      req.BreakStart,
		BreakEnd:        req.BreakEnd,
	}

	if req.ActiveFrom != "" {
		from, err := time.ParseInLocation("2006-01-02", req.ActiveFrom, time.Local)
		if err != nil {
			return nil, ErrInvalidDate
		}
		doctor.ActiveFrom = &from
	}
	if req.ActiveUntil != "" {
		until, err := time.ParseInLocation("2006-01-02", req.ActiveUntil, time.Local)
		if err != nil {
			return nil, ErrInvalidDate
		}
		doctor.ActiveUntil = &until
	}
	if doctor.ActiveFrom != nil && doctor.ActiveUntil != nil && doctor.ActiveUntil.Before(*doctor.ActiveFrom) {
		return nil, ErrInvalidActiveRange
	}

	if err := u.doctorRepo.Create(ctx, u.db, doctor); err != nil {
		u.log.Warnf("Failed to create doctor: %+v", err)
		return nil, err
	}

	if u.audit != nil {
		u.audit.LogAction(u.db, nil, entity.AuditActionDoctorCreate, entity.JSON{
			"doctor_id": doctor.ID.String(),
			"full_name": doctor.FullName,
		})
	}

	u.log.Infof("Doctor created: id=%s, name=%s", doctor.ID, doctor.FullName)
	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) GetDoctor(ctx context.Context, id uuid.UUID) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", id, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) GetAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	doctors, err := u.doctorRepo.FindAll(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to list doctors: %+v", err)
		return nil, err
	}
	return &dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(doctors),
		Total:   len(doctors),
	}, nil
}
