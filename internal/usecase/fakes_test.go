package usecase

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"telemed-booking/internal/domain/entity"
	domainRepo "telemed-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeDoctorRepo struct {
	mu      sync.Mutex
	doctors map[uuid.UUID]entity.DoctorProfile
}

func newFakeDoctorRepo() *fakeDoctorRepo {
	return &fakeDoctorRepo{doctors: make(map[uuid.UUID]entity.DoctorProfile)}
}

func (r *fakeDoctorRepo) Create(ctx context.Context, db *gorm.DB, doctor *entity.DoctorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doctor.ID == uuid.Nil {
		doctor.ID = uuid.New()
	}
	r.doctors[doctor.ID] = *doctor
	return nil
}

func (r *fakeDoctorRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.DoctorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doctor, ok := r.doctors[id]
	if !ok {
		return nil, nil
	}
	return &doctor, nil
}

func (r *fakeDoctorRepo) FindAll(ctx context.Context, db *gorm.DB) ([]entity.DoctorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.DoctorProfile, 0, len(r.doctors))
	for _, doctor := range r.doctors {
		out = append(out, doctor)
	}
	return out, nil
}

// fakeAppointmentRepo mimics the appointments table including the partial
// unique index over slot-holding statuses: an insert for an already-held
// (doctor, scheduled_at) tuple fails with ErrSlotConflict, atomically.
type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]entity.Appointment

	// afterFind, when set, runs after a FindByID snapshot is taken and before
	// it is returned, to interleave a competing write into the gap.
	afterFind func()
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]entity.Appointment)}
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.appointments {
		if existing.DoctorID == appointment.DoctorID &&
			existing.ScheduledAt.Equal(appointment.ScheduledAt) &&
			existing.HoldsSlot() {
			return domainRepo.ErrSlotConflict
		}
	}
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	r.appointments[appointment.ID] = *appointment
	return nil
}

func (r *fakeAppointmentRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	r.mu.Lock()
	appointment, ok := r.appointments[id]
	r.mu.Unlock()
	if r.afterFind != nil {
		r.afterFind()
	}
	if !ok {
		return nil, nil
	}
	return &appointment, nil
}

func (r *fakeAppointmentRepo) FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Appointment
	for _, appointment := range r.appointments {
		if appointment.PatientID == patientID {
			out = append(out, appointment)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ListBookedTimes(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var times []time.Time
	for _, appointment := range r.appointments {
		if appointment.DoctorID != doctorID || !appointment.HoldsSlot() {
			continue
		}
		if appointment.ScheduledAt.Before(from) || !appointment.ScheduledAt.Before(to) {
			continue
		}
		times = append(times, appointment.ScheduledAt)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	return times, nil
}

func (r *fakeAppointmentRepo) ConfirmGuarded(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appointment, ok := r.appointments[id]
	if !ok || appointment.Status != entity.AppointmentStatusPending {
		return 0, nil
	}
	appointment.Status = entity.AppointmentStatusConfirmed
	appointment.ConfirmedAt = &now
	r.appointments[id] = appointment
	return 1, nil
}

func (r *fakeAppointmentRepo) CompleteGuarded(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appointment, ok := r.appointments[id]
	if !ok || appointment.Status != entity.AppointmentStatusConfirmed {
		return 0, nil
	}
	appointment.Status = entity.AppointmentStatusCompleted
	appointment.CompletedAt = &now
	r.appointments[id] = appointment
	return 1, nil
}

func (r *fakeAppointmentRepo) CancelGuarded(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appointment, ok := r.appointments[id]
	if !ok || !appointment.HoldsSlot() {
		return 0, nil
	}
	appointment.Status = entity.AppointmentStatusCancelled
	appointment.CancelledAt = &now
	r.appointments[id] = appointment
	return 1, nil
}
