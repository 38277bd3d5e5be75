package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// AppointmentType is the consultation mode
type AppointmentType string

const (
	AppointmentTypeOnline  AppointmentType = "online"
	AppointmentTypeOffline AppointmentType = "offline"
)

// ErrInvalidTransition is returned when a status change violates the
// pending → confirmed → completed/cancelled state machine.
var ErrInvalidTransition = errors.New("invalid appointment status transition")

// Appointment represents one reservation of a doctor time slot.
//
// The (doctor_id, scheduled_at) pair is guarded by a partial unique index
// over statuses {pending, confirmed}, so the insert itself arbitrates
// concurrent bookings for the same slot. Records are never deleted, only
// transitioned to a terminal status.
type Appointment struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DoctorID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"doctor_id"`
	PatientID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	ScheduledAt time.Time         `gorm:"not null;index" json:"scheduled_at"`
	Type        AppointmentType   `gorm:"type:varchar(10);not null" json:"appointment_type"`
	Amount      decimal.Decimal   `gorm:"type:numeric(10,2);not null" json:"amount"`
	Status      AppointmentStatus `gorm:"type:varchar(10);not null;default:'pending';index" json:"status"`

	// Clinical payload, opaque to the booking core.
	Symptoms        StringList `gorm:"type:jsonb" json:"symptoms,omitempty"`
	ReportReference *string    `gorm:"type:varchar(512)" json:"report_reference,omitempty"`
	ClinicalSummary *string    `gorm:"type:text" json:"clinical_summary,omitempty"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor DoctorProfile `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsTerminal reports whether the appointment reached a final status.
func (a *Appointment) IsTerminal() bool {
	return a.Status == AppointmentStatusCompleted || a.Status == AppointmentStatusCancelled
}

// HoldsSlot reports whether the appointment still occupies its time slot.
func (a *Appointment) HoldsSlot() bool {
	return a.Status == AppointmentStatusPending || a.Status == AppointmentStatusConfirmed
}

// CanConfirm gates pending → confirmed.
func CanConfirm(current AppointmentStatus) error {
	if current != AppointmentStatusPending {
		return ErrInvalidTransition
	}
	return nil
}

// CanComplete gates confirmed → completed.
func CanComplete(current AppointmentStatus) error {
	if current != AppointmentStatusConfirmed {
		return ErrInvalidTransition
	}
	return nil
}

// CanCancel gates pending/confirmed → cancelled.
func CanCancel(current AppointmentStatus) error {
	if current != AppointmentStatusPending && current != AppointmentStatusConfirmed {
		return ErrInvalidTransition
	}
	return nil
}

// Confirm transitions the appointment to confirmed.
func (a *Appointment) Confirm(now time.Time) error {
	if err := CanConfirm(a.Status); err != nil {
		return err
	}
	a.Status = AppointmentStatusConfirmed
	a.ConfirmedAt = &now
	return nil
}

// Complete transitions the appointment to completed.
func (a *Appointment) Complete(now time.Time) error {
	if err := CanComplete(a.Status); err != nil {
		return err
	}
	a.Status = AppointmentStatusCompleted
	a.CompletedAt = &now
	return nil
}

// Cancel transitions the appointment to cancelled, releasing its slot.
func (a *Appointment) Cancel(now time.Time) error {
	if err := CanCancel(a.Status); err != nil {
		return err
	}
	a.Status = AppointmentStatusCancelled
	a.CancelledAt = &now
	return nil
}

// StringList type for GORM JSONB support
type StringList []string

// Value returns json value, implement driver.Valuer interface
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan scan value into StringList, implements sql.Scanner interface
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	var result []string
	err := json.Unmarshal(bytes, &result)
	*l = StringList(result)
	return err
}
