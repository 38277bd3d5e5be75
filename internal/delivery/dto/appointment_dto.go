package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateAppointmentRequest struct {
	DoctorID        uuid.UUID        `json:"doctor_id" validate:"required"`
	PatientID       uuid.UUID        `json:"patient_id" validate:"required"`
	ScheduledAt     string           `json:"scheduled_at" validate:"required"` // Format: RFC 3339
	AppointmentType string           `json:"appointment_type" validate:"required,oneof=online offline"`
	Amount          *decimal.Decimal `json:"amount" validate:"omitempty"`
	Symptoms        []string         `json:"symptoms" validate:"omitempty,dive,max=255"`
	ReportReference *string          `json:"report_reference" validate:"omitempty,max=512"`
	ClinicalSummary *string          `json:"clinical_summary" validate:"omitempty"`
}

// Response DTOs

type AppointmentResponse struct {
	ID              uuid.UUID       `json:"id"`
	DoctorID        uuid.UUID       `json:"doctor_id"`
	PatientID       uuid.UUID       `json:"patient_id"`
	ScheduledAt     time.Time       `json:"scheduled_at"`
	AppointmentType string          `json:"appointment_type"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	Symptoms        []string        `json:"symptoms,omitempty"`
	ReportReference *string         `json:"report_reference,omitempty"`
	ClinicalSummary *string         `json:"clinical_summary,omitempty"`
	Doctor          *DoctorResponse `json:"doctor,omitempty"`
	ConfirmedAt     *time.Time      `json:"confirmed_at,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
