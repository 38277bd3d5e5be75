package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateDoctorRequest struct {
	FullName        string          `json:"full_name" validate:"required,max=255"`
	Specialization  string          `json:"specialization" validate:"required,max=100"`
	ConsultationFee decimal.Decimal `json:"consultation_fee" validate:"required"`
	StartTime       string          `json:"start_time" validate:"required"` // Format: HH:MM
	EndTime         string          `json:"end_time" validate:"required"`  // Format: HH:MM
	BreakStart      string          `json:"break_start" validate:"omitempty"`
	BreakEnd        string          `json:"break_end" validate:"omitempty"`
	ActiveFrom      string          `json:"active_from" validate:"omitempty"`  // Format: YYYY-MM-DD
	ActiveUntil     string          `json:"active_until" validate:"omitempty"` // Format: YYYY-MM-DD
}

// Response DTOs

type DoctorResponse struct {
	ID              uuid.UUID       `json:"id"`
	FullName        string          `json:"full_name"`
	Specialization  string          `json:"specialization"`
	ConsultationFee decimal.Decimal `json:"consultation_fee"`
	StartTime       string          `json:"start_time"`
	EndTime         string          `json:"end_time"`
	BreakStart      string          `json:"break_start,omitempty"`
	BreakEnd        string          `json:"break_end,omitempty"`
	ActiveFrom      string          `json:"active_from,omitempty"`
	ActiveUntil     string          `json:"active_until,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
