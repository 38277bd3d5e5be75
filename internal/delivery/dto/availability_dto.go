package dto

import "github.com/google/uuid"

// AvailabilityResponse is the ordered set of still-bookable time points for
// one doctor on one date. Slots are "HH:MM" strings on the quantization grid.
type AvailabilityResponse struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	Date     string    `json:"date"` // Format: YYYY-MM-DD
	Slots    []string  `json:"slots"`
}
