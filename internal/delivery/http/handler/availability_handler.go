package handler

import (
	"net/http"

	"telemed-booking/internal/usecase"
	"telemed-booking/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AvailabilityHandler struct {
	availabilityUsecase usecase.AvailabilityUsecase
}

func NewAvailabilityHandler(availabilityUsecase usecase.AvailabilityUsecase) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityUsecase: availabilityUsecase,
	}
}

// GetDoctorSlots handles GET /doctors/{doctorId}/slots?date=YYYY-MM-DD.
// Clients poll this; the answer reflects committed state at query time and
// repeated calls with no intervening bookings return identical sequences.
func (h *AvailabilityHandler) GetDoctorSlots(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doctorID, err := uuid.Parse(vars["doctorId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		response.RuleViolation(w, "date query parameter is required", "invalid_date")
		return
	}

	availability, err := h.availabilityUsecase.GetDoctorSlots(r.Context(), doctorID, date)
	if err != nil {
		switch err {
		case usecase.ErrInvalidDate:
			response.RuleViolation(w, "Invalid date, use YYYY-MM-DD", "invalid_date")
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		default:
			response.InternalServerError(w, "Failed to get availability")
		}
		return
	}

	response.Success(w, http.StatusOK, "Availability retrieved successfully", availability)
}
