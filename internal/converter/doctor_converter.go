package converter

import (
	"telemed-booking/internal/delivery/dto"
	"telemed-booking/internal/domain/entity"
)

// DoctorToResponse converts a DoctorProfile entity to DoctorResponse DTO
func DoctorToResponse(doctor *entity.DoctorProfile) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}

	response := &dto.DoctorResponse{
		ID:              doctor.ID,
		FullName:        doctor.FullName,
		Specialization:  doctor.Specialization,
		ConsultationFee: doctor.ConsultationFee,
		StartTime:       doctor.StartTime,
		EndTime:         doctor.EndTime,
		BreakStart:      doctor.BreakStart,
		BreakEnd:        doctor.BreakEnd,
		CreatedAt:       doctor.CreatedAt,
		UpdatedAt:       doctor.UpdatedAt,
	}

	if doctor.ActiveFrom != nil {
		response.ActiveFrom = doctor.ActiveFrom.Format("2006-01-02")
	}
	if doctor.ActiveUntil != nil {
		response.ActiveUntil = doctor.ActiveUntil.Format("2006-01-02")
	}

	return response
}

// DoctorsToResponses converts a slice of DoctorProfile entities to response DTOs
func DoctorsToResponses(doctors []entity.DoctorProfile) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i, doctor := range doctors {
		resp := DoctorToResponse(&doctor)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
