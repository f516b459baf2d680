package converter

import (
	"github.com/google/uuid"

	"medibook-backend/internal/delivery/dto"
	"medibook-backend/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to its DTO. Doctor and
// patient detail is attached only when the relationship was preloaded.
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:        appointment.ID,
		PatientID: appointment.PatientID,
		DoctorID:  appointment.DoctorID,
		SlotDate:  appointment.SlotDate.Format("2006-01-02"),
		SlotTime:  appointment.SlotTime,
		Amount:    appointment.Amount,
		Status:    string(appointment.Status),
		Paid:      appointment.Paid,
		CreatedAt: appointment.CreatedAt,
		UpdatedAt: appointment.UpdatedAt,
	}

	if appointment.Doctor.UserID != uuid.Nil {
		response.Doctor = DoctorProfileToPublicResponse(&appointment.Doctor)
	}
	if appointment.Patient.UserID != uuid.Nil {
		response.Patient = PatientProfileToResponse(&appointment.Patient)
	}

	return response
}

// AppointmentsToResponses converts a slice of Appointment entities to DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}
