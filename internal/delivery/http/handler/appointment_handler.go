package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"medibook-backend/internal/delivery/dto"
	"medibook-backend/internal/service"
	"medibook-backend/internal/usecase"
	"medibook-backend/pkg/response"
	"medibook-backend/pkg/validator"
)

// AppointmentHandler exposes the appointment lifecycle. The acting subject is
// always the verified identity from the request context; payloads carry only
// the appointment id being acted on.
type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.Book(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		case usecase.ErrDoctorUnavailable:
			response.Error(w, http.StatusBadRequest, "Doctor is not available for booking", nil)
		case usecase.ErrSlotInPast:
			response.Error(w, http.StatusBadRequest, "Cannot book a past slot", nil)
		case usecase.ErrInvalidDateFormat:
			response.Error(w, http.StatusBadRequest, "Invalid date format, use YYYY-MM-DD", nil)
		case service.ErrSlotTaken:
			response.Conflict(w, "Slot is already booked")
		default:
			response.InternalServerError(w, "Failed to book appointment")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked", appointment)
}

func (h *AppointmentHandler) ListForPatient(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.appointmentUsecase.ListForPatient(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) ListForDoctor(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.appointmentUsecase.ListForDoctor(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.appointmentUsecase.ListAll(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) CancelByPatient(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.appointmentUsecase.CancelByPatient, "Appointment cancelled")
}

func (h *AppointmentHandler) CancelByDoctor(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.appointmentUsecase.CancelByDoctor, "Appointment cancelled")
}

func (h *AppointmentHandler) CompleteByDoctor(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.appointmentUsecase.CompleteByDoctor, "Appointment completed")
}

func (h *AppointmentHandler) CancelByAdmin(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.appointmentUsecase.CancelByAdmin, "Appointment cancelled")
}

// act decodes the action payload and maps transition outcomes to the
// envelope. All denials share the same shape; only the message differs.
func (h *AppointmentHandler) act(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id uuid.UUID) error, successMessage string) {
	var req dto.AppointmentActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	if err := op(r.Context(), req.AppointmentID); err != nil {
		switch err {
		case usecase.ErrAppointmentNotFound:
			response.NotFound(w, "Appointment not found")
		case usecase.ErrNotAppointmentOwner:
			response.Forbidden(w, "Appointment does not belong to you")
		case usecase.ErrAppointmentClosed:
			response.Conflict(w, "Appointment is already cancelled or completed")
		default:
			response.InternalServerError(w, "Failed to update appointment")
		}
		return
	}

	response.Success(w, http.StatusOK, successMessage, nil)
}

func (h *AppointmentHandler) DoctorDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.appointmentUsecase.DoctorDashboard(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get dashboard")
		return
	}

	response.Success(w, http.StatusOK, "Dashboard retrieved successfully", dashboard)
}

func (h *AppointmentHandler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.appointmentUsecase.AdminDashboard(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get dashboard")
		return
	}

	response.Success(w, http.StatusOK, "Dashboard retrieved successfully", dashboard)
}
