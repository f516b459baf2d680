package handler

import (
	"encoding/json"
	"net/http"

	"medibook-backend/internal/delivery/dto"
	"medibook-backend/internal/usecase"
	"medibook-backend/pkg/response"
	"medibook-backend/pkg/validator"
)

// AdminHandler exposes the admin panel operations: doctor management and the
// explicit availability toggle for any doctor.
type AdminHandler struct {
	doctorUsecase usecase.DoctorProfileUsecase
	validator     *validator.CustomValidator
}

func NewAdminHandler(doctorUsecase usecase.DoctorProfileUsecase, validator *validator.CustomValidator) *AdminHandler {
	return &AdminHandler{
		doctorUsecase: doctorUsecase,
		validator:     validator,
	}
}

func (h *AdminHandler) AddDoctor(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	doctor, err := h.doctorUsecase.CreateDoctor(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrEmailAlreadyExists:
			response.Conflict(w, "Email already exists")
		case usecase.ErrRoleNotFound:
			response.Error(w, http.StatusBadRequest, "Role not found", nil)
		default:
			response.InternalServerError(w, "Failed to create doctor")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Doctor created successfully", doctor)
}

func (h *AdminHandler) AllDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.doctorUsecase.GetAllDoctors(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", doctors)
}

// ChangeAvailability toggles any doctor named in the payload. Broad admin
// capability; the doctor-facing endpoint is self-only.
func (h *AdminHandler) ChangeAvailability(w http.ResponseWriter, r *http.Request) {
	var req dto.ToggleAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	if err := h.doctorUsecase.ToggleAvailability(r.Context(), req.DoctorID); err != nil {
		if err == usecase.ErrDoctorNotFound {
			response.NotFound(w, "Doctor not found")
			return
		}
		response.InternalServerError(w, "Failed to change availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability changed", nil)
}
