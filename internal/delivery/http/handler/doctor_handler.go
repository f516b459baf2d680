package handler

import (
	"encoding/json"
	"net/http"

	"medibook-backend/internal/delivery/dto"
	"medibook-backend/internal/usecase"
	"medibook-backend/pkg/response"
	"medibook-backend/pkg/validator"
)

type DoctorHandler struct {
	doctorUsecase usecase.DoctorProfileUsecase
	validator     *validator.CustomValidator
}

func NewDoctorHandler(doctorUsecase usecase.DoctorProfileUsecase, validator *validator.CustomValidator) *DoctorHandler {
	return &DoctorHandler{
		doctorUsecase: doctorUsecase,
		validator:     validator,
	}
}

// ListPublic serves the unauthenticated roster. The projection never carries
// credential fields.
func (h *DoctorHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.doctorUsecase.GetPublicDoctors(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", doctors)
}

func (h *DoctorHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	doctor, err := h.doctorUsecase.GetSelfProfile(r.Context())
	if err != nil {
		if err == usecase.ErrDoctorNotFound {
			response.NotFound(w, "Doctor not found")
			return
		}
		response.InternalServerError(w, "Failed to get profile")
		return
	}

	response.Success(w, http.StatusOK, "Profile retrieved successfully", doctor)
}

func (h *DoctorHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateDoctorProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	doctor, err := h.doctorUsecase.UpdateSelfProfile(r.Context(), &req)
	if err != nil {
		if err == usecase.ErrDoctorNotFound {
			response.NotFound(w, "Doctor not found")
			return
		}
		response.InternalServerError(w, "Failed to update profile")
		return
	}

	response.Success(w, http.StatusOK, "Profile updated successfully", doctor)
}

// ChangeAvailability toggles the availability of the verified requester. Any
// doctor id in the payload is ignored; a doctor can only toggle themselves.
func (h *DoctorHandler) ChangeAvailability(w http.ResponseWriter, r *http.Request) {
	if err := h.doctorUsecase.ToggleSelfAvailability(r.Context()); err != nil {
		if err == usecase.ErrDoctorNotFound {
			response.NotFound(w, "Doctor not found")
			return
		}
		response.InternalServerError(w, "Failed to change availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability changed", nil)
}
