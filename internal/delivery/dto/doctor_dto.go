package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateDoctorRequest struct {
	Email          string          `json:"email" validate:"required,email"`
	Password       string          `json:"password" validate:"required,min=8"`
	FullName       string          `json:"full_name" validate:"required,min=2"`
	Specialization string          `json:"specialization" validate:"required"`
	Degree         string          `json:"degree" validate:"omitempty"`
	Experience     string          `json:"experience" validate:"omitempty"`
	Fees           decimal.Decimal `json:"fees" validate:"required"`
	Address        string          `json:"address" validate:"omitempty"`
	About          string          `json:"about" validate:"omitempty"`
	ImageURL       string          `json:"image_url" validate:"omitempty,url"`
}

type UpdateDoctorProfileRequest struct {
	Fees      *decimal.Decimal `json:"fees" validate:"omitempty"`
	Address   *string          `json:"address" validate:"omitempty"`
	About     *string          `json:"about" validate:"omitempty"`
	Available *bool            `json:"available" validate:"omitempty"`
}

// ToggleAvailabilityRequest is the admin form of the availability toggle,
// where the target doctor is named explicitly. The doctor-facing endpoint
// ignores any payload and toggles the verified requester only.
type ToggleAvailabilityRequest struct {
	DoctorID uuid.UUID `json:"doctor_id" validate:"required"`
}

// Response DTOs

// PublicDoctorResponse is the roster projection exposed to anyone. It must
// never carry credential fields, email included.
type PublicDoctorResponse struct {
	ID             uuid.UUID       `json:"id"`
	FullName       string          `json:"full_name"`
	Specialization string          `json:"specialization"`
	Degree         string          `json:"degree,omitempty"`
	Experience     string          `json:"experience,omitempty"`
	Fees           decimal.Decimal `json:"fees"`
	Address        string          `json:"address,omitempty"`
	About          string          `json:"about,omitempty"`
	ImageURL       string          `json:"image_url,omitempty"`
	Available      bool            `json:"available"`
}

type PublicDoctorListResponse struct {
	Doctors []PublicDoctorResponse `json:"doctors"`
	Total   int                    `json:"total"`
}

// DoctorResponse is the owner/admin projection, email included.
type DoctorResponse struct {
	ID             uuid.UUID       `json:"id"`
	Email          string          `json:"email"`
	FullName       string          `json:"full_name"`
	Specialization string          `json:"specialization"`
	Degree         string          `json:"degree,omitempty"`
	Experience     string          `json:"experience,omitempty"`
	Fees           decimal.Decimal `json:"fees"`
	Address        string          `json:"address,omitempty"`
	About          string          `json:"about,omitempty"`
	ImageURL       string          `json:"image_url,omitempty"`
	Available      bool            `json:"available"`
	IsActive       bool            `json:"is_active"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
