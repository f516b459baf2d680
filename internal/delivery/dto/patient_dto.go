package dto

import (
	"github.com/google/uuid"
)

// Request DTOs

type UpdatePatientProfileRequest struct {
	FullName    *string `json:"full_name" validate:"omitempty,min=2"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,min=8,max=20"`
	DateOfBirth *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Gender      *string `json:"gender" validate:"omitempty,oneof=M F"`
	Address     *string `json:"address" validate:"omitempty"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
}

// Response DTOs

type PatientResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email,omitempty"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	DateOfBirth string    `json:"date_of_birth,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	Address     string    `json:"address,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
}
