package converter

import (
	"medibook-backend/internal/delivery/dto"
	"medibook-backend/internal/domain/entity"
)

// DoctorProfileToPublicResponse builds the patient-facing roster projection.
// Credential fields (email, password) are deliberately absent from the DTO,
// so a projection with them cannot be constructed here by accident.
func DoctorProfileToPublicResponse(profile *entity.DoctorProfile) *dto.PublicDoctorResponse {
	if profile == nil {
		return nil
	}

	return &dto.PublicDoctorResponse{
		ID:             profile.UserID,
		FullName:       profile.User.FullName,
		Specialization: profile.Specialization,
		Degree:         profile.Degree,
		Experience:     profile.Experience,
		Fees:           profile.Fees,
		Address:        profile.Address,
		About:          profile.About,
		ImageURL:       profile.ImageURL,
		Available:      profile.Available,
	}
}

// DoctorProfilesToPublicResponses converts a slice of profiles to the public
// roster projection
func DoctorProfilesToPublicResponses(profiles []entity.DoctorProfile) []dto.PublicDoctorResponse {
	responses := make([]dto.PublicDoctorResponse, len(profiles))
	for i := range profiles {
		responses[i] = *DoctorProfileToPublicResponse(&profiles[i])
	}
	return responses
}

// DoctorProfileToResponse builds the owner/admin projection, which includes
// the account email but never the password hash.
func DoctorProfileToResponse(profile *entity.DoctorProfile) *dto.DoctorResponse {
	if profile == nil {
		return nil
	}

	return &dto.DoctorResponse{
		ID:             profile.UserID,
		Email:          profile.User.Email,
		FullName:       profile.User.FullName,
		Specialization: profile.Specialization,
		Degree:         profile.Degree,
		Experience:     profile.Experience,
		Fees:           profile.Fees,
		Address:        profile.Address,
		About:          profile.About,
		ImageURL:       profile.ImageURL,
		Available:      profile.Available,
		IsActive:       profile.User.IsActive,
	}
}

// DoctorProfilesToResponses converts a slice of profiles to the admin
// projection
func DoctorProfilesToResponses(profiles []entity.DoctorProfile) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(profiles))
	for i := range profiles {
		responses[i] = *DoctorProfileToResponse(&profiles[i])
	}
	return responses
}
