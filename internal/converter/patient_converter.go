package converter

import (
	"medibook-backend/internal/delivery/dto"
	"medibook-backend/internal/domain/entity"
)

// PatientProfileToResponse builds the patient projection attached to
// appointments and profile reads. The password hash never leaves the entity.
func PatientProfileToResponse(profile *entity.PatientProfile) *dto.PatientResponse {
	if profile == nil {
		return nil
	}

	resp := &dto.PatientResponse{
		ID:          profile.UserID,
		Email:       profile.User.Email,
		FullName:    profile.User.FullName,
		PhoneNumber: profile.PhoneNumber,
		Gender:      profile.Gender,
		Address:     profile.Address,
		ImageURL:    profile.ImageURL,
	}
	if !profile.DateOfBirth.IsZero() {
		resp.DateOfBirth = profile.DateOfBirth.Format("2006-01-02")
	}
	return resp
}
