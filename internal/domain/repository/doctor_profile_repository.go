package repository

import (
	"medibook-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoctorProfileRepository interface {
	Create(db *gorm.DB, profile *entity.DoctorProfile) error
	FindByUserID(db *gorm.DB, doctorID uuid.UUID) (*entity.DoctorProfile, error)
	FindAll(db *gorm.DB) ([]entity.DoctorProfile, error)
	Update(db *gorm.DB, profile *entity.DoctorProfile) error
	Count(db *gorm.DB) (int64, error)

	// ToggleAvailability flips the availability flag in a single update.
	// Returns affected rows: 0 means the doctor does not exist.
	ToggleAvailability(db *gorm.DB, doctorID uuid.UUID) (int64, error)
}
