package repository

import (
	"errors"

	"medibook-backend/internal/domain/entity"
	domainRepo "medibook-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorProfileRepository struct{}

func NewDoctorProfileRepository() domainRepo.DoctorProfileRepository {
	return &doctorProfileRepository{}
}

func (r *doctorProfileRepository) Create(db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.Create(profile).Error
}

func (r *doctorProfileRepository) FindByUserID(db *gorm.DB, doctorID uuid.UUID) (*entity.DoctorProfile, error) {
	var profile entity.DoctorProfile
	err := db.Preload("User").Where("user_id = ?", doctorID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *doctorProfileRepository) FindAll(db *gorm.DB) ([]entity.DoctorProfile, error) {
	var profiles []entity.DoctorProfile
	err := db.Preload("User").Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *doctorProfileRepository) Update(db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.Save(profile).Error
}

func (r *doctorProfileRepository) Count(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&entity.DoctorProfile{}).Count(&count).Error
	return count, err
}

// ToggleAvailability flips the flag in one statement so concurrent toggles
// never read a stale value.
func (r *doctorProfileRepository) ToggleAvailability(db *gorm.DB, doctorID uuid.UUID) (int64, error) {
	result := db.Model(&entity.DoctorProfile{}).
		Where("user_id = ?", doctorID).
		Update("available", gorm.Expr("NOT available"))
	return result.RowsAffected, result.Error
}
