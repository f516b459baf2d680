package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DoctorProfile represents doctor-specific profile data
type DoctorProfile struct {
	UserID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"user_id"`
	Specialization string          `gorm:"type:varchar(100);not null;index" json:"specialization"`
	Degree         string          `gorm:"type:varchar(100)" json:"degree,omitempty"`
	Experience     string          `gorm:"type:varchar(50)" json:"experience,omitempty"`
	Fees           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"fees"`
	Address        string          `gorm:"type:text" json:"address,omitempty"`
	About          string          `gorm:"type:text" json:"about,omitempty"`
	ImageURL       string          `gorm:"type:text" json:"image_url,omitempty"`
	Available      bool            `gorm:"not null;default:true;index" json:"available"`

	// Relationships
	User         User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Appointments []Appointment `gorm:"foreignKey:DoctorID" json:"appointments,omitempty"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}
