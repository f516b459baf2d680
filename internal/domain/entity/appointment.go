package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusActive    AppointmentStatus = "active"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// Appointment represents one scheduled consultation between a patient and a
// doctor. Appointments are never deleted; cancelled and completed are terminal
// states enforced by a single status column, so they can never both hold.
type Appointment struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"doctor_id"`
	SlotDate  time.Time         `gorm:"type:date;not null;index" json:"slot_date"`
	SlotTime  string            `gorm:"type:varchar(10);not null" json:"slot_time"`
	Amount    decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status    AppointmentStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	Paid      bool              `gorm:"not null;default:false" json:"paid"`
	CreatedAt time.Time         `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient PatientProfile `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  DoctorProfile  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// IsActive checks if the appointment can still transition
func (a *Appointment) IsActive() bool {
	return a.Status == AppointmentStatusActive
}

// IsCancelled checks if the appointment was cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// IsCompleted checks if the appointment was completed
func (a *Appointment) IsCompleted() bool {
	return a.Status == AppointmentStatusCompleted
}

// OwnedByDoctor reports whether the given verified subject id is the owning
// doctor. Compared as opaque identifiers.
func (a *Appointment) OwnedByDoctor(doctorID uuid.UUID) bool {
	return a.DoctorID == doctorID
}

// OwnedByPatient reports whether the given verified subject id is the owning
// patient.
func (a *Appointment) OwnedByPatient(patientID uuid.UUID) bool {
	return a.PatientID == patientID
}

// SlotKey returns the redis key guarding this doctor/date/time slot.
func SlotKey(doctorID uuid.UUID, slotDate time.Time, slotTime string) string {
	return "slot:" + doctorID.String() + ":" + slotDate.Format("2006-01-02") + ":" + slotTime
}

// SlotKeyFor is the Appointment-bound form of SlotKey.
func (a *Appointment) SlotKeyFor() string {
	return SlotKey(a.DoctorID, a.SlotDate, a.SlotTime)
}
