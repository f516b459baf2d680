package repository

import (
	"medibook-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentRepository persists appointment records. All state transitions
// are single conditional updates (status must still be active), so two
// concurrent transitions on the same appointment can never both succeed.
type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error)
	FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) ([]entity.Appointment, error)
	FindAll(db *gorm.DB) ([]entity.Appointment, error)
	FindLatestByDoctorID(db *gorm.DB, doctorID uuid.UUID, limit int) ([]entity.Appointment, error)
	FindLatest(db *gorm.DB, limit int) ([]entity.Appointment, error)
	Count(db *gorm.DB) (int64, error)

	// TransitionByDoctor moves an active appointment owned by doctorID to the
	// given terminal status. Returns affected rows: 1 = success, 0 = missing,
	// not owned, or already terminal.
	TransitionByDoctor(db *gorm.DB, id, doctorID uuid.UUID, status entity.AppointmentStatus) (int64, error)

	// TransitionByPatient is the patient-owned form of TransitionByDoctor.
	TransitionByPatient(db *gorm.DB, id, patientID uuid.UUID, status entity.AppointmentStatus) (int64, error)

	// Transition moves any active appointment to the given terminal status
	// (admin capability, no ownership filter).
	Transition(db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) (int64, error)

	MarkPaid(db *gorm.DB, id uuid.UUID) error
}
