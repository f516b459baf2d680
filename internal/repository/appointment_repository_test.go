package repository

import (
	"testing"
	"time"

	"medibook-backend/internal/domain/entity"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.DoctorProfile{},
		&entity.PatientProfile{},
		&entity.Appointment{},
		&entity.Payment{},
		&entity.AuditLog{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedDoctor(t *testing.T, db *gorm.DB, email string) *entity.DoctorProfile {
	t.Helper()
	profile := &entity.DoctorProfile{
		Specialization: "General physician",
		Fees:           decimal.NewFromInt(50),
		Available:      true,
		User: entity.User{
			RoleID:   entity.RoleIDDoctor,
			Email:    email,
			Password: "hash",
			FullName: "Dr. Test",
			IsActive: true,
		},
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("seed doctor: %v", err)
	}
	profile.UserID = profile.User.ID
	if err := db.Save(profile).Error; err != nil {
		t.Fatalf("save doctor profile: %v", err)
	}
	return profile
}

func seedPatient(t *testing.T, db *gorm.DB, email string) *entity.PatientProfile {
	t.Helper()
	profile := &entity.PatientProfile{
		User: entity.User{
			RoleID:   entity.RoleIDPatient,
			Email:    email,
			Password: "hash",
			FullName: "Test Patient",
			IsActive: true,
		},
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	profile.UserID = profile.User.ID
	if err := db.Save(profile).Error; err != nil {
		t.Fatalf("save patient profile: %v", err)
	}
	return profile
}

func seedAppointment(t *testing.T, db *gorm.DB, doctorID, patientID uuid.UUID) *entity.Appointment {
	t.Helper()
	appointment := &entity.Appointment{
		PatientID: patientID,
		DoctorID:  doctorID,
		SlotDate:  time.Now().UTC().AddDate(0, 0, 2).Truncate(24 * time.Hour),
		SlotTime:  "10:30",
		Amount:    decimal.NewFromInt(50),
		Status:    entity.AppointmentStatusActive,
	}
	if err := db.Create(appointment).Error; err != nil {
		t.Fatalf("seed appointment: %v", err)
	}
	return appointment
}

func TestTransitionByDoctorClosesOwnActive(t *testing.T) {
	db := newTestDB(t)
	repo := NewAppointmentRepository()
	doctor := seedDoctor(t, db, "doc@example.com")
	patient := seedPatient(t, db, "pat@example.com")
	appointment := seedAppointment(t, db, doctor.UserID, patient.UserID)

	rows, err := repo.TransitionByDoctor(db, appointment.ID, doctor.UserID, entity.AppointmentStatusCompleted)
	if err != nil {
		t.Fatalf("TransitionByDoctor: %v", err)
	}
	if rows != 1 {
		t.Fatalf("rows = %d, want 1", rows)
	}

	reloaded, err := repo.FindByID(db, appointment.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !reloaded.IsCompleted() {
		t.Errorf("status = %s, want completed", reloaded.Status)
	}
}

func TestTransitionByDoctorRejectsForeignOwner(t *testing.T) {
	db := newTestDB(t)
	repo := NewAppointmentRepository()
	doctor := seedDoctor(t, db, "doc@example.com")
	other := seedDoctor(t, db, "other@example.com")
	patient := seedPatient(t, db, "pat@example.com")
	appointment := seedAppointment(t, db, doctor.UserID, patient.UserID)

	rows, err := repo.TransitionByDoctor(db, appointment.ID, other.UserID, entity.AppointmentStatusCancelled)
	if err != nil {
		t.Fatalf("TransitionByDoctor: %v", err)
	}
	if rows != 0 {
		t.Fatalf("rows = %d, want 0 for a foreign doctor", rows)
	}

	reloaded, _ := repo.FindByID(db, appointment.ID)
	if !reloaded.IsActive() {
		t.Errorf("status = %s, appointment must stay active", reloaded.Status)
	}
}

// Of two conflicting transitions exactly one may win: the status guard sits
// in the UPDATE itself, so the second statement sees no active row.
func TestConflictingTransitionsExactlyOneWins(t *testing.T) {
	db := newTestDB(t)
	repo := NewAppointmentRepository()
	doctor := seedDoctor(t, db, "doc@example.com")
	patient := seedPatient(t, db, "pat@example.com")
	appointment := seedAppointment(t, db, doctor.UserID, patient.UserID)

	cancelRows, err := repo.TransitionByPatient(db, appointment.ID, patient.UserID, entity.AppointmentStatusCancelled)
	if err != nil {
		t.Fatalf("TransitionByPatient: %v", err)
	}
	completeRows, err := repo.TransitionByDoctor(db, appointment.ID, doctor.UserID, entity.AppointmentStatusCompleted)
	if err != nil {
		t.Fatalf("TransitionByDoctor: %v", err)
	}

	if cancelRows+completeRows != 1 {
		t.Fatalf("winners = %d, want exactly 1", cancelRows+completeRows)
	}

	reloaded, _ := repo.FindByID(db, appointment.ID)
	if !reloaded.IsCancelled() {
		t.Errorf("status = %s, the first transition must stand", reloaded.Status)
	}
}

func TestAdminTransitionIgnoresOwnership(t *testing.T) {
	db := newTestDB(t)
	repo := NewAppointmentRepository()
	doctor := seedDoctor(t, db, "doc@example.com")
	patient := seedPatient(t, db, "pat@example.com")
	appointment := seedAppointment(t, db, doctor.UserID, patient.UserID)

	rows, err := repo.Transition(db, appointment.ID, entity.AppointmentStatusCancelled)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if rows != 1 {
		t.Fatalf("rows = %d, want 1", rows)
	}

	// A second admin cancel finds no active row
	rows, err = repo.Transition(db, appointment.ID, entity.AppointmentStatusCancelled)
	if err != nil {
		t.Fatalf("second Transition: %v", err)
	}
	if rows != 0 {
		t.Fatalf("rows = %d, want 0 on a closed appointment", rows)
	}
}

func TestMarkPaid(t *testing.T) {
	db := newTestDB(t)
	repo := NewAppointmentRepository()
	doctor := seedDoctor(t, db, "doc@example.com")
	patient := seedPatient(t, db, "pat@example.com")
	appointment := seedAppointment(t, db, doctor.UserID, patient.UserID)

	if err := repo.MarkPaid(db, appointment.ID); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	reloaded, _ := repo.FindByID(db, appointment.ID)
	if !reloaded.Paid {
		t.Error("appointment should be marked paid")
	}
}

func TestFindByPatientIDScopesToOwner(t *testing.T) {
	db := newTestDB(t)
	repo := NewAppointmentRepository()
	doctor := seedDoctor(t, db, "doc@example.com")
	patient := seedPatient(t, db, "pat@example.com")
	other := seedPatient(t, db, "other@example.com")
	seedAppointment(t, db, doctor.UserID, patient.UserID)
	seedAppointment(t, db, doctor.UserID, other.UserID)

	appointments, err := repo.FindByPatientID(db, patient.UserID)
	if err != nil {
		t.Fatalf("FindByPatientID: %v", err)
	}
	if len(appointments) != 1 {
		t.Fatalf("len = %d, want 1", len(appointments))
	}
	if appointments[0].PatientID != patient.UserID {
		t.Error("returned a foreign appointment")
	}
}

func TestFindLatestByDoctorIDLimitsAndScopes(t *testing.T) {
	db := newTestDB(t)
	repo := NewAppointmentRepository()
	doctor := seedDoctor(t, db, "doc@example.com")
	other := seedDoctor(t, db, "other-doc@example.com")
	patient := seedPatient(t, db, "pat@example.com")
	seedAppointment(t, db, doctor.UserID, patient.UserID)
	seedAppointment(t, db, doctor.UserID, patient.UserID)
	seedAppointment(t, db, doctor.UserID, patient.UserID)
	seedAppointment(t, db, other.UserID, patient.UserID)

	latest, err := repo.FindLatestByDoctorID(db, doctor.UserID, 2)
	if err != nil {
		t.Fatalf("FindLatestByDoctorID: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("len = %d, want 2", len(latest))
	}
	for i := range latest {
		if latest[i].DoctorID != doctor.UserID {
			t.Error("returned a foreign appointment")
		}
	}
}

func TestToggleAvailabilityFlips(t *testing.T) {
	db := newTestDB(t)
	repo := NewDoctorProfileRepository()
	doctor := seedDoctor(t, db, "doc@example.com")

	rows, err := repo.ToggleAvailability(db, doctor.UserID)
	if err != nil {
		t.Fatalf("ToggleAvailability: %v", err)
	}
	if rows != 1 {
		t.Fatalf("rows = %d, want 1", rows)
	}
	reloaded, _ := repo.FindByUserID(db, doctor.UserID)
	if reloaded.Available {
		t.Error("available should be false after the first toggle")
	}

	if _, err := repo.ToggleAvailability(db, doctor.UserID); err != nil {
		t.Fatalf("second ToggleAvailability: %v", err)
	}
	reloaded, _ = repo.FindByUserID(db, doctor.UserID)
	if !reloaded.Available {
		t.Error("available should be true after the second toggle")
	}

	rows, err = repo.ToggleAvailability(db, uuid.New())
	if err != nil {
		t.Fatalf("ToggleAvailability unknown: %v", err)
	}
	if rows != 0 {
		t.Fatalf("rows = %d, want 0 for an unknown doctor", rows)
	}
}
