package usecase

import (
	"context"
	"io"
	"testing"
	"time"

	"medibook-backend/internal/delivery/http/middleware"
	"medibook-backend/internal/domain/entity"
	"medibook-backend/internal/repository"
	"medibook-backend/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

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

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func seedDoctor(t *testing.T, db *gorm.DB, email string, available bool) *entity.DoctorProfile {
	t.Helper()
	profile := &entity.DoctorProfile{
		Specialization: "General physician",
		Fees:           decimal.NewFromInt(50),
		Available:      available,
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

// ctxWithUser threads a verified subject id the way the auth middleware does.
func ctxWithUser(userID uuid.UUID) context.Context {
	return context.WithValue(context.Background(), middleware.UserIDKey, userID)
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

type appointmentFixture struct {
	db      *gorm.DB
	mr      *miniredis.Miniredis
	usecase AppointmentUsecase
	doctor  *entity.DoctorProfile
	patient *entity.PatientProfile
}

func newAppointmentFixture(t *testing.T) *appointmentFixture {
	t.Helper()
	db := newTestDB(t)
	mr, client := newTestRedis(t)
	log := newTestLogger()

	slotService := service.NewSlotService(db, log, client)
	auditService := service.NewAuditService(db, log, repository.NewAuditLogRepository())

	uc := NewAppointmentUsecase(
		db,
		log,
		repository.NewAppointmentRepository(),
		repository.NewDoctorProfileRepository(),
		repository.NewPatientProfileRepository(),
		slotService,
		auditService,
	)

	return &appointmentFixture{
		db:      db,
		mr:      mr,
		usecase: uc,
		doctor:  seedDoctor(t, db, "doctor@example.com", true),
		patient: seedPatient(t, db, "patient@example.com"),
	}
}
