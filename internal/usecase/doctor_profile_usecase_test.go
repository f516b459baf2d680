package usecase

import (
	"context"
	"errors"
	"testing"

	"medibook-backend/internal/delivery/dto"
	"medibook-backend/internal/domain/entity"
	"medibook-backend/internal/repository"
	"medibook-backend/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newDoctorProfileUsecase(t *testing.T, db *gorm.DB) DoctorProfileUsecase {
	t.Helper()
	log := newTestLogger()
	return NewDoctorProfileUsecase(
		db,
		log,
		repository.NewUserRepository(),
		repository.NewDoctorProfileRepository(),
		service.NewAuditService(db, log, repository.NewAuditLogRepository()),
	)
}

func TestCreateDoctor(t *testing.T) {
	db := newTestDB(t)
	uc := newDoctorProfileUsecase(t, db)

	resp, err := uc.CreateDoctor(ctxWithUser(uuid.New()), &dto.CreateDoctorRequest{
		Email:          "newdoc@example.com",
		Password:       "supersecret",
		FullName:       "Dr. Emily Larson",
		Specialization: "Gynecologist",
		Degree:         "MBBS",
		Experience:     "3 Years",
		Fees:           decimal.NewFromInt(60),
	})
	if err != nil {
		t.Fatalf("CreateDoctor: %v", err)
	}
	if resp.Email != "newdoc@example.com" {
		t.Errorf("Email = %q", resp.Email)
	}
	if !resp.Available {
		t.Error("new doctors start available")
	}

	var user entity.User
	if err := db.Where("email = ?", "newdoc@example.com").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.RoleID != entity.RoleIDDoctor {
		t.Errorf("RoleID = %d, want doctor", user.RoleID)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("supersecret")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestGetPublicDoctorsExcludesCredentials(t *testing.T) {
	db := newTestDB(t)
	uc := newDoctorProfileUsecase(t, db)
	seedDoctor(t, db, "doc@example.com", true)

	list, err := uc.GetPublicDoctors(context.Background())
	if err != nil {
		t.Fatalf("GetPublicDoctors: %v", err)
	}
	if list.Total != 1 {
		t.Fatalf("total = %d, want 1", list.Total)
	}
	// The public projection has no email field at all; spot-check the data
	// that must be there.
	if list.Doctors[0].FullName == "" {
		t.Error("public roster should carry the doctor name")
	}
}

func TestUpdateSelfProfilePatchesOnlyGivenFields(t *testing.T) {
	db := newTestDB(t)
	uc := newDoctorProfileUsecase(t, db)
	doctor := seedDoctor(t, db, "doc@example.com", true)

	newFees := decimal.NewFromInt(80)
	resp, err := uc.UpdateSelfProfile(ctxWithUser(doctor.UserID), &dto.UpdateDoctorProfileRequest{
		Fees: &newFees,
	})
	if err != nil {
		t.Fatalf("UpdateSelfProfile: %v", err)
	}
	if !resp.Fees.Equal(newFees) {
		t.Errorf("Fees = %s, want %s", resp.Fees, newFees)
	}
	if resp.Specialization != doctor.Specialization {
		t.Errorf("Specialization changed to %q", resp.Specialization)
	}
}

func TestToggleSelfAvailability(t *testing.T) {
	db := newTestDB(t)
	uc := newDoctorProfileUsecase(t, db)
	doctor := seedDoctor(t, db, "doc@example.com", true)

	if err := uc.ToggleSelfAvailability(ctxWithUser(doctor.UserID)); err != nil {
		t.Fatalf("ToggleSelfAvailability: %v", err)
	}

	var profile entity.DoctorProfile
	if err := db.Where("user_id = ?", doctor.UserID).First(&profile).Error; err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if profile.Available {
		t.Error("available should be false after toggle")
	}
}

func TestToggleAvailabilityByAdminTargetsNamedDoctor(t *testing.T) {
	db := newTestDB(t)
	uc := newDoctorProfileUsecase(t, db)
	doctor := seedDoctor(t, db, "doc@example.com", true)
	admin := uuid.New()

	if err := uc.ToggleAvailability(ctxWithUser(admin), doctor.UserID); err != nil {
		t.Fatalf("ToggleAvailability: %v", err)
	}

	var profile entity.DoctorProfile
	if err := db.Where("user_id = ?", doctor.UserID).First(&profile).Error; err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if profile.Available {
		t.Error("available should be false after admin toggle")
	}
}

func TestToggleUnknownDoctor(t *testing.T) {
	db := newTestDB(t)
	uc := newDoctorProfileUsecase(t, db)

	err := uc.ToggleAvailability(ctxWithUser(uuid.New()), uuid.New())
	if !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("got %v, want ErrDoctorNotFound", err)
	}
}
