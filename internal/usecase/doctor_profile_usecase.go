package usecase

import (
	"context"
	"errors"

	"medibook-backend/internal/converter"
	"medibook-backend/internal/delivery/dto"
	"medibook-backend/internal/delivery/http/middleware"
	"medibook-backend/internal/domain/entity"
	"medibook-backend/internal/domain/repository"
	"medibook-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type DoctorProfileUsecase interface {
	// CreateDoctor registers a doctor account (admin panel).
	CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error)
	// GetPublicDoctors is the unauthenticated roster; credential fields are
	// excluded from the projection.
	GetPublicDoctors(ctx context.Context) (*dto.PublicDoctorListResponse, error)
	GetAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error)
	GetSelfProfile(ctx context.Context) (*dto.DoctorResponse, error)
	UpdateSelfProfile(ctx context.Context, req *dto.UpdateDoctorProfileRequest) (*dto.DoctorResponse, error)
	// ToggleSelfAvailability flips the availability flag of the verified
	// requester. The doctor named in any payload is ignored.
	ToggleSelfAvailability(ctx context.Context) error
	// ToggleAvailability flips the flag of an explicitly named doctor.
	// Reachable from the admin panel only.
	ToggleAvailability(ctx context.Context, doctorID uuid.UUID) error
}

type doctorProfileUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	userRepo          repository.UserRepository
	doctorProfileRepo repository.DoctorProfileRepository
	auditService      service.AuditService
}

func NewDoctorProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	auditService service.AuditService,
) DoctorProfileUsecase {
	return &doctorProfileUsecase{
		db:                db,
		log:               log,
		userRepo:          userRepo,
		doctorProfileRepo: doctorProfileRepo,
		auditService:      auditService,
	}
}

func (u *doctorProfileUsecase) CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	// Create user with doctor profile in single insert using GORM association
	doctorProfile := &entity.DoctorProfile{
		Specialization: req.Specialization,
		Degree:         req.Degree,
		Experience:     req.Experience,
		Fees:           req.Fees,
		Address:        req.Address,
		About:          req.About,
		ImageURL:       req.ImageURL,
		Available:      true,
		User: entity.User{
			Email:    req.Email,
			Password: string(hashedPassword),
			FullName: req.FullName,
			RoleID:   entity.RoleIDDoctor,
			IsActive: true,
		},
	}
	if err := u.doctorProfileRepo.Create(tx, doctorProfile); err != nil {
		u.log.Warnf("Failed to create doctor: %+v", err)
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		if isForeignKeyError(err, "role") {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	doctorProfile.UserID = doctorProfile.User.ID

	adminID, _ := middleware.GetUserIDFromContext(ctx)
	if err := u.auditService.LogTransition(ctx, tx, &adminID, entity.AuditActionDoctorCreate, "doctor_profile", doctorProfile.UserID.String(), map[string]interface{}{
		"specialization": req.Specialization,
	}); err != nil {
		u.log.Warnf("Failed to audit doctor creation: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DoctorProfileToResponse(doctorProfile), nil
}

func (u *doctorProfileUsecase) GetPublicDoctors(ctx context.Context) (*dto.PublicDoctorListResponse, error) {
	profiles, err := u.doctorProfileRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list doctors: %+v", err)
		return nil, err
	}

	return &dto.PublicDoctorListResponse{
		Doctors: converter.DoctorProfilesToPublicResponses(profiles),
		Total:   len(profiles),
	}, nil
}

func (u *doctorProfileUsecase) GetAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	profiles, err := u.doctorProfileRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list doctors: %+v", err)
		return nil, err
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorProfilesToResponses(profiles),
		Total:   len(profiles),
	}, nil
}

func (u *doctorProfileUsecase) GetSelfProfile(ctx context.Context) (*dto.DoctorResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	profile, err := u.doctorProfileRepo.FindByUserID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	return converter.DoctorProfileToResponse(profile), nil
}

func (u *doctorProfileUsecase) UpdateSelfProfile(ctx context.Context, req *dto.UpdateDoctorProfileRequest) (*dto.DoctorResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile, err := u.doctorProfileRepo.FindByUserID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	if req.Fees != nil {
		profile.Fees = *req.Fees
	}
	if req.Address != nil {
		profile.Address = *req.Address
	}
	if req.About != nil {
		profile.About = *req.About
	}
	if req.Available != nil {
		profile.Available = *req.Available
	}

	if err := u.doctorProfileRepo.Update(tx, profile); err != nil {
		u.log.Warnf("Failed to update doctor profile: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogTransition(ctx, tx, &doctorID, entity.AuditActionProfileUpdate, "doctor_profile", doctorID.String(), nil); err != nil {
		u.log.Warnf("Failed to audit profile update: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DoctorProfileToResponse(profile), nil
}

func (u *doctorProfileUsecase) ToggleSelfAvailability(ctx context.Context) error {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return errors.New("user not found in context")
	}
	return u.toggle(ctx, doctorID, doctorID)
}

func (u *doctorProfileUsecase) ToggleAvailability(ctx context.Context, doctorID uuid.UUID) error {
	adminID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return errors.New("user not found in context")
	}
	return u.toggle(ctx, doctorID, adminID)
}

func (u *doctorProfileUsecase) toggle(ctx context.Context, doctorID, actorID uuid.UUID) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	rows, err := u.doctorProfileRepo.ToggleAvailability(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to toggle availability for doctor %s: %+v", doctorID, err)
		return err
	}
	if rows == 0 {
		return ErrDoctorNotFound
	}

	if err := u.auditService.LogTransition(ctx, tx, &actorID, entity.AuditActionAvailabilityToggle, "doctor_profile", doctorID.String(), nil); err != nil {
		u.log.Warnf("Failed to audit availability toggle: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.log.WithFields(logrus.Fields{
		"doctor_id": doctorID,
		"actor_id":  actorID,
	}).Info("Doctor availability toggled")

	return nil
}
