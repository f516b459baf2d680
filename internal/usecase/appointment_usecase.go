package usecase

import (
	"context"
	"errors"
	"time"

	"medibook-backend/internal/converter"
	"medibook-backend/internal/delivery/dto"
	"medibook-backend/internal/delivery/http/middleware"
	"medibook-backend/internal/domain/entity"
	"medibook-backend/internal/domain/repository"
	"medibook-backend/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrNotAppointmentOwner = errors.New("appointment does not belong to you")
	ErrAppointmentClosed   = errors.New("appointment is already cancelled or completed")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrDoctorUnavailable   = errors.New("doctor is not available for booking")
	ErrSlotInPast          = errors.New("cannot book a past slot")
)

const dashboardLatestCount = 5

// AppointmentUsecase is the appointment lifecycle service. Every transition
// binds its ownership check to the subject id taken from the verified
// credential in the request context; ids in request payloads only ever name
// the appointment, never the actor.
type AppointmentUsecase interface {
	Book(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error)
	CancelByPatient(ctx context.Context, appointmentID uuid.UUID) error
	CancelByDoctor(ctx context.Context, appointmentID uuid.UUID) error
	CompleteByDoctor(ctx context.Context, appointmentID uuid.UUID) error
	CancelByAdmin(ctx context.Context, appointmentID uuid.UUID) error
	ListForPatient(ctx context.Context) (*dto.AppointmentListResponse, error)
	ListForDoctor(ctx context.Context) (*dto.AppointmentListResponse, error)
	ListAll(ctx context.Context) (*dto.AppointmentListResponse, error)
	DoctorDashboard(ctx context.Context) (*dto.DoctorDashboardResponse, error)
	AdminDashboard(ctx context.Context) (*dto.AdminDashboardResponse, error)
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	doctorRepo      repository.DoctorProfileRepository
	patientRepo     repository.PatientProfileRepository
	slotService     *service.SlotService
	auditService    service.AuditService
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorProfileRepository,
	patientRepo repository.PatientProfileRepository,
	slotService *service.SlotService,
	auditService service.AuditService,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		patientRepo:     patientRepo,
		slotService:     slotService,
		auditService:    auditService,
	}
}

// Book creates a new appointment for the logged-in patient.
//
// Flow:
// 1. Validate doctor exists, is active and available
// 2. Validate the slot is not in the past
// 3. Claim the slot in Redis (atomic, rejects double booking)
// 4. Insert the appointment with amount copied from the doctor fees
// 5. If the insert fails, compensate: release the Redis claim
func (u *appointmentUsecase) Book(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	slotDate, err := time.Parse("2006-01-02", req.SlotDate)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if slotDate.Before(today) {
		return nil, ErrSlotInPast
	}

	doctor, err := u.doctorRepo.FindByUserID(u.db.WithContext(ctx), req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil || !doctor.User.IsActive {
		return nil, ErrDoctorNotFound
	}
	if !doctor.Available {
		return nil, ErrDoctorUnavailable
	}

	// Atomic slot reservation. The claim is taken before the insert so two
	// patients racing for the same slot cannot both get an appointment row.
	if err := u.slotService.Claim(ctx, req.DoctorID, slotDate, req.SlotTime); err != nil {
		if errors.Is(err, service.ErrSlotTaken) {
			return nil, service.ErrSlotTaken
		}
		u.log.Warnf("Failed slot claim for doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}

	appointment := &entity.Appointment{
		PatientID: patientID,
		DoctorID:  req.DoctorID,
		SlotDate:  slotDate,
		SlotTime:  req.SlotTime,
		Amount:    doctor.Fees,
		Status:    entity.AppointmentStatusActive,
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		u.log.Errorf("Failed to insert appointment, compensating slot claim: %+v", err)
		u.releaseSlot(appointment)
		return nil, err
	}

	if err := u.auditService.LogTransition(ctx, tx, &patientID, entity.AuditActionAppointmentBook, "appointment", appointment.ID.String(), map[string]interface{}{
		"doctor_id": req.DoctorID.String(),
		"slot_date": req.SlotDate,
		"slot_time": req.SlotTime,
	}); err != nil {
		// Audit failures do not fail the booking
		u.log.Warnf("Failed to audit booking %s: %+v", appointment.ID, err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Errorf("Failed to commit booking, compensating slot claim: %+v", err)
		u.releaseSlot(appointment)
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"appointment_id": appointment.ID,
		"doctor_id":      req.DoctorID,
		"patient_id":     patientID,
		"slot":           req.SlotDate + " " + req.SlotTime,
	}).Info("Appointment booked")

	full, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointment.ID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload appointment %s: %+v", appointment.ID, err)
		return converter.AppointmentToResponse(appointment), nil
	}
	return converter.AppointmentToResponse(full), nil
}

// CancelByPatient moves an active appointment owned by the logged-in patient
// to cancelled and frees the slot.
func (u *appointmentUsecase) CancelByPatient(ctx context.Context, appointmentID uuid.UUID) error {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return errors.New("user not found in context")
	}

	return u.transition(ctx, appointmentID, entity.AppointmentStatusCancelled, entity.AuditActionAppointmentCancel,
		func(tx *gorm.DB) (int64, error) {
			return u.appointmentRepo.TransitionByPatient(tx, appointmentID, patientID, entity.AppointmentStatusCancelled)
		},
		func(a *entity.Appointment) bool { return a.OwnedByPatient(patientID) },
		patientID,
	)
}

// CancelByDoctor moves an active appointment owned by the logged-in doctor to
// cancelled and frees the slot.
func (u *appointmentUsecase) CancelByDoctor(ctx context.Context, appointmentID uuid.UUID) error {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return errors.New("user not found in context")
	}

	return u.transition(ctx, appointmentID, entity.AppointmentStatusCancelled, entity.AuditActionAppointmentCancel,
		func(tx *gorm.DB) (int64, error) {
			return u.appointmentRepo.TransitionByDoctor(tx, appointmentID, doctorID, entity.AppointmentStatusCancelled)
		},
		func(a *entity.Appointment) bool { return a.OwnedByDoctor(doctorID) },
		doctorID,
	)
}

// CompleteByDoctor moves an active appointment owned by the logged-in doctor
// to completed.
func (u *appointmentUsecase) CompleteByDoctor(ctx context.Context, appointmentID uuid.UUID) error {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return errors.New("user not found in context")
	}

	return u.transition(ctx, appointmentID, entity.AppointmentStatusCompleted, entity.AuditActionAppointmentComplete,
		func(tx *gorm.DB) (int64, error) {
			return u.appointmentRepo.TransitionByDoctor(tx, appointmentID, doctorID, entity.AppointmentStatusCompleted)
		},
		func(a *entity.Appointment) bool { return a.OwnedByDoctor(doctorID) },
		doctorID,
	)
}

// CancelByAdmin cancels any active appointment. Admin capability, no
// ownership filter.
func (u *appointmentUsecase) CancelByAdmin(ctx context.Context, appointmentID uuid.UUID) error {
	adminID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return errors.New("user not found in context")
	}

	return u.transition(ctx, appointmentID, entity.AppointmentStatusCancelled, entity.AuditActionAppointmentCancel,
		func(tx *gorm.DB) (int64, error) {
			return u.appointmentRepo.Transition(tx, appointmentID, entity.AppointmentStatusCancelled)
		},
		func(a *entity.Appointment) bool { return true },
		adminID,
	)
}

// transition runs one conditional state change. The update carries the
// ownership filter and the active-status guard in a single statement, so the
// read-verify-write race of a naive implementation cannot occur: of two
// concurrent transitions exactly one sees an affected row.
//
// When no row was affected a classification read distinguishes the failure:
// missing appointment, foreign owner, or terminal state.
func (u *appointmentUsecase) transition(
	ctx context.Context,
	appointmentID uuid.UUID,
	status entity.AppointmentStatus,
	auditAction string,
	apply func(tx *gorm.DB) (int64, error),
	owned func(a *entity.Appointment) bool,
	actorID uuid.UUID,
) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	rows, err := apply(tx)
	if err != nil {
		u.log.Warnf("Failed to transition appointment %s: %+v", appointmentID, err)
		return err
	}

	if rows == 0 {
		tx.Rollback()
		return u.classifyDenial(ctx, appointmentID, owned)
	}

	if err := u.auditService.LogTransition(ctx, tx, &actorID, auditAction, "appointment", appointmentID.String(), map[string]interface{}{
		"status": string(status),
	}); err != nil {
		u.log.Warnf("Failed to audit transition %s: %+v", appointmentID, err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.log.WithFields(logrus.Fields{
		"appointment_id": appointmentID,
		"status":         status,
		"actor_id":       actorID,
	}).Info("Appointment transitioned")

	if status == entity.AppointmentStatusCancelled {
		// Free the slot so it can be rebooked. Non-fatal: the startup sync
		// reconciles Redis with the store.
		appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
		if err == nil && appointment != nil {
			u.releaseSlot(appointment)
		}
	}

	return nil
}

// classifyDenial explains a zero-row transition for the error taxonomy. The
// handler maps every outcome to the same envelope shape, so the distinction
// leaks nothing beyond what the lookup already implies.
func (u *appointmentUsecase) classifyDenial(ctx context.Context, appointmentID uuid.UUID, owned func(a *entity.Appointment) bool) error {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to classify denial for appointment %s: %+v", appointmentID, err)
		return err
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}
	if !owned(appointment) {
		return ErrNotAppointmentOwner
	}
	return ErrAppointmentClosed
}

func (u *appointmentUsecase) releaseSlot(appointment *entity.Appointment) {
	syncCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := u.slotService.Release(syncCtx, appointment.DoctorID, appointment.SlotDate, appointment.SlotTime); err != nil {
		u.log.Warnf("Failed to release slot for appointment %s (non-fatal): %+v", appointment.ID, err)
	}
}

// ListForPatient returns all appointments of the logged-in patient
func (u *appointmentUsecase) ListForPatient(ctx context.Context) (*dto.AppointmentListResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	appointments, err := u.appointmentRepo.FindByPatientID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for patient %s: %+v", patientID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// ListForDoctor returns all appointments of the logged-in doctor
func (u *appointmentUsecase) ListForDoctor(ctx context.Context) (*dto.AppointmentListResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	appointments, err := u.appointmentRepo.FindByDoctorID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// ListAll returns every appointment (admin panel)
func (u *appointmentUsecase) ListAll(ctx context.Context) (*dto.AppointmentListResponse, error) {
	appointments, err := u.appointmentRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// DoctorDashboard aggregates the logged-in doctor's panel view: earnings over
// completed appointments, total appointment count, distinct patient count and
// the latest appointments with patient detail.
func (u *appointmentUsecase) DoctorDashboard(ctx context.Context) (*dto.DoctorDashboardResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	db := u.db.WithContext(ctx)
	appointments, err := u.appointmentRepo.FindByDoctorID(db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to load dashboard for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	latest, err := u.appointmentRepo.FindLatestByDoctorID(db, doctorID, dashboardLatestCount)
	if err != nil {
		u.log.Warnf("Failed to load latest appointments for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	return buildDoctorDashboard(appointments, latest), nil
}

// buildDoctorDashboard computes the aggregate view from a doctor's
// appointments plus the newest slice. Earnings sum the amount of completed
// appointments only.
func buildDoctorDashboard(appointments, latest []entity.Appointment) *dto.DoctorDashboardResponse {
	earnings := decimal.Zero
	patients := make(map[uuid.UUID]struct{})
	for i := range appointments {
		a := &appointments[i]
		patients[a.PatientID] = struct{}{}
		if a.IsCompleted() {
			earnings = earnings.Add(a.Amount)
		}
	}

	return &dto.DoctorDashboardResponse{
		Earnings:           earnings,
		Appointments:       len(appointments),
		Patients:           len(patients),
		LatestAppointments: converter.AppointmentsToResponses(latest),
	}
}

// AdminDashboard aggregates the admin panel view
func (u *appointmentUsecase) AdminDashboard(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	db := u.db.WithContext(ctx)

	doctors, err := u.doctorRepo.Count(db)
	if err != nil {
		u.log.Warnf("Failed to count doctors: %+v", err)
		return nil, err
	}
	patients, err := u.patientRepo.Count(db)
	if err != nil {
		u.log.Warnf("Failed to count patients: %+v", err)
		return nil, err
	}
	appointments, err := u.appointmentRepo.Count(db)
	if err != nil {
		u.log.Warnf("Failed to count appointments: %+v", err)
		return nil, err
	}
	latest, err := u.appointmentRepo.FindLatest(db, dashboardLatestCount)
	if err != nil {
		u.log.Warnf("Failed to load latest appointments: %+v", err)
		return nil, err
	}

	return &dto.AdminDashboardResponse{
		Doctors:            doctors,
		Patients:           patients,
		Appointments:       appointments,
		LatestAppointments: converter.AppointmentsToResponses(latest),
	}, nil
}
