package usecase

import (
	"context"
	"errors"

	"medibook-backend/internal/delivery/dto"
	"medibook-backend/internal/delivery/http/middleware"
	"medibook-backend/internal/domain/entity"
	"medibook-backend/internal/domain/repository"
	"medibook-backend/internal/service"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentAlreadyPaid  = errors.New("appointment is already paid")
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrInvalidPaymentSignature = errors.New("payment signature verification failed")
	ErrPaymentAlreadyCaptured  = errors.New("payment is already captured")
)

const paymentCurrency = "INR"

type PaymentUsecase interface {
	// CreateOrder opens a gateway order for an active, unpaid appointment
	// owned by the logged-in patient.
	CreateOrder(ctx context.Context, req *dto.CreatePaymentRequest) (*dto.PaymentOrderResponse, error)
	// Verify checks the gateway signature and marks the appointment paid.
	Verify(ctx context.Context, req *dto.VerifyPaymentRequest) error
}

type paymentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	paymentRepo     repository.PaymentRepository
	appointmentRepo repository.AppointmentRepository
	gateway         service.PaymentGateway
	auditService    service.AuditService
}

func NewPaymentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	paymentRepo repository.PaymentRepository,
	appointmentRepo repository.AppointmentRepository,
	gateway service.PaymentGateway,
	auditService service.AuditService,
) PaymentUsecase {
	return &paymentUsecase{
		db:              db,
		log:             log,
		paymentRepo:     paymentRepo,
		appointmentRepo: appointmentRepo,
		gateway:         gateway,
		auditService:    auditService,
	}
}

func (u *paymentUsecase) CreateOrder(ctx context.Context, req *dto.CreatePaymentRequest) (*dto.PaymentOrderResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), req.AppointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", req.AppointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !appointment.OwnedByPatient(patientID) {
		return nil, ErrNotAppointmentOwner
	}
	if !appointment.IsActive() {
		return nil, ErrAppointmentClosed
	}
	if appointment.Paid {
		return nil, ErrAppointmentAlreadyPaid
	}

	// A retry for the same appointment reuses the pending order instead of
	// minting a duplicate at the gateway.
	existing, err := u.paymentRepo.FindByAppointmentID(u.db.WithContext(ctx), appointment.ID)
	if err != nil {
		u.log.Warnf("Failed to find payment for appointment %s: %+v", appointment.ID, err)
		return nil, err
	}
	if existing != nil {
		if existing.Status == entity.PaymentStatusCaptured {
			return nil, ErrAppointmentAlreadyPaid
		}
		return &dto.PaymentOrderResponse{
			OrderID:  existing.RazorpayOrderID,
			Amount:   existing.Amount,
			Currency: paymentCurrency,
			KeyID:    u.gateway.KeyID(),
		}, nil
	}

	// Gateway amounts are integers in the smallest currency unit
	amountPaise := appointment.Amount.Mul(decimal.NewFromInt(100)).IntPart()

	orderID, err := u.gateway.CreateOrder(amountPaise, paymentCurrency, appointment.ID.String())
	if err != nil {
		u.log.Errorf("Failed to create gateway order for appointment %s: %+v", appointment.ID, err)
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	payment := &entity.Payment{
		AppointmentID:   appointment.ID,
		RazorpayOrderID: orderID,
		Amount:          appointment.Amount,
		Status:          entity.PaymentStatusCreated,
	}
	if err := u.paymentRepo.Create(tx, payment); err != nil {
		u.log.Warnf("Failed to persist payment order %s: %+v", orderID, err)
		return nil, err
	}

	if err := u.auditService.LogTransition(ctx, tx, &patientID, entity.AuditActionPaymentCreate, "payment", payment.ID.String(), map[string]interface{}{
		"appointment_id": appointment.ID.String(),
		"order_id":       orderID,
	}); err != nil {
		u.log.Warnf("Failed to audit payment creation: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return &dto.PaymentOrderResponse{
		OrderID:  orderID,
		Amount:   appointment.Amount,
		Currency: paymentCurrency,
		KeyID:    u.gateway.KeyID(),
	}, nil
}

func (u *paymentUsecase) Verify(ctx context.Context, req *dto.VerifyPaymentRequest) error {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return errors.New("user not found in context")
	}

	payment, err := u.paymentRepo.FindByOrderID(u.db.WithContext(ctx), req.RazorpayOrderID)
	if err != nil {
		u.log.Warnf("Failed to find payment %s: %+v", req.RazorpayOrderID, err)
		return err
	}
	if payment == nil {
		return ErrPaymentNotFound
	}

	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), payment.AppointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", payment.AppointmentID, err)
		return err
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}
	if !appointment.OwnedByPatient(patientID) {
		return ErrNotAppointmentOwner
	}

	if !u.gateway.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		u.log.WithFields(logrus.Fields{
			"order_id":   req.RazorpayOrderID,
			"patient_id": patientID,
		}).Warn("Payment signature verification failed")
		return ErrInvalidPaymentSignature
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	// Conditional on created status, so a replayed callback cannot capture
	// twice.
	rows, err := u.paymentRepo.Capture(tx, req.RazorpayOrderID, req.RazorpayPaymentID)
	if err != nil {
		u.log.Warnf("Failed to capture payment %s: %+v", req.RazorpayOrderID, err)
		return err
	}
	if rows == 0 {
		return ErrPaymentAlreadyCaptured
	}

	if err := u.appointmentRepo.MarkPaid(tx, appointment.ID); err != nil {
		u.log.Warnf("Failed to mark appointment %s paid: %+v", appointment.ID, err)
		return err
	}

	if err := u.auditService.LogTransition(ctx, tx, &patientID, entity.AuditActionPaymentCapture, "payment", payment.ID.String(), map[string]interface{}{
		"appointment_id": appointment.ID.String(),
		"order_id":       req.RazorpayOrderID,
		"payment_id":     req.RazorpayPaymentID,
	}); err != nil {
		u.log.Warnf("Failed to audit payment capture: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.log.WithFields(logrus.Fields{
		"appointment_id": appointment.ID,
		"order_id":       req.RazorpayOrderID,
	}).Info("Payment captured")

	return nil
}
