package repository

import (
	"errors"

	"medibook-backend/internal/domain/entity"
	domainRepo "medibook-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type paymentRepository struct{}

func NewPaymentRepository() domainRepo.PaymentRepository {
	return &paymentRepository{}
}

func (r *paymentRepository) Create(db *gorm.DB, payment *entity.Payment) error {
	return db.Create(payment).Error
}

func (r *paymentRepository) FindByOrderID(db *gorm.DB, orderID string) (*entity.Payment, error) {
	var payment entity.Payment
	err := db.Where("razorpay_order_id = ?", orderID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) (*entity.Payment, error) {
	var payment entity.Payment
	err := db.Where("appointment_id = ?", appointmentID).
		Order("created_at DESC").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// Capture is conditional on the created status so a replayed verification
// callback cannot capture twice.
func (r *paymentRepository) Capture(db *gorm.DB, orderID, paymentID string) (int64, error) {
	result := db.Model(&entity.Payment{}).
		Where("razorpay_order_id = ? AND status = ?", orderID, entity.PaymentStatusCreated).
		Updates(map[string]interface{}{
			"razorpay_payment_id": paymentID,
			"status":              entity.PaymentStatusCaptured,
		})
	return result.RowsAffected, result.Error
}
