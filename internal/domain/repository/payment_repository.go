package repository

import (
	"medibook-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(db *gorm.DB, payment *entity.Payment) error
	FindByOrderID(db *gorm.DB, orderID string) (*entity.Payment, error)
	FindByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) (*entity.Payment, error)

	// Capture marks a created payment as captured and records the gateway
	// payment id. Returns affected rows: 0 means unknown order or already
	// captured.
	Capture(db *gorm.DB, orderID, paymentID string) (int64, error)
}
