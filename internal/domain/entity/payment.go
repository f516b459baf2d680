package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus represents the status of a gateway payment
type PaymentStatus string

const (
	PaymentStatusCreated  PaymentStatus = "created"
	PaymentStatusCaptured PaymentStatus = "captured"
)

// Payment tracks one razorpay order for an appointment
type Payment struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	AppointmentID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"appointment_id"`
	RazorpayOrderID   string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"razorpay_order_id"`
	RazorpayPaymentID string          `gorm:"type:varchar(100)" json:"razorpay_payment_id,omitempty"`
	Amount            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status            PaymentStatus   `gorm:"type:varchar(20);not null;default:'created';index" json:"status"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsCaptured checks if the payment has been captured
func (p *Payment) IsCaptured() bool {
	return p.Status == PaymentStatusCaptured
}
