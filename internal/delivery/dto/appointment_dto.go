package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type BookAppointmentRequest struct {
	DoctorID uuid.UUID `json:"doctor_id" validate:"required"`
	SlotDate string    `json:"slot_date" validate:"required,datetime=2006-01-02"`
	SlotTime string    `json:"slot_time" validate:"required"`
}

// AppointmentActionRequest carries only the appointment id. The acting
// subject is always taken from the verified credential, never from here.
type AppointmentActionRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id" validate:"required"`
}

// Response DTOs

type AppointmentResponse struct {
	ID        uuid.UUID             `json:"id"`
	PatientID uuid.UUID             `json:"patient_id"`
	DoctorID  uuid.UUID             `json:"doctor_id"`
	SlotDate  string                `json:"slot_date"`
	SlotTime  string                `json:"slot_time"`
	Amount    decimal.Decimal       `json:"amount"`
	Status    string                `json:"status"`
	Paid      bool                  `json:"paid"`
	Doctor    *PublicDoctorResponse `json:"doctor,omitempty"`
	Patient   *PatientResponse      `json:"patient,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type DoctorDashboardResponse struct {
	Earnings           decimal.Decimal       `json:"earnings"`
	Appointments       int                   `json:"appointments"`
	Patients           int                   `json:"patients"`
	LatestAppointments []AppointmentResponse `json:"latest_appointments"`
}

type AdminDashboardResponse struct {
	Doctors            int64                 `json:"doctors"`
	Patients           int64                 `json:"patients"`
	Appointments       int64                 `json:"appointments"`
	LatestAppointments []AppointmentResponse `json:"latest_appointments"`
}
