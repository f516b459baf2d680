package usecase

import (
	"errors"
	"fmt"
	"testing"

	"medibook-backend/internal/delivery/dto"
	"medibook-backend/internal/domain/entity"
	"medibook-backend/internal/repository"
	"medibook-backend/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// fakeGateway stands in for razorpay. Signatures are the literal string
// "sig:<order>:<payment>" so tests can mint valid and invalid ones.
type fakeGateway struct {
	orders      int
	lastAmount  int64
	lastReceipt string
	createErr   error
}

func (g *fakeGateway) CreateOrder(amountPaise int64, currency, receipt string) (string, error) {
	if g.createErr != nil {
		return "", g.createErr
	}
	g.orders++
	g.lastAmount = amountPaise
	g.lastReceipt = receipt
	return fmt.Sprintf("order_test_%d", g.orders), nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return signature == "sig:"+orderID+":"+paymentID
}

func (g *fakeGateway) KeyID() string {
	return "rzp_test_key"
}

type paymentFixture struct {
	db         *gorm.DB
	gateway    *fakeGateway
	usecase    PaymentUsecase
	doctor     *entity.DoctorProfile
	patient    *entity.PatientProfile
	booked     *dto.AppointmentResponse
	bookingsUC AppointmentUsecase
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	f := newAppointmentFixture(t)
	gateway := &fakeGateway{}

	auditService := service.NewAuditService(f.db, newTestLogger(), repository.NewAuditLogRepository())
	uc := NewPaymentUsecase(
		f.db,
		newTestLogger(),
		repository.NewPaymentRepository(),
		repository.NewAppointmentRepository(),
		gateway,
		auditService,
	)

	booked, err := f.usecase.Book(ctxWithUser(f.patient.UserID), &dto.BookAppointmentRequest{
		DoctorID: f.doctor.UserID,
		SlotDate: futureDate(3),
		SlotTime: "10:30",
	})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	return &paymentFixture{
		db:         f.db,
		gateway:    gateway,
		usecase:    uc,
		doctor:     f.doctor,
		patient:    f.patient,
		booked:     booked,
		bookingsUC: f.usecase,
	}
}

func TestCreateOrder(t *testing.T) {
	f := newPaymentFixture(t)

	order, err := f.usecase.CreateOrder(ctxWithUser(f.patient.UserID), &dto.CreatePaymentRequest{
		AppointmentID: f.booked.ID,
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if order.OrderID != "order_test_1" {
		t.Errorf("OrderID = %q", order.OrderID)
	}
	if order.Currency != "INR" {
		t.Errorf("Currency = %q, want INR", order.Currency)
	}
	if order.KeyID != "rzp_test_key" {
		t.Errorf("KeyID = %q", order.KeyID)
	}
	if !order.Amount.Equal(f.booked.Amount) {
		t.Errorf("Amount = %s, want %s", order.Amount, f.booked.Amount)
	}
	// The gateway gets the amount in paise
	wantPaise := f.booked.Amount.Mul(decimal.NewFromInt(100)).IntPart()
	if f.gateway.lastAmount != wantPaise {
		t.Errorf("gateway amount = %d, want %d", f.gateway.lastAmount, wantPaise)
	}

	var payment entity.Payment
	if err := f.db.Where("razorpay_order_id = ?", order.OrderID).First(&payment).Error; err != nil {
		t.Fatalf("payment row missing: %v", err)
	}
	if payment.Status != entity.PaymentStatusCreated {
		t.Errorf("payment status = %s, want created", payment.Status)
	}
}

func TestCreateOrderRetryReusesPendingOrder(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := ctxWithUser(f.patient.UserID)

	first, err := f.usecase.CreateOrder(ctx, &dto.CreatePaymentRequest{AppointmentID: f.booked.ID})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	second, err := f.usecase.CreateOrder(ctx, &dto.CreatePaymentRequest{AppointmentID: f.booked.ID})
	if err != nil {
		t.Fatalf("CreateOrder retry: %v", err)
	}

	if second.OrderID != first.OrderID {
		t.Errorf("retry order = %s, want %s", second.OrderID, first.OrderID)
	}
	if f.gateway.orders != 1 {
		t.Errorf("gateway orders = %d, want 1", f.gateway.orders)
	}

	var count int64
	if err := f.db.Model(&entity.Payment{}).Where("appointment_id = ?", f.booked.ID).Count(&count).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if count != 1 {
		t.Errorf("payment rows = %d, want 1", count)
	}
}

func TestCreateOrderRejectsForeignPatient(t *testing.T) {
	f := newPaymentFixture(t)
	other := seedPatient(t, f.db, "other@example.com")

	_, err := f.usecase.CreateOrder(ctxWithUser(other.UserID), &dto.CreatePaymentRequest{
		AppointmentID: f.booked.ID,
	})
	if !errors.Is(err, ErrNotAppointmentOwner) {
		t.Fatalf("got %v, want ErrNotAppointmentOwner", err)
	}
}

func TestCreateOrderRejectsUnknownAppointment(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.usecase.CreateOrder(ctxWithUser(f.patient.UserID), &dto.CreatePaymentRequest{
		AppointmentID: uuid.New(),
	})
	if !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("got %v, want ErrAppointmentNotFound", err)
	}
}

func TestCreateOrderRejectsClosedAppointment(t *testing.T) {
	f := newPaymentFixture(t)

	if err := f.bookingsUC.CancelByPatient(ctxWithUser(f.patient.UserID), f.booked.ID); err != nil {
		t.Fatalf("CancelByPatient: %v", err)
	}

	_, err := f.usecase.CreateOrder(ctxWithUser(f.patient.UserID), &dto.CreatePaymentRequest{
		AppointmentID: f.booked.ID,
	})
	if !errors.Is(err, ErrAppointmentClosed) {
		t.Fatalf("got %v, want ErrAppointmentClosed", err)
	}
}

func TestVerifyCapturesAndMarksPaid(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := ctxWithUser(f.patient.UserID)

	order, err := f.usecase.CreateOrder(ctx, &dto.CreatePaymentRequest{AppointmentID: f.booked.ID})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	err = f.usecase.Verify(ctx, &dto.VerifyPaymentRequest{
		RazorpayOrderID:   order.OrderID,
		RazorpayPaymentID: "pay_test_1",
		RazorpaySignature: "sig:" + order.OrderID + ":pay_test_1",
	})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	var payment entity.Payment
	if err := f.db.Where("razorpay_order_id = ?", order.OrderID).First(&payment).Error; err != nil {
		t.Fatalf("load payment: %v", err)
	}
	if !payment.IsCaptured() {
		t.Errorf("payment status = %s, want captured", payment.Status)
	}
	if payment.RazorpayPaymentID != "pay_test_1" {
		t.Errorf("payment id = %q", payment.RazorpayPaymentID)
	}

	var appointment entity.Appointment
	if err := f.db.Where("id = ?", f.booked.ID).First(&appointment).Error; err != nil {
		t.Fatalf("load appointment: %v", err)
	}
	if !appointment.Paid {
		t.Error("appointment should be marked paid")
	}
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := ctxWithUser(f.patient.UserID)

	order, err := f.usecase.CreateOrder(ctx, &dto.CreatePaymentRequest{AppointmentID: f.booked.ID})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	err = f.usecase.Verify(ctx, &dto.VerifyPaymentRequest{
		RazorpayOrderID:   order.OrderID,
		RazorpayPaymentID: "pay_test_1",
		RazorpaySignature: "forged",
	})
	if !errors.Is(err, ErrInvalidPaymentSignature) {
		t.Fatalf("got %v, want ErrInvalidPaymentSignature", err)
	}

	var appointment entity.Appointment
	if err := f.db.Where("id = ?", f.booked.ID).First(&appointment).Error; err != nil {
		t.Fatalf("load appointment: %v", err)
	}
	if appointment.Paid {
		t.Error("appointment must not be paid after a forged signature")
	}
}

func TestVerifyReplayDenied(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := ctxWithUser(f.patient.UserID)

	order, err := f.usecase.CreateOrder(ctx, &dto.CreatePaymentRequest{AppointmentID: f.booked.ID})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	req := &dto.VerifyPaymentRequest{
		RazorpayOrderID:   order.OrderID,
		RazorpayPaymentID: "pay_test_1",
		RazorpaySignature: "sig:" + order.OrderID + ":pay_test_1",
	}
	if err := f.usecase.Verify(ctx, req); err != nil {
		t.Fatalf("first Verify: %v", err)
	}
	if err := f.usecase.Verify(ctx, req); !errors.Is(err, ErrPaymentAlreadyCaptured) {
		t.Fatalf("replay: got %v, want ErrPaymentAlreadyCaptured", err)
	}
}

func TestVerifyRejectsForeignPatient(t *testing.T) {
	f := newPaymentFixture(t)
	other := seedPatient(t, f.db, "other@example.com")

	order, err := f.usecase.CreateOrder(ctxWithUser(f.patient.UserID), &dto.CreatePaymentRequest{AppointmentID: f.booked.ID})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	err = f.usecase.Verify(ctxWithUser(other.UserID), &dto.VerifyPaymentRequest{
		RazorpayOrderID:   order.OrderID,
		RazorpayPaymentID: "pay_test_1",
		RazorpaySignature: "sig:" + order.OrderID + ":pay_test_1",
	})
	if !errors.Is(err, ErrNotAppointmentOwner) {
		t.Fatalf("got %v, want ErrNotAppointmentOwner", err)
	}
}
