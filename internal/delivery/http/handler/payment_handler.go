package handler

import (
	"encoding/json"
	"net/http"

	"medibook-backend/internal/delivery/dto"
	"medibook-backend/internal/usecase"
	"medibook-backend/pkg/response"
	"medibook-backend/pkg/validator"
)

type PaymentHandler struct {
	paymentUsecase usecase.PaymentUsecase
	validator      *validator.CustomValidator
}

func NewPaymentHandler(paymentUsecase usecase.PaymentUsecase, validator *validator.CustomValidator) *PaymentHandler {
	return &PaymentHandler{
		paymentUsecase: paymentUsecase,
		validator:      validator,
	}
}

func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	order, err := h.paymentUsecase.CreateOrder(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrAppointmentNotFound:
			response.NotFound(w, "Appointment not found")
		case usecase.ErrNotAppointmentOwner:
			response.Forbidden(w, "Appointment does not belong to you")
		case usecase.ErrAppointmentClosed:
			response.Conflict(w, "Appointment is already cancelled or completed")
		case usecase.ErrAppointmentAlreadyPaid:
			response.Conflict(w, "Appointment is already paid")
		default:
			response.InternalServerError(w, "Failed to create payment order")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Payment order created", order)
}

func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	if err := h.paymentUsecase.Verify(r.Context(), &req); err != nil {
		switch err {
		case usecase.ErrPaymentNotFound:
			response.NotFound(w, "Payment not found")
		case usecase.ErrAppointmentNotFound:
			response.NotFound(w, "Appointment not found")
		case usecase.ErrNotAppointmentOwner:
			response.Forbidden(w, "Appointment does not belong to you")
		case usecase.ErrInvalidPaymentSignature:
			response.Error(w, http.StatusBadRequest, "Payment signature verification failed", nil)
		case usecase.ErrPaymentAlreadyCaptured:
			response.Conflict(w, "Payment is already captured")
		default:
			response.InternalServerError(w, "Failed to verify payment")
		}
		return
	}

	response.Success(w, http.StatusOK, "Payment verified", nil)
}
