package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"medibook-backend/config"

	razorpay "github.com/razorpay/razorpay-go"
)

var ErrOrderCreateFailed = errors.New("failed to create payment order")

// PaymentGateway abstracts the payment provider so usecases stay testable.
type PaymentGateway interface {
	// CreateOrder opens a gateway order for the given amount in the smallest
	// currency unit and returns the gateway order id.
	CreateOrder(amountPaise int64, currency, receipt string) (string, error)
	// VerifySignature checks the gateway callback signature for an order.
	VerifySignature(orderID, paymentID, signature string) bool
	// KeyID returns the public key id handed to the checkout frontend.
	KeyID() string
}

type razorpayGateway struct {
	client    *razorpay.Client
	keyID     string
	keySecret string
}

func NewRazorpayGateway(cfg config.RazorpayConfig) PaymentGateway {
	return &razorpayGateway{
		client:    razorpay.NewClient(cfg.KeyID, cfg.KeySecret),
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
	}
}

func (g *razorpayGateway) CreateOrder(amountPaise int64, currency, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", err
	}

	orderID, ok := body["id"].(string)
	if !ok || orderID == "" {
		return "", ErrOrderCreateFailed
	}
	return orderID, nil
}

func (g *razorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifyRazorpaySignature(orderID, paymentID, signature, g.keySecret)
}

func (g *razorpayGateway) KeyID() string {
	return g.keyID
}

// VerifyRazorpaySignature checks the HMAC-SHA256 signature razorpay sends on
// payment completion: hex(hmac_sha256(order_id + "|" + payment_id, secret)).
func VerifyRazorpaySignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
