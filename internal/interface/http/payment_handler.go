package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-lms/internal/application"
	"github.com/oksasatya/go-ddd-lms/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-lms/pkg/apperr"
	"github.com/oksasatya/go-ddd-lms/pkg/helpers"
	"github.com/oksasatya/go-ddd-lms/pkg/response"
)

const (
	stripeSignatureHeader = "Stripe-Signature"
	maxWebhookBytes       = 64 << 10
)

var errWebhookBody = apperr.Validation("webhook_body", "unreadable webhook body")

type PaymentHandler struct {
	Svc    *application.EnrollmentService
	Logger *logrus.Logger
}

func NewPaymentHandler(svc *application.EnrollmentService, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{Svc: svc, Logger: logger}
}

type checkoutRequest struct {
	CourseID string `json:"course_id" binding:"required"`
}

type verifyPaymentRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// Checkout POST /api/payment/checkout
func (h *PaymentHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.Svc.CreateCheckout(c.Request.Context(), middleware.UserID(c), req.CourseID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session_id": s.ID, "session_url": s.URL}, "checkout session created", nil)
}

// Verify POST /api/payment/verify
func (h *PaymentHandler) Verify(c *gin.Context) {
	var req verifyPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Svc.ConfirmCheckout(c.Request.Context(), middleware.UserID(c), req.SessionID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	msg := "purchase recorded"
	if res.AlreadyPurchased {
		msg = "course already purchased"
	}
	response.Success(c, http.StatusOK, res, msg, nil)
}

// Webhook POST /api/payment/webhook
// Non-2xx answers make the provider retry delivery.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes))
	if err != nil {
		response.Fail(c, apperr.Wrap(errWebhookBody, err))
		return
	}
	if err := h.Svc.HandleWebhook(c.Request.Context(), payload, c.GetHeader(stripeSignatureHeader)); err != nil {
		helpers.LogError(h.Logger, "payment webhook failed", err, logrus.Fields{"request_id": c.GetString("request_id")})
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"received": true}, "ok", nil)
}

// History GET /api/payment/history
func (h *PaymentHandler) History(c *gin.Context) {
	rows, err := h.Svc.History(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows, "purchase history", nil)
}
