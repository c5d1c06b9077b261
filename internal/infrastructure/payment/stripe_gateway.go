package payment

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/oksasatya/go-ddd-lms/internal/application"
)

const (
	metaUserID   = "user_id"
	metaCourseID = "course_id"
)

// StripeGateway creates hosted Stripe Checkout sessions for course purchases.
type StripeGateway struct {
	API           *client.API
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

var _ application.PaymentGateway = (*StripeGateway)(nil)

func NewStripeGateway(secretKey, webhookSecret, frontendURL string) *StripeGateway {
	base := strings.TrimRight(frontendURL, "/")
	return &StripeGateway{
		API:           client.New(secretKey, nil),
		WebhookSecret: webhookSecret,
		SuccessURL:    base + "/payment/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     base + "/payment/cancel",
	}
}

func (g *StripeGateway) CreateCheckout(ctx context.Context, req application.CheckoutRequest) (*application.CheckoutSession, error) {
	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(req.CourseTitle),
	}
	if req.ImageURL != "" {
		product.Images = []*string{stripe.String(req.ImageURL)}
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(strings.ToLower(req.Currency)),
				ProductData: product,
				UnitAmount:  stripe.Int64(toMinorUnits(req.Amount)),
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL:        stripe.String(g.SuccessURL),
		CancelURL:         stripe.String(g.CancelURL),
		ClientReferenceID: stripe.String(req.UserID),
		Metadata: map[string]string{
			metaUserID:   req.UserID,
			metaCourseID: req.CourseID,
		},
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	params.Context = ctx

	s, err := g.API.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	return &application.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) GetSession(ctx context.Context, sessionID string) (*application.PaidSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := g.API.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, err
	}
	return toPaidSession(s), nil
}

// ParseWebhook only reacts to checkout.session.completed. The event API
// version is not pinned so dashboard upgrades do not break delivery.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*application.PaidSession, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, g.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, err
	}
	if ev.Type != stripe.EventTypeCheckoutSessionCompleted || ev.Data == nil {
		return nil, nil
	}
	var s stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
		return nil, err
	}
	return toPaidSession(&s), nil
}

func toPaidSession(s *stripe.CheckoutSession) *application.PaidSession {
	userID := s.Metadata[metaUserID]
	if userID == "" {
		userID = s.ClientReferenceID
	}
	return &application.PaidSession{
		ID:       s.ID,
		Paid:     s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		UserID:   userID,
		CourseID: s.Metadata[metaCourseID],
		Amount:   float64(s.AmountTotal) / 100,
		Currency: strings.ToUpper(string(s.Currency)),
	}
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
