package payment

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
)

const testSecret = "whsec_test"

func signed(t *testing.T, body string) ([]byte, string) {
	t.Helper()
	p := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: []byte(body),
		Secret:  testSecret,
	})
	return p.Payload, p.Header
}

func newGateway() *StripeGateway {
	return NewStripeGateway("sk_test_dummy", testSecret, "https://lms.example.com/")
}

func TestNewStripeGateway_URLs(t *testing.T) {
	g := newGateway()
	assert.Equal(t, "https://lms.example.com/payment/success?session_id={CHECKOUT_SESSION_ID}", g.SuccessURL)
	assert.Equal(t, "https://lms.example.com/payment/cancel", g.CancelURL)
}

func TestParseWebhook_CheckoutCompleted(t *testing.T) {
	body := `{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_test_1",
			"object": "checkout.session",
			"payment_status": "paid",
			"amount_total": 8000,
			"currency": "usd",
			"client_reference_id": "user-1",
			"metadata": {"user_id": "user-1", "course_id": "course-9"}
		}}
	}`
	payload, header := signed(t, body)

	s, err := newGateway().ParseWebhook(payload, header)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "cs_test_1", s.ID)
	assert.True(t, s.Paid)
	assert.Equal(t, "user-1", s.UserID)
	assert.Equal(t, "course-9", s.CourseID)
	assert.InDelta(t, 80.0, s.Amount, 0.001)
	assert.Equal(t, "USD", s.Currency)
}

func TestParseWebhook_FallsBackToClientReference(t *testing.T) {
	body := `{"id":"evt_2","type":"checkout.session.completed","data":{"object":{
		"id":"cs_2","payment_status":"unpaid","client_reference_id":"user-7",
		"metadata":{"course_id":"c-1"}}}}`
	payload, header := signed(t, body)

	s, err := newGateway().ParseWebhook(payload, header)
	require.NoError(t, err)
	assert.Equal(t, "user-7", s.UserID)
	assert.False(t, s.Paid)
}

func TestParseWebhook_IgnoresOtherEvents(t *testing.T) {
	payload, header := signed(t, `{"id":"evt_3","type":"payment_intent.created","data":{"object":{}}}`)

	s, err := newGateway().ParseWebhook(payload, header)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestParseWebhook_BadSignature(t *testing.T) {
	payload, _ := signed(t, `{"id":"evt_4","type":"checkout.session.completed"}`)

	_, err := newGateway().ParseWebhook(payload, fmt.Sprintf("t=%d,v1=deadbeef", 1))
	assert.Error(t, err)
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(8000), toMinorUnits(80))
	assert.Equal(t, int64(1999), toMinorUnits(19.99))
	assert.Equal(t, int64(0), toMinorUnits(0))
}
