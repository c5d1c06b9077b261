package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_RegistrationOTP(t *testing.T) {
	brand := Brand{AppName: "Edemy", CompanyName: "Edemy Inc"}
	data := NewData(brand, RegistrationOTP, "Ana", "ana@example.com",
		WithCode("042917"),
		WithExpiresAt(time.Now().Add(10*time.Minute)),
	)

	subject, text, html, err := Render(RegistrationOTP, data)
	require.NoError(t, err)
	assert.Equal(t, "Verify your Edemy account", subject)
	assert.Contains(t, text, "042917")
	assert.Contains(t, text, "10 minutes")
	assert.Contains(t, html, "042917")
	assert.Contains(t, html, "Edemy Inc")
}

func TestRender_EscapesHTML(t *testing.T) {
	data := NewData(Brand{AppName: "Edemy"}, PurchaseReceipt, "<b>x</b>", "x@example.com",
		WithCourse("Go <Basics>"), WithAmount("80.00 USD"), WithTime(time.Now()))

	_, text, html, err := Render(PurchaseReceipt, data)
	require.NoError(t, err)
	assert.Contains(t, text, "Go <Basics>")
	assert.NotContains(t, html, "<Basics>")
	assert.NotContains(t, html, "<b>x</b>")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, _, _, err := Render("nope", nil)
	assert.Error(t, err)
	assert.False(t, Known("nope"))
	assert.True(t, Known(PasswordResetOTP))
}
