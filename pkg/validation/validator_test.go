package validation

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"pwd"`
	Code     string  `json:"code" validate:"otp"`
	Role     string  `json:"role" validate:"omitempty,role"`
	Discount float64 `json:"discount" validate:"percent"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	Configure(v)
	return v
}

func TestToDetails_UsesJSONNamesAndAliases(t *testing.T) {
	err := newValidator().Struct(sampleRequest{
		Email:    "not-an-email",
		Password: "short",
		Code:     "12a",
		Role:     "admin",
		Discount: 120,
	})
	require.Error(t, err)

	d := ToDetails(err)
	assert.Equal(t, "must be a valid email", d["email"])
	assert.Equal(t, "min length 8", d["password"])
	assert.Equal(t, "must be a 6-digit code", d["code"])
	assert.Equal(t, "must be one of: student, educator", d["role"])
	assert.Equal(t, "must be between 0 and 100", d["discount"])
}

func TestToDetails_ValidStruct(t *testing.T) {
	err := newValidator().Struct(sampleRequest{
		Email:    "a@b.io",
		Password: "longenough",
		Code:     "123456",
		Discount: 20,
	})
	assert.NoError(t, err)
	assert.Nil(t, ToDetails(err))
}

func TestToDetails_SyntaxError(t *testing.T) {
	var dst map[string]any
	err := json.Unmarshal([]byte("{"), &dst)

	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
}
