package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs_MatchesKindAndCode(t *testing.T) {
	sentinel := Expired("otp_expired", "otp expired")
	wrapped := fmt.Errorf("verify: %w", Wrap(sentinel, errors.New("clock")))

	assert.True(t, errors.Is(wrapped, sentinel))
	assert.False(t, errors.Is(wrapped, Expired("token_expired", "token expired")))
}

func TestFrom_ForeignErrorBecomesInternal(t *testing.T) {
	e := From(errors.New("boom"))

	assert.Equal(t, KindInternal, e.Kind)
	assert.Equal(t, http.StatusInternalServerError, e.HTTPStatus())
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:   http.StatusBadRequest,
		KindUnauthorized: http.StatusUnauthorized,
		KindForbidden:    http.StatusForbidden,
		KindNotFound:     http.StatusNotFound,
		KindConflict:     http.StatusConflict,
		KindExpired:      http.StatusGone,
		KindExternal:     http.StatusBadGateway,
		KindInternal:     http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, New(kind, "x", "x").HTTPStatus(), string(kind))
	}
}

func TestWithStatus_OverridesDefault(t *testing.T) {
	base := Expired("token_expired", "session expired")
	e := base.WithStatus(http.StatusUnauthorized)

	assert.Equal(t, http.StatusUnauthorized, e.HTTPStatus())
	assert.Equal(t, http.StatusGone, base.HTTPStatus())
	assert.True(t, errors.Is(e, base))
}
