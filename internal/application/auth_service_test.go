package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/pkg/apperr"
	"github.com/oksasatya/go-ddd-lms/pkg/helpers"
)

func otherCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}

func register(t *testing.T, env *testEnv, email string) string {
	t.Helper()
	id, err := env.auth.RequestRegistrationOTP(context.Background(), RegisterInput{
		Name:     "Ana",
		Email:    email,
		Password: "password123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	return id
}

func TestRegisterAndVerify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id := register(t, env, "Ana@Example.com ")
	code := env.mail.lastCode(t)

	_, err := env.auth.VerifyOTP(ctx, id, otherCode(code))
	assert.True(t, errors.Is(err, ErrOTPMismatch))

	sess, err := env.auth.VerifyOTP(ctx, id, code)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.True(t, sess.User.IsVerified)
	assert.Equal(t, "ana@example.com", sess.User.Email)
	assert.Equal(t, entity.RoleStudent, sess.User.Role)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), sess.ExpiresAt, time.Minute)

	stored, err := env.store.Users().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, stored.OTPCode)
	assert.Nil(t, stored.OTPExpiresAt)

	_, err = env.auth.VerifyOTP(ctx, id, code)
	assert.True(t, errors.Is(err, ErrAlreadyVerified))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestVerifyOTP_ExpiredBeforeMismatch(t *testing.T) {
	env := newTestEnv(t)
	id := register(t, env, "late@example.com")
	code := env.mail.lastCode(t)

	env.auth.Now = func() time.Time { return time.Now().Add(11 * time.Minute) }

	_, err := env.auth.VerifyOTP(context.Background(), id, code)
	assert.True(t, errors.Is(err, ErrOTPExpired))
	_, err = env.auth.VerifyOTP(context.Background(), id, otherCode(code))
	assert.True(t, errors.Is(err, ErrOTPExpired))
}

func TestVerifyOTP_BurnedAfterRepeatedMisses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := register(t, env, "guess@example.com")
	code := env.mail.lastCode(t)

	for i := 1; i < MaxOTPAttempts; i++ {
		_, err := env.auth.VerifyOTP(ctx, id, otherCode(code))
		require.True(t, errors.Is(err, ErrOTPMismatch), "attempt %d", i)
	}
	stored, err := env.store.Users().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, MaxOTPAttempts-1, stored.OTPAttempts)

	_, err = env.auth.VerifyOTP(ctx, id, otherCode(code))
	assert.True(t, errors.Is(err, ErrOTPAttempts))
	assert.Equal(t, apperr.KindExpired, apperr.KindOf(err))

	// the right code no longer works once burned
	_, err = env.auth.VerifyOTP(ctx, id, code)
	assert.True(t, errors.Is(err, ErrOTPExpired))

	require.NoError(t, env.auth.ResendOTP(ctx, id))
	fresh := env.mail.lastCode(t)
	stored, err = env.store.Users().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, stored.OTPAttempts)
	_, err = env.auth.VerifyOTP(ctx, id, fresh)
	assert.NoError(t, err)
}

func TestVerifyResetOTP_BurnedAfterRepeatedMisses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.newUser(t, "erin", entity.RoleStudent)

	require.NoError(t, env.auth.ForgotPassword(ctx, "erin@example.com"))
	code := env.mail.lastCode(t)
	for i := 1; i < MaxOTPAttempts; i++ {
		_, _, err := env.auth.VerifyResetOTP(ctx, "erin@example.com", otherCode(code))
		require.True(t, errors.Is(err, ErrOTPMismatch), "attempt %d", i)
	}
	_, _, err := env.auth.VerifyResetOTP(ctx, "erin@example.com", otherCode(code))
	assert.True(t, errors.Is(err, ErrOTPAttempts))
	_, _, err = env.auth.VerifyResetOTP(ctx, "erin@example.com", code)
	assert.True(t, errors.Is(err, ErrOTPExpired))

	require.NoError(t, env.auth.ForgotPassword(ctx, "erin@example.com"))
	_, _, err = env.auth.VerifyResetOTP(ctx, "erin@example.com", env.mail.lastCode(t))
	assert.NoError(t, err)
}

func TestVerifyOTP_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.auth.VerifyOTP(context.Background(), "missing", "123456")
	assert.True(t, errors.Is(err, ErrUserNotFound))
}

func TestRegister_DuplicateVerified(t *testing.T) {
	env := newTestEnv(t)
	env.newUser(t, "taken", entity.RoleStudent)

	_, err := env.auth.RequestRegistrationOTP(context.Background(), RegisterInput{
		Name: "x", Email: "taken@example.com", Password: "password123",
	})
	assert.True(t, errors.Is(err, ErrDuplicateUser))
}

func TestRegister_UnverifiedIsRefreshed(t *testing.T) {
	env := newTestEnv(t)
	first := register(t, env, "again@example.com")

	second, err := env.auth.RequestRegistrationOTP(context.Background(), RegisterInput{
		Name: "Ana B", Email: "again@example.com", Password: "another-pass", Role: entity.RoleEducator,
	})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	u, err := env.store.Users().GetByID(context.Background(), first)
	require.NoError(t, err)
	assert.Equal(t, "Ana B", u.Name)
	assert.Equal(t, entity.RoleEducator, u.Role)
	assert.True(t, helpers.CompareHashAndPassword(u.Password, "another-pass"))
	assert.Len(t, env.mail.jobs, 2)
}

func TestRegister_EmailFailureKeepsPendingRecord(t *testing.T) {
	env := newTestEnv(t)
	env.mail.err = errBoom

	_, err := env.auth.RequestRegistrationOTP(context.Background(), RegisterInput{
		Name: "Ana", Email: "down@example.com", Password: "password123",
	})
	assert.True(t, errors.Is(err, ErrEmailDelivery))
	assert.Equal(t, apperr.KindExternal, apperr.KindOf(err))

	u, err := env.store.Users().GetByEmail(context.Background(), "down@example.com")
	require.NoError(t, err)
	assert.False(t, u.IsVerified)
	assert.NotEmpty(t, u.OTPCode)

	env.mail.err = nil
	require.NoError(t, env.auth.ResendOTP(context.Background(), u.ID))
	_, err = env.auth.VerifyOTP(context.Background(), u.ID, env.mail.lastCode(t))
	assert.NoError(t, err)
}

func TestResendOTP_Verified(t *testing.T) {
	env := newTestEnv(t)
	u := env.newUser(t, "done", entity.RoleStudent)
	assert.True(t, errors.Is(env.auth.ResendOTP(context.Background(), u.ID), ErrAlreadyVerified))
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.newUser(t, "bob", entity.RoleEducator)

	res, err := env.auth.Login(ctx, "BOB@example.com", "password123")
	require.NoError(t, err)
	require.NotNil(t, res.Session)
	assert.False(t, res.VerificationRequired)

	claims, err := env.auth.JWT.Parse(res.Session.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "educator", claims.Role)

	_, err = env.auth.Login(ctx, "bob@example.com", "wrong-password")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
	_, err = env.auth.Login(ctx, "nobody@example.com", "password123")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestLogin_UnverifiedNeedsVerification(t *testing.T) {
	env := newTestEnv(t)
	id := register(t, env, "pending@example.com")

	res, err := env.auth.Login(context.Background(), "pending@example.com", "password123")
	require.NoError(t, err)
	assert.True(t, res.VerificationRequired)
	assert.Equal(t, id, res.UserID)
	assert.Nil(t, res.Session)
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.newUser(t, "carol", entity.RoleStudent)

	require.NoError(t, env.auth.ForgotPassword(ctx, "carol@example.com"))
	code := env.mail.lastCode(t)

	_, _, err := env.auth.VerifyResetOTP(ctx, "carol@example.com", otherCode(code))
	assert.True(t, errors.Is(err, ErrOTPMismatch))

	token, exp, err := env.auth.VerifyResetOTP(ctx, "carol@example.com", code)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, time.Minute)

	stored, _ := env.store.Users().GetByID(ctx, u.ID)
	assert.Equal(t, helpers.HashToken(token), stored.ResetTokenHash)
	assert.NotEqual(t, token, stored.ResetTokenHash)

	assert.True(t, errors.Is(env.auth.ResetPassword(ctx, token, "short"), ErrWeakPassword))
	require.NoError(t, env.auth.ResetPassword(ctx, token, "brand-new-pass"))
	assert.True(t, errors.Is(env.auth.ResetPassword(ctx, token, "brand-new-pass"), ErrResetTokenInvalid))

	_, err = env.auth.Login(ctx, "carol@example.com", "brand-new-pass")
	assert.NoError(t, err)
}

func TestResetPassword_Expired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.newUser(t, "dave", entity.RoleStudent)

	require.NoError(t, env.auth.ForgotPassword(ctx, "dave@example.com"))
	token, _, err := env.auth.VerifyResetOTP(ctx, "dave@example.com", env.mail.lastCode(t))
	require.NoError(t, err)

	env.auth.Now = func() time.Time { return time.Now().Add(16 * time.Minute) }
	assert.True(t, errors.Is(env.auth.ResetPassword(ctx, token, "brand-new-pass"), ErrResetTokenExpired))
}

func TestForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	env := newTestEnv(t)
	assert.NoError(t, env.auth.ForgotPassword(context.Background(), "ghost@example.com"))
	assert.Empty(t, env.mail.jobs)
}

func TestAuthenticate_LogoutAndRefresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.newUser(t, "erin", entity.RoleStudent)

	res, err := env.auth.Login(ctx, "erin@example.com", "password123")
	require.NoError(t, err)

	p, err := env.auth.Authenticate(ctx, res.Session.Token)
	require.NoError(t, err)
	assert.Equal(t, "erin", p.User.Name)

	next, err := env.auth.Refresh(ctx, p.Claims)
	require.NoError(t, err)
	assert.NotEqual(t, res.Session.Token, next.Token)

	_, err = env.auth.Authenticate(ctx, res.Session.Token)
	assert.True(t, errors.Is(err, ErrSessionRevoked))

	p2, err := env.auth.Authenticate(ctx, next.Token)
	require.NoError(t, err)
	env.auth.Logout(ctx, p2.Claims)
	_, err = env.auth.Authenticate(ctx, next.Token)
	assert.True(t, errors.Is(err, ErrSessionRevoked))
}

func TestRefresh_DeletedUser(t *testing.T) {
	env := newTestEnv(t)
	_, claims, err := env.auth.JWT.Generate("gone", "student")
	require.NoError(t, err)

	_, err = env.auth.Refresh(context.Background(), claims)
	assert.True(t, errors.Is(err, helpers.ErrTokenInvalid))
}
