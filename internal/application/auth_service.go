package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/internal/domain/repository"
	"github.com/oksasatya/go-ddd-lms/pkg/apperr"
	"github.com/oksasatya/go-ddd-lms/pkg/helpers"
	"github.com/oksasatya/go-ddd-lms/pkg/mailer"
	"github.com/oksasatya/go-ddd-lms/pkg/mailer/templates"
	"github.com/oksasatya/go-ddd-lms/pkg/validation"
)

const resetTokenBytes = 32

// MaxOTPAttempts wrong guesses burn the live code.
const MaxOTPAttempts = 5

type AuthService struct {
	Users    repository.UserRepository
	JWT      *helpers.JWTManager
	Revoker  TokenRevoker
	Mail     Mailer
	Brand    templates.Brand
	OTPTTL   time.Duration
	ResetTTL time.Duration
	Logger   *logrus.Logger
	Now      func() time.Time
}

func NewAuthService(users repository.UserRepository, jwt *helpers.JWTManager, revoker TokenRevoker, mail Mailer,
	brand templates.Brand, otpTTL, resetTTL time.Duration, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Users:    users,
		JWT:      jwt,
		Revoker:  revoker,
		Mail:     mail,
		Brand:    brand,
		OTPTTL:   otpTTL,
		ResetTTL: resetTTL,
		Logger:   logger,
		Now:      time.Now,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     entity.Role
}

// Session is a signed token plus the user it was issued for.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

// LoginResult carries either a session or, for unverified accounts, the
// user id needed to resume the OTP flow.
type LoginResult struct {
	Session              *Session
	VerificationRequired bool
	UserID               string
}

// Principal is the authenticated caller of a request.
type Principal struct {
	User   *entity.User
	Claims *helpers.Claims
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RequestRegistrationOTP creates or refreshes an unverified account and
// emails it a verification code. The code is never returned.
func (s *AuthService) RequestRegistrationOTP(ctx context.Context, in RegisterInput) (string, error) {
	email := normalizeEmail(in.Email)
	if len(in.Password) < validation.MinPasswordLength {
		return "", ErrWeakPassword
	}
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return "", apperr.Internal("hash password", err)
	}
	role := in.Role
	if role == "" {
		role = entity.RoleStudent
	}

	u, err := s.Users.GetByEmail(ctx, email)
	switch {
	case err == nil && u.IsVerified:
		return "", ErrDuplicateUser
	case err == nil:
		u.Name = in.Name
		u.Password = hash
		u.Role = role
		if err := s.assignOTP(u); err != nil {
			return "", err
		}
		if err := s.Users.Update(ctx, u); err != nil {
			return "", err
		}
	case errors.Is(err, repository.ErrNotFound):
		u = &entity.User{Name: in.Name, Email: email, Password: hash, Role: role}
		if err := s.assignOTP(u); err != nil {
			return "", err
		}
		if err := s.Users.Create(ctx, u); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return "", ErrDuplicateUser
			}
			return "", err
		}
	default:
		return "", err
	}

	if err := s.sendOTP(ctx, u, templates.RegistrationOTP, u.OTPCode, *u.OTPExpiresAt); err != nil {
		return "", err
	}
	helpers.LogInfo(s.Logger, "registration otp issued", logrus.Fields{"user_id": u.ID})
	return u.ID, nil
}

// VerifyOTP succeeds only when code matches and the code has not expired.
func (s *AuthService) VerifyOTP(ctx context.Context, userID, code string) (*Session, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if u.IsVerified {
		return nil, ErrAlreadyVerified
	}
	if err := checkCode(u.OTPCode, u.OTPExpiresAt, code, s.Now()); err != nil {
		return nil, s.recordMiss(ctx, u, err, u.ClearOTP)
	}

	u.ClearOTP()
	u.IsVerified = true
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	return s.issueSession(u)
}

// ResendOTP issues a fresh code while the account is still unverified.
func (s *AuthService) ResendOTP(ctx context.Context, userID string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return notFound(err, ErrUserNotFound)
	}
	if u.IsVerified {
		return ErrAlreadyVerified
	}
	if err := s.assignOTP(u); err != nil {
		return err
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return err
	}
	return s.sendOTP(ctx, u, templates.RegistrationOTP, u.OTPCode, *u.OTPExpiresAt)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}

	if !u.IsVerified {
		// a live code is kept so the client can resume where it stopped
		if u.OTPExpiresAt == nil || !s.Now().Before(*u.OTPExpiresAt) {
			if err := s.assignOTP(u); err != nil {
				return nil, err
			}
			if err := s.Users.Update(ctx, u); err != nil {
				return nil, err
			}
			if err := s.sendOTP(ctx, u, templates.RegistrationOTP, u.OTPCode, *u.OTPExpiresAt); err != nil {
				helpers.LogError(s.Logger, "resend otp on login failed", err, logrus.Fields{"user_id": u.ID})
			}
		}
		return &LoginResult{VerificationRequired: true, UserID: u.ID}, nil
	}

	sess, err := s.issueSession(u)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Session: sess, UserID: u.ID}, nil
}

// ForgotPassword never reveals whether the email belongs to an account.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	code, err := helpers.GenOTPCode()
	if err != nil {
		return apperr.Internal("generate otp", err)
	}
	exp := s.Now().Add(s.OTPTTL)
	u.ResetOTPCode = code
	u.ResetOTPExpiry = &exp
	u.OTPAttempts = 0
	u.ResetTokenHash = ""
	u.ResetTokenExp = nil
	if err := s.Users.Update(ctx, u); err != nil {
		return err
	}
	if err := s.sendOTP(ctx, u, templates.PasswordResetOTP, code, exp); err != nil {
		helpers.LogError(s.Logger, "send reset otp failed", err, logrus.Fields{"user_id": u.ID})
	}
	return nil
}

// VerifyResetOTP exchanges a valid reset code for a one-time reset token.
// Only the token hash is stored.
func (s *AuthService) VerifyResetOTP(ctx context.Context, email, code string) (string, time.Time, error) {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", time.Time{}, ErrOTPMismatch
		}
		return "", time.Time{}, err
	}
	now := s.Now()
	if err := checkCode(u.ResetOTPCode, u.ResetOTPExpiry, code, now); err != nil {
		return "", time.Time{}, s.recordMiss(ctx, u, err, func() {
			u.ResetOTPCode = ""
			u.ResetOTPExpiry = nil
		})
	}

	token, err := helpers.GenToken(resetTokenBytes)
	if err != nil {
		return "", time.Time{}, apperr.Internal("generate reset token", err)
	}
	exp := now.Add(s.ResetTTL)
	u.ResetOTPCode = ""
	u.ResetOTPExpiry = nil
	u.OTPAttempts = 0
	u.ResetTokenHash = helpers.HashToken(token)
	u.ResetTokenExp = &exp
	if err := s.Users.Update(ctx, u); err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// ResetPassword consumes the reset token exactly once.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < validation.MinPasswordLength {
		return ErrWeakPassword
	}
	if token == "" {
		return ErrResetTokenInvalid
	}
	u, err := s.Users.GetByResetTokenHash(ctx, helpers.HashToken(token))
	if err != nil {
		return notFound(err, ErrResetTokenInvalid)
	}
	if u.ResetTokenExp == nil || !s.Now().Before(*u.ResetTokenExp) {
		u.ClearReset()
		if err := s.Users.Update(ctx, u); err != nil {
			helpers.LogError(s.Logger, "clear expired reset token failed", err, logrus.Fields{"user_id": u.ID})
		}
		return ErrResetTokenExpired
	}

	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal("hash password", err)
	}
	u.Password = hash
	u.ClearReset()
	return s.Users.Update(ctx, u)
}

// Authenticate verifies token, rejects revoked sessions and loads the user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Principal, error) {
	claims, err := s.JWT.Parse(token)
	if err != nil {
		return nil, err
	}
	if s.Revoker != nil {
		revoked, err := s.Revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			helpers.LogError(s.Logger, "revocation lookup failed", err, logrus.Fields{"jti": claims.ID})
		} else if revoked {
			return nil, ErrSessionRevoked
		}
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, helpers.ErrTokenInvalid
		}
		return nil, err
	}
	return &Principal{User: u, Claims: claims}, nil
}

// Refresh re-issues a token for the same subject and role and revokes the old one.
func (s *AuthService) Refresh(ctx context.Context, claims *helpers.Claims) (*Session, error) {
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, helpers.ErrTokenInvalid
		}
		return nil, err
	}
	token, next, err := s.JWT.Generate(u.ID, claims.Role)
	if err != nil {
		return nil, apperr.Internal("sign token", err)
	}
	s.revoke(ctx, claims)
	return &Session{Token: token, ExpiresAt: next.Expiry(), User: u}, nil
}

func (s *AuthService) Logout(ctx context.Context, claims *helpers.Claims) {
	s.revoke(ctx, claims)
}

func (s *AuthService) revoke(ctx context.Context, claims *helpers.Claims) {
	if s.Revoker == nil || claims == nil || claims.ID == "" {
		return
	}
	if err := s.Revoker.Revoke(ctx, claims.ID, claims.Expiry()); err != nil {
		helpers.LogError(s.Logger, "revoke session failed", err, logrus.Fields{"jti": claims.ID})
	}
}

func (s *AuthService) issueSession(u *entity.User) (*Session, error) {
	token, claims, err := s.JWT.Generate(u.ID, string(u.Role))
	if err != nil {
		return nil, apperr.Internal("sign token", err)
	}
	return &Session{Token: token, ExpiresAt: claims.Expiry(), User: u}, nil
}

func (s *AuthService) assignOTP(u *entity.User) error {
	code, err := helpers.GenOTPCode()
	if err != nil {
		return apperr.Internal("generate otp", err)
	}
	exp := s.Now().Add(s.OTPTTL)
	u.OTPCode = code
	u.OTPExpiresAt = &exp
	u.OTPAttempts = 0
	return nil
}

// recordMiss counts a wrong code and burns the live code once the account
// reaches MaxOTPAttempts. Other check failures pass through unchanged.
func (s *AuthService) recordMiss(ctx context.Context, u *entity.User, checkErr error, burn func()) error {
	if !errors.Is(checkErr, ErrOTPMismatch) {
		return checkErr
	}
	u.OTPAttempts++
	if u.OTPAttempts >= MaxOTPAttempts {
		burn()
		u.OTPAttempts = 0
		checkErr = ErrOTPAttempts
		helpers.LogInfo(s.Logger, "otp burned after repeated misses", logrus.Fields{"user_id": u.ID})
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return err
	}
	return checkErr
}

func (s *AuthService) sendOTP(ctx context.Context, u *entity.User, tmpl, code string, exp time.Time) error {
	if s.Mail == nil {
		return nil
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: tmpl,
		Data: templates.NewData(s.Brand, tmpl, u.Name, u.Email,
			templates.WithCode(code),
			templates.WithExpiresAt(exp),
		),
	}
	if err := s.Mail.Dispatch(ctx, job); err != nil {
		return apperr.Wrap(ErrEmailDelivery, err)
	}
	return nil
}

// checkCode tests expiry before comparing so a stale code never reads as a typo.
func checkCode(stored string, exp *time.Time, supplied string, now time.Time) error {
	if stored == "" || exp == nil || !now.Before(*exp) {
		return ErrOTPExpired
	}
	if !helpers.CodesEqual(stored, supplied) {
		return ErrOTPMismatch
	}
	return nil
}
