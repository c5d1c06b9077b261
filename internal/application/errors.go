package application

import (
	"errors"
	"fmt"

	"github.com/oksasatya/go-ddd-lms/internal/domain/repository"
	"github.com/oksasatya/go-ddd-lms/pkg/apperr"
	"github.com/oksasatya/go-ddd-lms/pkg/validation"
)

var (
	ErrDuplicateUser      = apperr.Conflict("duplicate_user", "an account with this email already exists")
	ErrUserNotFound       = apperr.NotFound("user_not_found", "user not found")
	ErrAlreadyVerified    = apperr.Conflict("already_verified", "account is already verified")
	ErrOTPExpired         = apperr.Expired("otp_expired", "verification code has expired")
	ErrOTPMismatch        = apperr.Validation("otp_mismatch", "verification code does not match")
	ErrOTPAttempts        = apperr.Expired("otp_attempts_exceeded", "too many wrong codes, request a new one")
	ErrInvalidCredentials = apperr.Unauthorized("invalid_credentials", "invalid email or password")
	ErrResetTokenInvalid  = apperr.Validation("reset_token_invalid", "reset token is invalid")
	ErrResetTokenExpired  = apperr.Expired("reset_token_expired", "reset token has expired")
	ErrWeakPassword       = apperr.Validation("weak_password", fmt.Sprintf("password must be at least %d characters", validation.MinPasswordLength))
	ErrSessionRevoked     = apperr.Unauthorized("session_revoked", "session has been signed out")
	ErrEmailDelivery      = apperr.External("email_delivery_failed", "could not send email", nil)

	ErrCourseNotFound  = apperr.NotFound("course_not_found", "course not found")
	ErrChapterNotFound = apperr.NotFound("chapter_not_found", "chapter not found")
	ErrLectureNotFound = apperr.NotFound("lecture_not_found", "lecture not found")
	ErrNotOwner        = apperr.Forbidden("not_owner", "only the course educator can change this resource")
	ErrEducatorOnly    = apperr.Forbidden("educator_only", "educator role required")
	ErrLectureOrder    = apperr.Conflict("lecture_order_taken", "another lecture in this chapter already uses this order")
	ErrMediaUpload     = apperr.External("media_upload_failed", "could not upload file", nil)
	ErrMediaDisabled   = apperr.External("media_unavailable", "media storage is not configured", nil)
	ErrUnsupportedFile = apperr.Validation("unsupported_file", "unsupported file type")
	ErrFileTooLarge    = apperr.Validation("file_too_large", "file is too large")

	ErrNotEnrolled       = apperr.Forbidden("not_enrolled", "enroll in the course first")
	ErrCourseUnavailable = apperr.NotFound("course_unavailable", "course is not available")
	ErrCourseNotFree     = apperr.Validation("course_not_free", "course requires payment")
	ErrCourseIsFree      = apperr.Validation("course_is_free", "course is free, enroll directly")
	ErrAlreadyPurchased  = apperr.Conflict("already_purchased", "course already purchased")
	ErrPaymentNotPaid    = apperr.Validation("payment_not_completed", "payment has not been completed")
	ErrPaymentMismatch   = apperr.Forbidden("payment_mismatch", "payment belongs to another user")
	ErrPaymentProvider   = apperr.External("payment_provider_failed", "payment provider request failed", nil)
	ErrPaymentDisabled   = apperr.External("payments_unavailable", "payments are not configured", nil)
)

// notFound maps repository misses onto a domain specific not-found error.
func notFound(err error, domainErr *apperr.Error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domainErr
	}
	return err
}
