package entity

import (
	"slices"
	"time"
)

type Role string

const (
	RoleStudent  Role = "student"
	RoleEducator Role = "educator"
)

// ParseRole maps free text onto a role, defaulting to student.
func ParseRole(s string) Role {
	if Role(s) == RoleEducator {
		return RoleEducator
	}
	return RoleStudent
}

// User is the aggregate root for accounts.
// Password, OTP and reset fields hold secrets and are never serialized.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Password   string    `json:"-"`
	Name       string    `json:"name"`
	Role       Role      `json:"role"`
	Bio        string    `json:"bio"`
	AvatarURL  string    `json:"avatar_url"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	OTPCode        string     `json:"-"`
	OTPExpiresAt   *time.Time `json:"-"`
	OTPAttempts    int        `json:"-"` // failed guesses against the live registration or reset code
	ResetOTPCode   string     `json:"-"`
	ResetOTPExpiry *time.Time `json:"-"`
	ResetTokenHash string     `json:"-"`
	ResetTokenExp  *time.Time `json:"-"`

	EnrolledCourses []string `json:"enrolled_courses"`
}

func (u *User) IsEducator() bool { return u.Role == RoleEducator }

func (u *User) IsEnrolled(courseID string) bool {
	return slices.Contains(u.EnrolledCourses, courseID)
}

// ClearOTP drops the registration code.
func (u *User) ClearOTP() {
	u.OTPCode = ""
	u.OTPExpiresAt = nil
	u.OTPAttempts = 0
}

// ClearReset drops every password-reset artifact.
func (u *User) ClearReset() {
	u.ResetOTPCode = ""
	u.ResetOTPExpiry = nil
	u.ResetTokenHash = ""
	u.ResetTokenExp = nil
}
