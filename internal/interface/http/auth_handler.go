package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-lms/internal/application"
	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-lms/pkg/helpers"
	"github.com/oksasatya/go-ddd-lms/pkg/response"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Cookies *helpers.Manager
	Logger  *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, cookies *helpers.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Cookies: cookies, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Role     string `json:"role" binding:"omitempty,role"`
}

type verifyOTPRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Code   string `json:"code" binding:"required,otp"`
}

type resendOTPRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type verifyResetOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,otp"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *entity.User `json:"user"`
}

func (h *AuthHandler) startSession(c *gin.Context, s *application.Session, msg string) {
	h.Cookies.SetSession(c, s.Token, s.ExpiresAt)
	response.Success(c, http.StatusOK, sessionResponse{Token: s.Token, ExpiresAt: s.ExpiresAt, User: s.User}, msg, nil)
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	uid, err := h.Svc.RequestRegistrationOTP(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     entity.ParseRole(req.Role),
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user_id": uid}, "verification code sent", nil)
}

// VerifyOTP POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.Svc.VerifyOTP(c.Request.Context(), req.UserID, req.Code)
	if err != nil {
		response.Fail(c, err)
		return
	}
	h.startSession(c, s, "account verified")
}

// ResendOTP POST /api/auth/resend-otp
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req resendOTPRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Svc.ResendOTP(c.Request.Context(), req.UserID); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sent": true}, "verification code sent", nil)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if res.VerificationRequired {
		response.Success(c, http.StatusOK, gin.H{"verification_required": true, "user_id": res.UserID}, "verify your email to continue", nil)
		return
	}
	h.startSession(c, res.Session, "login successful")
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Svc.Logout(c.Request.Context(), middleware.Claims(c))
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

// Refresh POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	s, err := h.Svc.Refresh(c.Request.Context(), middleware.Claims(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	h.startSession(c, s, "token refreshed")
}

// ForgotPassword POST /api/auth/forgot-password
// The reply is the same whether or not the account exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sent": true}, "if the account exists, a reset code has been sent", nil)
}

// VerifyResetOTP POST /api/auth/verify-reset-otp
func (h *AuthHandler) VerifyResetOTP(c *gin.Context) {
	var req verifyResetOTPRequest
	if !bindJSON(c, &req) {
		return
	}
	token, exp, err := h.Svc.VerifyResetOTP(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reset_token": token, "expires_at": exp}, "code verified", nil)
}

// ResetPassword POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reset": true}, "password updated", nil)
}
