package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-lms/internal/container"
	handlers "github.com/oksasatya/go-ddd-lms/internal/interface/http"
	"github.com/oksasatya/go-ddd-lms/internal/interface/middleware"
)

// AuthModule serves /api/auth.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Profile *handlers.UserHandler
	c       *container.Container
}

func NewAuthModule(c *container.Container, profile *handlers.UserHandler) *AuthModule {
	return &AuthModule{
		Handler: handlers.NewAuthHandler(c.Auth, c.Cookies, c.Logger),
		Profile: profile,
		c:       c,
	}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := m.c.Redis
	// Credential and code endpoints are limited per IP and route.
	strict := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	codes := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	mailers := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)

	g := rg.Group("/auth")
	g.POST("/register", mailers, m.Handler.Register)
	g.POST("/verify-otp", codes, m.Handler.VerifyOTP)
	g.POST("/resend-otp", mailers, m.Handler.ResendOTP)
	g.POST("/login", strict, m.Handler.Login)
	g.POST("/forgot-password", mailers, m.Handler.ForgotPassword)
	g.POST("/verify-reset-otp", codes, m.Handler.VerifyResetOTP)
	g.POST("/reset-password", strict, m.Handler.ResetPassword)

	auth := g.Group("")
	auth.Use(middleware.Auth(m.c.Auth, m.c.JWT))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.POST("/refresh", strict, m.Handler.Refresh)
		auth.GET("/me", m.Profile.GetProfile)
	}
}
