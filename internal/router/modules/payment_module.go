package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-lms/internal/container"
	handlers "github.com/oksasatya/go-ddd-lms/internal/interface/http"
	"github.com/oksasatya/go-ddd-lms/internal/interface/middleware"
)

// PaymentModule serves /api/payment. The webhook is unauthenticated and
// verified by signature instead.
type PaymentModule struct {
	Handler *handlers.PaymentHandler
	c       *container.Container
}

func NewPaymentModule(c *container.Container) *PaymentModule {
	return &PaymentModule{Handler: handlers.NewPaymentHandler(c.Enrollment, c.Logger), c: c}
}

func (m *PaymentModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/payment")
	g.POST("/webhook", m.Handler.Webhook)

	auth := g.Group("", middleware.Auth(m.c.Auth, m.c.JWT))
	{
		auth.POST("/checkout", middleware.RateLimit(m.c.Redis, 20, time.Minute, middleware.KeyByUserID(), nil), m.Handler.Checkout)
		auth.POST("/verify", m.Handler.Verify)
		auth.GET("/history", m.Handler.History)
	}
}
