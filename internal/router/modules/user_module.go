package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-lms/internal/container"
	handlers "github.com/oksasatya/go-ddd-lms/internal/interface/http"
	"github.com/oksasatya/go-ddd-lms/internal/interface/middleware"
)

// UserModule serves /api/user for any signed-in account.
type UserModule struct {
	Handler *handlers.UserHandler
	c       *container.Container
}

func NewUserModule(c *container.Container, h *handlers.UserHandler) *UserModule {
	return &UserModule{Handler: h, c: c}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/user")
	g.Use(
		middleware.Auth(m.c.Auth, m.c.JWT),
		middleware.RateLimit(m.c.Redis, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		g.GET("/profile", m.Handler.GetProfile)
		g.PUT("/profile", m.Handler.UpdateProfile)
		g.POST("/avatar", m.Handler.UploadAvatar)
		g.GET("/enrolled", m.Handler.Enrolled)
		g.GET("/purchases", m.Handler.Purchases)
		g.GET("/progress", m.Handler.ProgressAll)
	}
}
