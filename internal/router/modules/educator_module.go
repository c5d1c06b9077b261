package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-lms/internal/container"
	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	handlers "github.com/oksasatya/go-ddd-lms/internal/interface/http"
	"github.com/oksasatya/go-ddd-lms/internal/interface/middleware"
)

type EducatorModule struct {
	Handler *handlers.EducatorHandler
	c       *container.Container
}

func NewEducatorModule(c *container.Container) *EducatorModule {
	return &EducatorModule{Handler: handlers.NewEducatorHandler(c.Dashboard), c: c}
}

func (m *EducatorModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/educator", middleware.Auth(m.c.Auth, m.c.JWT), middleware.RequireRole(entity.RoleEducator))
	{
		g.GET("/dashboard", m.Handler.Dashboard)
		g.GET("/students", m.Handler.Students)
	}
}
