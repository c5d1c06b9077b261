package router

import (
	"github.com/oksasatya/go-ddd-lms/internal/container"
	handlers "github.com/oksasatya/go-ddd-lms/internal/interface/http"
	"github.com/oksasatya/go-ddd-lms/internal/router/modules"
)

// InitModules adds every feature module to the registry. Call once at startup.
func InitModules(r *Registry, c *container.Container) {
	users := handlers.NewUserHandler(c.Users, c.Enrollment, c.Progress)

	r.Add(modules.NewAuthModule(c, users))
	r.Add(modules.NewUserModule(c, users))
	r.Add(modules.NewCourseModule(c))
	r.Add(modules.NewPaymentModule(c))
	r.Add(modules.NewEducatorModule(c))
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}
}
