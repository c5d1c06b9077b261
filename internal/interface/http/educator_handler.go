package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-lms/internal/application"
	"github.com/oksasatya/go-ddd-lms/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-lms/pkg/response"
)

type EducatorHandler struct {
	Svc *application.DashboardService
}

func NewEducatorHandler(svc *application.DashboardService) *EducatorHandler {
	return &EducatorHandler{Svc: svc}
}

// Dashboard GET /api/educator/dashboard
func (h *EducatorHandler) Dashboard(c *gin.Context) {
	d, err := h.Svc.Dashboard(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, d, "dashboard", nil)
}

// Students GET /api/educator/students
func (h *EducatorHandler) Students(c *gin.Context) {
	rows, err := h.Svc.Students(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows, "enrolled students", nil)
}
