package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-lms/internal/application"
	"github.com/oksasatya/go-ddd-lms/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-lms/pkg/response"
)

type UserHandler struct {
	Svc        *application.UserService
	Enrollment *application.EnrollmentService
	Progress   *application.ProgressService
}

func NewUserHandler(svc *application.UserService, enrollment *application.EnrollmentService, progress *application.ProgressService) *UserHandler {
	return &UserHandler{Svc: svc, Enrollment: enrollment, Progress: progress}
}

type updateProfileRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=100"`
	Bio  *string `json:"bio" binding:"omitempty,max=2000"`
}

// GetProfile GET /api/user/profile and GET /api/auth/me
func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "profile", nil)
}

// UpdateProfile PUT /api/user/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), middleware.UserID(c), application.UpdateProfileInput{
		Name: req.Name,
		Bio:  req.Bio,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "profile updated", nil)
}

// UploadAvatar POST /api/user/avatar (multipart field "avatar")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	up, f, ok := formUpload(c, "avatar")
	if !ok {
		return
	}
	defer f.Close()

	u, err := h.Svc.UploadAvatar(c.Request.Context(), middleware.UserID(c), up)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "avatar updated", nil)
}

// Enrolled GET /api/user/enrolled
func (h *UserHandler) Enrolled(c *gin.Context) {
	courses, err := h.Svc.EnrolledCourses(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, courses, "enrolled courses", nil)
}

// Purchases GET /api/user/purchases
func (h *UserHandler) Purchases(c *gin.Context) {
	rows, err := h.Enrollment.History(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows, "purchases", nil)
}

// ProgressAll GET /api/user/progress
func (h *UserHandler) ProgressAll(c *gin.Context) {
	rows, err := h.Progress.ListMine(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows, "progress", nil)
}
