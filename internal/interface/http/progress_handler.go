package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-lms/internal/application"
	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-lms/pkg/response"
)

type ProgressHandler struct {
	Svc *application.ProgressService
}

func NewProgressHandler(svc *application.ProgressService) *ProgressHandler {
	return &ProgressHandler{Svc: svc}
}

// Either lecture_id or both indices identify the lecture.
type completeLectureRequest struct {
	LectureID    string `json:"lecture_id" binding:"required_without=ChapterIndex"`
	ChapterIndex *int   `json:"chapter_index" binding:"omitempty,min=0"`
	LectureIndex *int   `json:"lecture_index" binding:"omitempty,min=0"`
}

type positionRequest struct {
	ChapterIndex *int `json:"chapter_index" binding:"required,min=0"`
	LectureIndex *int `json:"lecture_index" binding:"required,min=0"`
}

// Complete POST /api/course/:id/progress/complete
func (h *ProgressHandler) Complete(c *gin.Context) {
	var req completeLectureRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Svc.RecordLectureCompletion(c.Request.Context(), middleware.UserID(c), c.Param("id"), application.LectureRef{
		LectureID:    req.LectureID,
		ChapterIndex: req.ChapterIndex,
		LectureIndex: req.LectureIndex,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "lecture completed", nil)
}

// Position PUT /api/course/:id/progress/position
func (h *ProgressHandler) Position(c *gin.Context) {
	var req positionRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Svc.SetLastPosition(c.Request.Context(), middleware.UserID(c), c.Param("id"), entity.Position{
		ChapterIndex: *req.ChapterIndex,
		LectureIndex: *req.LectureIndex,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "position saved", nil)
}

// Get GET /api/course/:id/progress
func (h *ProgressHandler) Get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "progress", nil)
}
