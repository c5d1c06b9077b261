package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-lms/internal/application"
	"github.com/oksasatya/go-ddd-lms/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-lms/pkg/response"
)

// CurriculumHandler serves chapters, lectures and lecture video uploads.
type CurriculumHandler struct {
	Catalog *application.CatalogService
}

func NewCurriculumHandler(catalog *application.CatalogService) *CurriculumHandler {
	return &CurriculumHandler{Catalog: catalog}
}

type createChapterRequest struct {
	CourseID string `json:"course_id" binding:"required"`
	Title    string `json:"title" binding:"required,max=200"`
}

type updateChapterRequest struct {
	Title    *string `json:"title" binding:"omitempty,min=1,max=200"`
	Position *int    `json:"position" binding:"omitempty,min=1"`
}

type createLectureRequest struct {
	ChapterID     string `json:"chapter_id" binding:"required"`
	Title         string `json:"title" binding:"required,max=200"`
	VideoURL      string `json:"video_url" binding:"omitempty,url"`
	Duration      int    `json:"duration" binding:"gte=0"`
	Order         *int   `json:"order" binding:"omitempty,min=1"`
	IsPreviewFree bool   `json:"is_preview_free"`
}

type updateLectureRequest struct {
	Title         *string `json:"title" binding:"omitempty,min=1,max=200"`
	VideoURL      *string `json:"video_url" binding:"omitempty,url"`
	Duration      *int    `json:"duration" binding:"omitempty,gte=0"`
	Order         *int    `json:"order" binding:"omitempty,min=1"`
	IsPreviewFree *bool   `json:"is_preview_free"`
}

// CreateChapter POST /api/chapter
func (h *CurriculumHandler) CreateChapter(c *gin.Context) {
	var req createChapterRequest
	if !bindJSON(c, &req) {
		return
	}
	ch, err := h.Catalog.CreateChapter(c.Request.Context(), middleware.UserID(c), req.CourseID, req.Title)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, ch, "chapter created", nil)
}

// UpdateChapter PUT /api/chapter/:id
func (h *CurriculumHandler) UpdateChapter(c *gin.Context) {
	var req updateChapterRequest
	if !bindJSON(c, &req) {
		return
	}
	ch, err := h.Catalog.UpdateChapter(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Title, req.Position)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, ch, "chapter updated", nil)
}

// DeleteChapter DELETE /api/chapter/:id
func (h *CurriculumHandler) DeleteChapter(c *gin.Context) {
	if err := h.Catalog.DeleteChapter(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "chapter deleted", nil)
}

// CreateLecture POST /api/lecture
func (h *CurriculumHandler) CreateLecture(c *gin.Context) {
	var req createLectureRequest
	if !bindJSON(c, &req) {
		return
	}
	l, err := h.Catalog.CreateLecture(c.Request.Context(), middleware.UserID(c), application.LectureInput{
		ChapterID:     req.ChapterID,
		Title:         req.Title,
		VideoURL:      req.VideoURL,
		Duration:      req.Duration,
		Order:         req.Order,
		IsPreviewFree: req.IsPreviewFree,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, l, "lecture created", nil)
}

// UpdateLecture PUT /api/lecture/:id
func (h *CurriculumHandler) UpdateLecture(c *gin.Context) {
	var req updateLectureRequest
	if !bindJSON(c, &req) {
		return
	}
	l, err := h.Catalog.UpdateLecture(c.Request.Context(), middleware.UserID(c), c.Param("id"), application.LectureUpdate{
		Title:         req.Title,
		VideoURL:      req.VideoURL,
		Duration:      req.Duration,
		Order:         req.Order,
		IsPreviewFree: req.IsPreviewFree,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, l, "lecture updated", nil)
}

// DeleteLecture DELETE /api/lecture/:id
func (h *CurriculumHandler) DeleteLecture(c *gin.Context) {
	if err := h.Catalog.DeleteLecture(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "lecture deleted", nil)
}

// GetLecture GET /api/lecture/:id
func (h *CurriculumHandler) GetLecture(c *gin.Context) {
	l, err := h.Catalog.GetLecture(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, l, "lecture", nil)
}

// UploadVideo POST /api/video/upload (multipart field "video", optional form lecture_id)
func (h *CurriculumHandler) UploadVideo(c *gin.Context) {
	up, f, ok := formUpload(c, "video")
	if !ok {
		return
	}
	defer f.Close()

	url, err := h.Catalog.UploadVideo(c.Request.Context(), middleware.Actor(c), c.PostForm("lecture_id"), up)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"video_url": url}, "video uploaded", nil)
}
