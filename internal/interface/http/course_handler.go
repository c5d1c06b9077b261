package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-lms/internal/application"
	"github.com/oksasatya/go-ddd-lms/internal/domain/repository"
	"github.com/oksasatya/go-ddd-lms/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-lms/pkg/response"
)

type CourseHandler struct {
	Catalog    *application.CatalogService
	Enrollment *application.EnrollmentService
}

func NewCourseHandler(catalog *application.CatalogService, enrollment *application.EnrollmentService) *CourseHandler {
	return &CourseHandler{Catalog: catalog, Enrollment: enrollment}
}

type createCourseRequest struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description string  `json:"description" binding:"max=10000"`
	Category    string  `json:"category" binding:"max=100"`
	Price       float64 `json:"price" binding:"gte=0"`
	Discount    float64 `json:"discount" binding:"percent"`
}

type updateCourseRequest struct {
	Title       *string  `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string  `json:"description" binding:"omitempty,max=10000"`
	Category    *string  `json:"category" binding:"omitempty,max=100"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Discount    *float64 `json:"discount" binding:"omitempty,percent"`
}

type rateCourseRequest struct {
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Review string `json:"review" binding:"max=2000"`
}

type searchQuery struct {
	Q     string `form:"q" binding:"required,max=200"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

// Create POST /api/course
func (h *CourseHandler) Create(c *gin.Context) {
	var req createCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.Catalog.CreateCourse(c.Request.Context(), middleware.Actor(c), application.CourseInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Discount:    req.Discount,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, application.NewCourseView(course), "course created", nil)
}

// Update PUT /api/course/:id
func (h *CourseHandler) Update(c *gin.Context) {
	var req updateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.Catalog.UpdateCourse(c.Request.Context(), middleware.UserID(c), c.Param("id"), application.CourseUpdate{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Discount:    req.Discount,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, application.NewCourseView(course), "course updated", nil)
}

// Delete DELETE /api/course/:id
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.Catalog.DeleteCourse(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "course deleted", nil)
}

// TogglePublish PATCH /api/course/:id/publish
func (h *CourseHandler) TogglePublish(c *gin.Context) {
	course, err := h.Catalog.TogglePublish(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	msg := "course unpublished"
	if course.IsPublished {
		msg = "course published"
	}
	response.Success(c, http.StatusOK, application.NewCourseView(course), msg, nil)
}

// UploadThumbnail POST /api/course/:id/thumbnail (multipart field "thumbnail")
func (h *CourseHandler) UploadThumbnail(c *gin.Context) {
	up, f, ok := formUpload(c, "thumbnail")
	if !ok {
		return
	}
	defer f.Close()

	course, err := h.Catalog.UploadThumbnail(c.Request.Context(), middleware.UserID(c), c.Param("id"), up)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, application.NewCourseView(course), "thumbnail uploaded", nil)
}

// Get GET /api/course/:id
func (h *CourseHandler) Get(c *gin.Context) {
	d, err := h.Catalog.GetCourse(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, d, "course", nil)
}

// List GET /api/course?page=&limit=&category=&q=
func (h *CourseHandler) List(c *gin.Context) {
	var q pageQuery
	if !bindQuery(c, &q) {
		return
	}
	views, total, err := h.Catalog.ListPublished(c.Request.Context(), repository.CourseFilter{
		Category: q.Category,
		Query:    q.Q,
		Limit:    q.limit(),
		Offset:   q.offset(),
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, views, "courses", pageMeta(q, total))
}

// Search GET /api/course/search?q=
func (h *CourseHandler) Search(c *gin.Context) {
	var q searchQuery
	if !bindQuery(c, &q) {
		return
	}
	views, err := h.Catalog.Search(c.Request.Context(), q.Q, q.Limit)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, views, "search results", nil)
}

// Mine GET /api/course/mine
func (h *CourseHandler) Mine(c *gin.Context) {
	views, err := h.Catalog.ListMine(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, views, "my courses", nil)
}

// Chapters GET /api/course/:id/chapters
func (h *CourseHandler) Chapters(c *gin.Context) {
	chapters, err := h.Catalog.ListChapters(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, chapters, "chapters", nil)
}

// Rate POST /api/course/:id/rating
func (h *CourseHandler) Rate(c *gin.Context) {
	var req rateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	avg, err := h.Catalog.RateCourse(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Rating, req.Review)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"average_rating": avg}, "rating saved", nil)
}

// Enroll POST /api/course/:id/enroll (free courses)
func (h *CourseHandler) Enroll(c *gin.Context) {
	res, err := h.Enrollment.EnrollFree(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	msg := "enrolled"
	if res.AlreadyEnrolled {
		msg = "already enrolled"
	}
	response.Success(c, http.StatusOK, res, msg, nil)
}
