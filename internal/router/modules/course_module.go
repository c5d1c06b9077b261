package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-lms/internal/container"
	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	handlers "github.com/oksasatya/go-ddd-lms/internal/interface/http"
	"github.com/oksasatya/go-ddd-lms/internal/interface/middleware"
)

// CourseModule serves the catalog: /api/course, /api/chapter, /api/lecture
// and /api/video.
type CourseModule struct {
	Courses    *handlers.CourseHandler
	Curriculum *handlers.CurriculumHandler
	Progress   *handlers.ProgressHandler
	c          *container.Container
}

func NewCourseModule(c *container.Container) *CourseModule {
	return &CourseModule{
		Courses:    handlers.NewCourseHandler(c.Catalog, c.Enrollment),
		Curriculum: handlers.NewCurriculumHandler(c.Catalog),
		Progress:   handlers.NewProgressHandler(c.Progress),
		c:          c,
	}
}

func (m *CourseModule) Register(rg *gin.RouterGroup) {
	auth := middleware.Auth(m.c.Auth, m.c.JWT)
	optional := middleware.OptionalAuth(m.c.Auth)
	educator := middleware.RequireRole(entity.RoleEducator)
	browse := middleware.RateLimit(m.c.Redis, 300, time.Minute, middleware.KeyByIP(), nil)
	perUser := middleware.RateLimit(m.c.Redis, 120, time.Minute, middleware.KeyByUserID(), nil)
	uploads := middleware.RateLimit(m.c.Redis, 20, time.Minute, middleware.KeyByUserID(), nil)

	course := rg.Group("/course")
	pub := course.Group("", browse, optional)
	{
		pub.GET("", m.Courses.List)
		pub.GET("/search", m.Courses.Search)
		pub.GET("/:id", m.Courses.Get)
		pub.GET("/:id/chapters", m.Courses.Chapters)
	}
	student := course.Group("", auth, perUser)
	{
		student.POST("/:id/enroll", m.Courses.Enroll)
		student.POST("/:id/rating", m.Courses.Rate)
		student.GET("/:id/progress", m.Progress.Get)
		student.POST("/:id/progress/complete", m.Progress.Complete)
		student.PUT("/:id/progress/position", m.Progress.Position)
	}
	owner := course.Group("", auth, educator, perUser)
	{
		owner.POST("", m.Courses.Create)
		owner.GET("/mine", m.Courses.Mine)
		owner.PUT("/:id", m.Courses.Update)
		owner.DELETE("/:id", m.Courses.Delete)
		owner.PATCH("/:id/publish", m.Courses.TogglePublish)
		owner.POST("/:id/thumbnail", uploads, m.Courses.UploadThumbnail)
	}

	chapter := rg.Group("/chapter", auth, educator, perUser)
	{
		chapter.POST("", m.Curriculum.CreateChapter)
		chapter.PUT("/:id", m.Curriculum.UpdateChapter)
		chapter.DELETE("/:id", m.Curriculum.DeleteChapter)
	}

	lecture := rg.Group("/lecture")
	lecture.GET("/:id", browse, optional, m.Curriculum.GetLecture)
	lectureOwner := lecture.Group("", auth, educator, perUser)
	{
		lectureOwner.POST("", m.Curriculum.CreateLecture)
		lectureOwner.PUT("/:id", m.Curriculum.UpdateLecture)
		lectureOwner.DELETE("/:id", m.Curriculum.DeleteLecture)
	}

	rg.POST("/video/upload", auth, educator, uploads, m.Curriculum.UploadVideo)
}
