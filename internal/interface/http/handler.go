package handlers

import (
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-lms/internal/application"
	"github.com/oksasatya/go-ddd-lms/pkg/apperr"
	"github.com/oksasatya/go-ddd-lms/pkg/response"
	"github.com/oksasatya/go-ddd-lms/pkg/validation"
)

var errFileRequired = apperr.Validation("file_required", "file is required")

// bindJSON binds and validates the body, answering 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Invalid(c, validation.ToDetails(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		response.Invalid(c, validation.ToDetails(err))
		return false
	}
	return true
}

// formUpload opens the multipart file under field. The caller closes it.
func formUpload(c *gin.Context, field string) (application.Upload, multipart.File, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		response.Fail(c, errFileRequired)
		return application.Upload{}, nil, false
	}
	f, err := fh.Open()
	if err != nil {
		response.Fail(c, apperr.Wrap(errFileRequired, err))
		return application.Upload{}, nil, false
	}
	return application.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, f, true
}

type pageQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Category string `form:"category"`
	Q        string `form:"q"`
}

func (q pageQuery) limit() int {
	if q.Limit == 0 {
		return 20
	}
	return q.Limit
}

func (q pageQuery) offset() int {
	if q.Page <= 1 {
		return 0
	}
	return (q.Page - 1) * q.limit()
}

func pageMeta(q pageQuery, total int) gin.H {
	page := q.Page
	if page == 0 {
		page = 1
	}
	return gin.H{"page": page, "limit": q.limit(), "total": total}
}
