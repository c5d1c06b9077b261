package application

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/pkg/apperr"
	"github.com/oksasatya/go-ddd-lms/pkg/helpers"
)

// Upload is a file received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (u Upload) ext() string {
	return strings.ToLower(path.Ext(u.Filename))
}

func checkUpload(u Upload, kind string, limit int64) error {
	if !strings.HasPrefix(strings.ToLower(u.ContentType), kind+"/") {
		return ErrUnsupportedFile
	}
	if limit > 0 && u.Size > limit {
		return ErrFileTooLarge
	}
	return nil
}

// upload stores the file under the extended upload timeout.
func (s *CatalogService) upload(ctx context.Context, objectPath string, u Upload) (string, error) {
	if s.Media == nil {
		return "", ErrMediaDisabled
	}
	if s.UploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.UploadTimeout)
		defer cancel()
	}
	url, err := s.Media.Upload(ctx, objectPath, u.ContentType, u.Body)
	if err != nil {
		helpers.LogError(s.Logger, "media upload failed", err, logrus.Fields{"object": objectPath})
		return "", apperr.Wrap(ErrMediaUpload, err)
	}
	return url, nil
}

func (s *CatalogService) UploadThumbnail(ctx context.Context, callerID, courseID string, u Upload) (*entity.Course, error) {
	if err := checkUpload(u, "image", s.MaxImageBytes); err != nil {
		return nil, err
	}
	c, err := s.authorizeOwner(ctx, ResourceCourse, courseID, callerID)
	if err != nil {
		return nil, err
	}
	url, err := s.upload(ctx, path.Join("courses", c.ID, "thumbnail-"+uuid.NewString()+u.ext()), u)
	if err != nil {
		return nil, err
	}
	c.ThumbnailURL = url
	if err := s.Courses.Update(ctx, c); err != nil {
		return nil, err
	}
	s.syncIndex(ctx, c)
	return c, nil
}

// UploadVideo stores a lecture video. With a lectureID the URL is also
// attached to that lecture.
func (s *CatalogService) UploadVideo(ctx context.Context, actor Actor, lectureID string, u Upload) (string, error) {
	if actor.Role != entity.RoleEducator {
		return "", ErrEducatorOnly
	}
	if err := checkUpload(u, "video", s.MaxVideoBytes); err != nil {
		return "", err
	}
	if lectureID != "" {
		if _, err := s.authorizeOwner(ctx, ResourceLecture, lectureID, actor.ID); err != nil {
			return "", err
		}
	}
	url, err := s.upload(ctx, path.Join("videos", actor.ID, uuid.NewString()+u.ext()), u)
	if err != nil {
		return "", err
	}
	if lectureID != "" {
		if _, err := s.UpdateLecture(ctx, actor.ID, lectureID, LectureUpdate{VideoURL: &url}); err != nil {
			return "", err
		}
	}
	return url, nil
}
