package application

import (
	"context"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/internal/domain/repository"
	"github.com/oksasatya/go-ddd-lms/pkg/apperr"
	"github.com/oksasatya/go-ddd-lms/pkg/helpers"
)

var ErrNameRequired = apperr.Validation("name_required", "name must not be empty")

type UserService struct {
	Users         repository.UserRepository
	Courses       repository.CourseRepository
	Progress      repository.ProgressRepository
	Media         MediaStore
	MaxImageBytes int64
	Logger        *logrus.Logger
}

func NewUserService(users repository.UserRepository, courses repository.CourseRepository,
	progress repository.ProgressRepository, media MediaStore, logger *logrus.Logger) *UserService {
	return &UserService{
		Users:         users,
		Courses:       courses,
		Progress:      progress,
		Media:         media,
		MaxImageBytes: 5 << 20,
		Logger:        logger,
	}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return u, nil
}

type UpdateProfileInput struct {
	Name *string
	Bio  *string
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		u.Name = name
	}
	if in.Bio != nil {
		u.Bio = strings.TrimSpace(*in.Bio)
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UploadAvatar stores the image and points the profile at it.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, up Upload) (*entity.User, error) {
	if err := checkUpload(up, "image", s.MaxImageBytes); err != nil {
		return nil, err
	}
	if s.Media == nil {
		return nil, ErrMediaDisabled
	}
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	objectPath := path.Join("avatars", u.ID, uuid.NewString()+up.ext())
	url, err := s.Media.Upload(ctx, objectPath, up.ContentType, up.Body)
	if err != nil {
		helpers.LogError(s.Logger, "avatar upload failed", err, logrus.Fields{"user_id": u.ID})
		return nil, apperr.Wrap(ErrMediaUpload, err)
	}
	u.AvatarURL = url
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

type EnrolledCourse struct {
	CourseView
	Progress  int  `json:"progress"`
	Completed bool `json:"completed"`
}

// EnrolledCourses lists the user's courses with their progress.
func (s *UserService) EnrolledCourses(ctx context.Context, userID string) ([]EnrolledCourse, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	cs, err := s.Courses.ListByIDs(ctx, u.EnrolledCourses)
	if err != nil {
		return nil, err
	}
	ps, err := s.Progress.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	byCourse := make(map[string]*entity.CourseProgress, len(ps))
	for _, p := range ps {
		byCourse[p.CourseID] = p
	}
	out := make([]EnrolledCourse, 0, len(cs))
	for _, c := range cs {
		ec := EnrolledCourse{CourseView: NewCourseView(c)}
		if p, ok := byCourse[c.ID]; ok {
			ec.Progress = p.Progress
			ec.Completed = p.Completed
		}
		out = append(out, ec)
	}
	return out, nil
}
