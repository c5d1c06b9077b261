package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-lms/config"
	"github.com/oksasatya/go-ddd-lms/internal/application"
	"github.com/oksasatya/go-ddd-lms/internal/domain/repository"
	"github.com/oksasatya/go-ddd-lms/pkg/helpers"
)

// Repositories groups one backend's repository implementations.
type Repositories struct {
	Users     repository.UserRepository
	Courses   repository.CourseRepository
	Chapters  repository.ChapterRepository
	Lectures  repository.LectureRepository
	Purchases repository.PurchaseRepository
	Progress  repository.ProgressRepository
}

// Adapters are the optional outbound integrations. Nil members disable the
// feature that depends on them.
type Adapters struct {
	Revoker  application.TokenRevoker
	Mail     application.Mailer
	Media    application.MediaStore
	Index    application.CourseIndexer
	Payments application.PaymentGateway
}

// Container holds everything the HTTP layer needs. It is built once in main
// and passed explicitly to the router.
type Container struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Redis   *redis.Client
	JWT     *helpers.JWTManager
	Cookies *helpers.Manager

	Auth       *application.AuthService
	Catalog    *application.CatalogService
	Enrollment *application.EnrollmentService
	Progress   *application.ProgressService
	Users      *application.UserService
	Dashboard  *application.DashboardService
}

// New wires the services over repos and adapters.
func New(cfg *config.Config, logger *logrus.Logger, rdb *redis.Client, repos Repositories, ad Adapters) *Container {
	jwt := helpers.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL, cfg.RefreshWindow)
	brand := cfg.Brand()

	catalog := application.NewCatalogService(repos.Courses, repos.Chapters, repos.Lectures, repos.Users, ad.Media, ad.Index, logger)
	catalog.UploadTimeout = cfg.UploadTimeout
	catalog.MaxImageBytes = cfg.MaxImageSizeMB << 20
	catalog.MaxVideoBytes = cfg.MaxVideoSizeMB << 20

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Redis:   rdb,
		JWT:     jwt,
		Cookies: helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure),

		Auth:       application.NewAuthService(repos.Users, jwt, ad.Revoker, ad.Mail, brand, cfg.OTPTTL, cfg.ResetTokenTTL, logger),
		Catalog:    catalog,
		Enrollment: application.NewEnrollmentService(repos.Users, repos.Courses, repos.Purchases, ad.Payments, ad.Mail, brand, cfg.Currency, logger),
		Progress:   application.NewProgressService(repos.Users, repos.Courses, repos.Chapters, repos.Lectures, repos.Progress),
		Users:      application.NewUserService(repos.Users, repos.Courses, repos.Progress, ad.Media, logger),
		Dashboard:  application.NewDashboardService(repos.Courses, repos.Purchases, repos.Users),
	}
}
