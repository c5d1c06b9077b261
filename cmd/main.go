package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/go-ddd-lms/config"
	"github.com/oksasatya/go-ddd-lms/internal/container"
	"github.com/oksasatya/go-ddd-lms/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-lms/internal/infrastructure/payment"
	pginfra "github.com/oksasatya/go-ddd-lms/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-lms/internal/infrastructure/search"
	"github.com/oksasatya/go-ddd-lms/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-lms/internal/router"
	"github.com/oksasatya/go-ddd-lms/pkg/helpers"
	"github.com/oksasatya/go-ddd-lms/pkg/mailer"
	"github.com/oksasatya/go-ddd-lms/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	repos, closeRepos := openRepositories(ctx, cfg, logger)
	defer closeRepos()

	rdb := openRedis(ctx, cfg, logger)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	ad := container.Adapters{}
	if rdb != nil {
		ad.Revoker = helpers.NewSessionBlacklist(rdb)
	}

	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			log.Fatalf("failed to init GCS client: %v", err)
		}
		defer func() { _ = gcsClient.Close() }()
		ad.Media = helpers.NewGCSStore(gcsClient, cfg.GCSBucket)
	} else {
		logger.Warn("GCS_BUCKET not set; uploads disabled")
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			log.Fatalf("failed to init elasticsearch: %v", err)
		}
		idx := search.NewCourseIndex(es, cfg.ESCoursesIndex, logger)
		if err := idx.EnsureIndex(ctx); err != nil {
			helpers.LogError(logger, "course index unavailable; search falls back to database", err, nil)
		} else {
			ad.Index = idx
		}
	}

	// Queue when RabbitMQ is configured, direct Mailgun otherwise.
	var pub mailer.Publisher
	if cfg.RabbitMQURL != "" {
		rp, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer rp.Close()
		pub = rp
	}
	direct := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ad.Mail = mailer.NewDispatcher(pub, direct, cfg.MailSendEnabled, logger)

	if cfg.StripeSecretKey != "" {
		ad.Payments = payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.FrontendURL)
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set; paid checkout disabled")
	}

	app := container.New(cfg, logger, rdb, repos, ad)

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RefreshHeader, middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled || cfg.IsDevelopment() {
		r.Use(middleware.AccessLog(logger))
	}
	// Uploads stream through multipart; keep at most 32 MiB in memory.
	r.MaxMultipartMemory = 32 << 20

	reg := router.NewRegistry(r)
	router.InitModules(reg, app)
	reg.RegisterAll()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// Video uploads need the extended window.
		ReadTimeout:  cfg.UploadTimeout,
		WriteTimeout: cfg.UploadTimeout,
	}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// openRepositories returns the Postgres repositories, or the in-memory ones
// when STORAGE_DRIVER=memory.
func openRepositories(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (container.Repositories, func()) {
	if cfg.StorageDriver == "memory" {
		logger.Warn("using in-memory storage; data is lost on restart")
		s := memory.NewStore()
		return container.Repositories{
			Users:     s.Users(),
			Courses:   s.Courses(),
			Chapters:  s.Chapters(),
			Lectures:  s.Lectures(),
			Purchases: s.Purchases(),
			Progress:  s.Progress(),
		}, func() {}
	}

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		pool.Close()
		log.Fatalf("migration failed: %v", err)
	}
	return pgRepositories(pool), pool.Close
}

func pgRepositories(pool *pgxpool.Pool) container.Repositories {
	return container.Repositories{
		Users:     pginfra.NewUserRepository(pool),
		Courses:   pginfra.NewCourseRepository(pool),
		Chapters:  pginfra.NewChapterRepository(pool),
		Lectures:  pginfra.NewLectureRepository(pool),
		Purchases: pginfra.NewPurchaseRepository(pool),
		Progress:  pginfra.NewProgressRepository(pool),
	}
}

// openRedis returns nil in development when Redis is unreachable; rate
// limits and logout revocation are then disabled.
func openRedis(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *redis.Client {
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		if !cfg.IsDevelopment() {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		helpers.LogError(logger, "redis unavailable; rate limits and session revocation disabled", err, nil)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
