package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-lms/config"
	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/internal/domain/repository"
	pginfra "github.com/oksasatya/go-ddd-lms/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-lms/pkg/helpers"
)

const demoPassword = "password123"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	courses := pginfra.NewCourseRepository(pool)
	chapters := pginfra.NewChapterRepository(pool)
	lectures := pginfra.NewLectureRepository(pool)

	educator, created := ensureUser(ctx, users, "educator@example.com", "Demo Educator", entity.RoleEducator)
	student, _ := ensureUser(ctx, users, "student@example.com", "Demo Student", entity.RoleStudent)
	fmt.Printf("seeded educator: id=%s email=%s password=%s\n", educator.ID, educator.Email, demoPassword)
	fmt.Printf("seeded student: id=%s email=%s password=%s\n", student.ID, student.Email, demoPassword)

	if !created {
		fmt.Println("educator already existed; skipping demo course")
		return
	}

	course := &entity.Course{
		EducatorID:  educator.ID,
		Title:       "Go for Backend Developers",
		Description: "Build HTTP services with Gin, Postgres and Redis.",
		Category:    "programming",
		Price:       100,
		Discount:    20,
		IsPublished: true,
	}
	if err := courses.Create(ctx, course); err != nil {
		log.Fatalf("failed to seed course: %v", err)
	}

	outline := []struct {
		title    string
		lectures []string
	}{
		{"Getting started", []string{"Installing Go", "Modules and packages"}},
		{"HTTP services", []string{"Routing with Gin", "Middleware", "Graceful shutdown"}},
	}
	for i, ch := range outline {
		chapter := &entity.Chapter{CourseID: course.ID, Title: ch.title, Position: i + 1}
		if err := chapters.Create(ctx, chapter); err != nil {
			log.Fatalf("failed to seed chapter: %v", err)
		}
		for j, title := range ch.lectures {
			l := &entity.Lecture{
				ChapterID:     chapter.ID,
				CourseID:      course.ID,
				Title:         title,
				Duration:      600,
				Order:         j + 1,
				IsPreviewFree: i == 0 && j == 0,
			}
			if err := lectures.Create(ctx, l); err != nil {
				log.Fatalf("failed to seed lecture: %v", err)
			}
		}
	}
	fmt.Printf("seeded course: id=%s title=%q final_price=%.2f\n", course.ID, course.Title, course.FinalPrice())
}

// ensureUser returns the existing account or creates a verified one.
func ensureUser(ctx context.Context, users repository.UserRepository, email, name string, role entity.Role) (*entity.User, bool) {
	u, err := users.GetByEmail(ctx, email)
	if err == nil {
		return u, false
	}
	if !errors.Is(err, repository.ErrNotFound) {
		log.Fatalf("failed to look up %s: %v", email, err)
	}
	hash, err := helpers.HashPassword(demoPassword)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	u = &entity.User{Email: email, Password: hash, Name: name, Role: role, IsVerified: true}
	if err := users.Create(ctx, u); err != nil {
		log.Fatalf("failed to seed user %s: %v", email, err)
	}
	return u, true
}
