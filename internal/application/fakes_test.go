package application

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-lms/pkg/helpers"
	"github.com/oksasatya/go-ddd-lms/pkg/mailer"
	"github.com/oksasatya/go-ddd-lms/pkg/mailer/templates"
)

type fakeMailer struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
	err  error
}

func (m *fakeMailer) Dispatch(_ context.Context, job mailer.EmailJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.jobs, "no email dispatched")
	code, _ := m.jobs[len(m.jobs)-1].Data["Code"].(string)
	require.Len(t, code, 6)
	return code
}

type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (r *fakeRevoker) Revoke(_ context.Context, jti string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revoked == nil {
		r.revoked = map[string]time.Time{}
	}
	r.revoked[jti] = until
	return nil
}

func (r *fakeRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[jti]
	return ok, nil
}

type fakeMedia struct {
	uploads []string
	err     error
}

func (m *fakeMedia) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	m.uploads = append(m.uploads, objectPath)
	return "https://media.test/" + objectPath, nil
}

type mockPayments struct{ mock.Mock }

func (m *mockPayments) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	args := m.Called(ctx, req)
	sess, _ := args.Get(0).(*CheckoutSession)
	return sess, args.Error(1)
}

func (m *mockPayments) GetSession(ctx context.Context, sessionID string) (*PaidSession, error) {
	args := m.Called(ctx, sessionID)
	sess, _ := args.Get(0).(*PaidSession)
	return sess, args.Error(1)
}

func (m *mockPayments) ParseWebhook(payload []byte, signature string) (*PaidSession, error) {
	args := m.Called(payload, signature)
	sess, _ := args.Get(0).(*PaidSession)
	return sess, args.Error(1)
}

var errBoom = errors.New("boom")

type testEnv struct {
	store      *memory.Store
	mail       *fakeMailer
	media      *fakeMedia
	revoker    *fakeRevoker
	payments   *mockPayments
	auth       *AuthService
	catalog    *CatalogService
	enrollment *EnrollmentService
	progress   *ProgressService
	users      *UserService
	dashboard  *DashboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s := memory.NewStore()
	logger := helpers.NewDiscardLogger()
	env := &testEnv{
		store:    s,
		mail:     &fakeMailer{},
		media:    &fakeMedia{},
		revoker:  &fakeRevoker{},
		payments: &mockPayments{},
	}
	brand := templates.Brand{AppName: "LMS", CompanyName: "LMS Inc", FrontendURL: "http://localhost:5173"}
	jwt := helpers.NewJWTManager("test-secret", 30*24*time.Hour, 7*24*time.Hour)

	env.auth = NewAuthService(s.Users(), jwt, env.revoker, env.mail, brand, 10*time.Minute, 15*time.Minute, logger)
	env.catalog = NewCatalogService(s.Courses(), s.Chapters(), s.Lectures(), s.Users(), env.media, nil, logger)
	env.enrollment = NewEnrollmentService(s.Users(), s.Courses(), s.Purchases(), env.payments, env.mail, brand, "usd", logger)
	env.progress = NewProgressService(s.Users(), s.Courses(), s.Chapters(), s.Lectures(), s.Progress())
	env.users = NewUserService(s.Users(), s.Courses(), s.Progress(), env.media, logger)
	env.dashboard = NewDashboardService(s.Courses(), s.Purchases(), s.Users())
	return env
}

// newUser stores a verified account directly.
func (e *testEnv) newUser(t *testing.T, name string, role entity.Role) *entity.User {
	t.Helper()
	hash, err := helpers.HashPassword("password123")
	require.NoError(t, err)
	u := &entity.User{Name: name, Email: name + "@example.com", Password: hash, Role: role, IsVerified: true}
	require.NoError(t, e.store.Users().Create(context.Background(), u))
	return u
}

func actorOf(u *entity.User) Actor { return Actor{ID: u.ID, Role: u.Role} }

// newCourse creates a published course with chapters holding the given
// number of lectures each.
func (e *testEnv) newCourse(t *testing.T, educator *entity.User, price, discount float64, lecturesPerChapter ...int) (*entity.Course, []*entity.Lecture) {
	t.Helper()
	ctx := context.Background()
	c, err := e.catalog.CreateCourse(ctx, actorOf(educator), CourseInput{Title: "Go in Practice", Price: price, Discount: discount})
	require.NoError(t, err)

	var lectures []*entity.Lecture
	for i, n := range lecturesPerChapter {
		ch, err := e.catalog.CreateChapter(ctx, educator.ID, c.ID, "Chapter")
		require.NoError(t, err)
		require.Equal(t, i+1, ch.Position)
		for j := 0; j < n; j++ {
			l, err := e.catalog.CreateLecture(ctx, educator.ID, LectureInput{
				ChapterID: ch.ID,
				Title:     "Lecture",
				VideoURL:  "https://media.test/v.mp4",
				Duration:  60,
			})
			require.NoError(t, err)
			lectures = append(lectures, l)
		}
	}
	c, err = e.catalog.TogglePublish(ctx, educator.ID, c.ID)
	require.NoError(t, err)
	require.True(t, c.IsPublished)
	return c, lectures
}
