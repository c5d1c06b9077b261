package application

import (
	"context"
	"io"
	"time"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/pkg/mailer"
)

// Mailer hands an email job to whatever transport is configured.
type Mailer interface {
	Dispatch(ctx context.Context, job mailer.EmailJob) error
}

// MediaStore uploads a file and returns its public URL.
type MediaStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// TokenRevoker remembers logged-out session ids until they expire.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// CourseIndexer keeps the public course search index in sync.
type CourseIndexer interface {
	Index(ctx context.Context, c *entity.Course) error
	Remove(ctx context.Context, courseID string) error
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

type CheckoutRequest struct {
	UserID      string
	Email       string
	CourseID    string
	CourseTitle string
	ImageURL    string
	Amount      float64
	Currency    string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// PaidSession is a payment provider session as seen after checkout.
type PaidSession struct {
	ID       string
	Paid     bool
	UserID   string
	CourseID string
	Amount   float64
	Currency string
}

// PaymentGateway creates and confirms hosted checkout sessions.
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetSession(ctx context.Context, sessionID string) (*PaidSession, error)
	// ParseWebhook verifies the signature and returns the completed session,
	// or nil for events that do not complete a checkout.
	ParseWebhook(payload []byte, signature string) (*PaidSession, error)
}
