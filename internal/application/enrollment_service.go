package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/internal/domain/repository"
	"github.com/oksasatya/go-ddd-lms/pkg/apperr"
	"github.com/oksasatya/go-ddd-lms/pkg/helpers"
	"github.com/oksasatya/go-ddd-lms/pkg/mailer"
	"github.com/oksasatya/go-ddd-lms/pkg/mailer/templates"
)

var (
	ErrAlreadyEnrolled = apperr.Conflict("already_enrolled", "already enrolled in this course")
	ErrInvalidWebhook  = apperr.Validation("invalid_webhook", "webhook payload could not be verified")
)

// EnrollmentService grants course access for free courses and after payment.
type EnrollmentService struct {
	Users     repository.UserRepository
	Courses   repository.CourseRepository
	Purchases repository.PurchaseRepository
	Payments  PaymentGateway
	Mail      Mailer
	Brand     templates.Brand
	Currency  string
	Logger    *logrus.Logger
	Now       func() time.Time
}

func NewEnrollmentService(users repository.UserRepository, courses repository.CourseRepository,
	purchases repository.PurchaseRepository, payments PaymentGateway, mail Mailer, brand templates.Brand,
	currency string, logger *logrus.Logger) *EnrollmentService {
	if currency == "" {
		currency = "usd"
	}
	return &EnrollmentService{
		Users:     users,
		Courses:   courses,
		Purchases: purchases,
		Payments:  payments,
		Mail:      mail,
		Brand:     brand,
		Currency:  strings.ToLower(currency),
		Logger:    logger,
		Now:       time.Now,
	}
}

type EnrollResult struct {
	CourseID        string `json:"course_id"`
	AlreadyEnrolled bool   `json:"already_enrolled"`
}

type PurchaseResult struct {
	Purchase         *entity.Purchase `json:"purchase"`
	AlreadyPurchased bool             `json:"already_purchased"`
}

type PurchaseView struct {
	*entity.Purchase
	CourseTitle string `json:"course_title"`
}

// EnrollFree enrolls the user in a published course whose final price is zero.
// Enrolling twice succeeds and reports AlreadyEnrolled.
func (s *EnrollmentService) EnrollFree(ctx context.Context, userID, courseID string) (*EnrollResult, error) {
	c, err := s.Courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}
	if !c.IsPublished {
		return nil, ErrCourseUnavailable
	}
	if !c.IsFree() {
		return nil, ErrCourseNotFree
	}
	added, err := s.enroll(ctx, userID, c.ID)
	if err != nil {
		return nil, err
	}
	return &EnrollResult{CourseID: c.ID, AlreadyEnrolled: !added}, nil
}

// CreateCheckout opens a payment session for a published paid course.
func (s *EnrollmentService) CreateCheckout(ctx context.Context, userID, courseID string) (*CheckoutSession, error) {
	if s.Payments == nil {
		return nil, ErrPaymentDisabled
	}
	c, err := s.Courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}
	if !c.IsPublished {
		return nil, ErrCourseUnavailable
	}
	if _, err := s.Purchases.GetByUserAndCourse(ctx, userID, c.ID); err == nil {
		return nil, ErrAlreadyPurchased
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	amount := c.FinalPrice()
	if amount <= 0 {
		return nil, ErrCourseIsFree
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if u.IsEnrolled(c.ID) {
		return nil, ErrAlreadyEnrolled
	}

	sess, err := s.Payments.CreateCheckout(ctx, CheckoutRequest{
		UserID:      u.ID,
		Email:       u.Email,
		CourseID:    c.ID,
		CourseTitle: c.Title,
		ImageURL:    c.ThumbnailURL,
		Amount:      amount,
		Currency:    s.Currency,
	})
	if err != nil {
		helpers.LogError(s.Logger, "create checkout failed", err, logrus.Fields{"course_id": c.ID, "user_id": u.ID})
		return nil, apperr.Wrap(ErrPaymentProvider, err)
	}
	return sess, nil
}

// Charge is what the payment provider reports for a session. A charge
// without a currency was not reported by a provider and is priced at the
// course's current final price.
type Charge struct {
	Ref      string
	Amount   float64
	Currency string
}

func chargeOf(sess *PaidSession) Charge {
	return Charge{Ref: sess.ID, Amount: sess.Amount, Currency: sess.Currency}
}

// RecordPurchase appends a ledger row at the charged amount and enrolls the
// user. An existing row short-circuits with AlreadyPurchased. The ledger row
// and the two enrollment sets are written separately and are not rolled
// back on partial failure.
func (s *EnrollmentService) RecordPurchase(ctx context.Context, userID, courseID string, charge Charge) (*PurchaseResult, error) {
	existing, err := s.Purchases.GetByUserAndCourse(ctx, userID, courseID)
	if err == nil {
		return &PurchaseResult{Purchase: existing, AlreadyPurchased: true}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	c, err := s.Courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	amount, currency := c.FinalPrice(), s.Currency
	if charge.Currency != "" {
		amount, currency = charge.Amount, strings.ToLower(charge.Currency)
		if amount != c.FinalPrice() {
			helpers.LogInfo(s.Logger, "charged amount differs from current price",
				logrus.Fields{"course_id": c.ID, "charged": amount, "final_price": c.FinalPrice()})
		}
	}
	p := &entity.Purchase{
		UserID:     u.ID,
		CourseID:   c.ID,
		Amount:     amount,
		Currency:   currency,
		PaymentRef: charge.Ref,
		CreatedAt:  s.Now().UTC(),
	}
	if err := s.Purchases.Create(ctx, p); err != nil {
		return nil, err
	}
	if _, err := s.enroll(ctx, u.ID, c.ID); err != nil {
		helpers.LogError(s.Logger, "purchase recorded without enrollment", err,
			logrus.Fields{"purchase_id": p.ID, "user_id": u.ID, "course_id": c.ID})
		return nil, err
	}
	helpers.LogInfo(s.Logger, "purchase recorded", logrus.Fields{"purchase_id": p.ID, "course_id": c.ID, "amount": p.Amount})
	s.sendReceipt(ctx, u, c, p)
	return &PurchaseResult{Purchase: p}, nil
}

// ConfirmCheckout looks the session up with the provider and records the
// purchase once it is paid.
func (s *EnrollmentService) ConfirmCheckout(ctx context.Context, userID, sessionID string) (*PurchaseResult, error) {
	if s.Payments == nil {
		return nil, ErrPaymentDisabled
	}
	sess, err := s.Payments.GetSession(ctx, sessionID)
	if err != nil {
		return nil, apperr.Wrap(ErrPaymentProvider, err)
	}
	if sess.UserID != userID {
		return nil, ErrPaymentMismatch
	}
	if !sess.Paid {
		return nil, ErrPaymentNotPaid
	}
	return s.RecordPurchase(ctx, sess.UserID, sess.CourseID, chargeOf(sess))
}

// HandleWebhook records purchases for completed checkout events. Other
// events are acknowledged and ignored.
func (s *EnrollmentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.Payments == nil {
		return ErrPaymentDisabled
	}
	sess, err := s.Payments.ParseWebhook(payload, signature)
	if err != nil {
		return apperr.Wrap(ErrInvalidWebhook, err)
	}
	if sess == nil {
		return nil
	}
	if !sess.Paid || sess.UserID == "" || sess.CourseID == "" {
		helpers.LogInfo(s.Logger, "checkout completed without payment", logrus.Fields{"session_id": sess.ID})
		return nil
	}
	_, err = s.RecordPurchase(ctx, sess.UserID, sess.CourseID, chargeOf(sess))
	return err
}

func (s *EnrollmentService) History(ctx context.Context, userID string) ([]PurchaseView, error) {
	ps, err := s.Purchases.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(ps))
	for _, p := range ps {
		ids = append(ids, p.CourseID)
	}
	titles := map[string]string{}
	if cs, err := s.Courses.ListByIDs(ctx, ids); err == nil {
		for _, c := range cs {
			titles[c.ID] = c.Title
		}
	}
	out := make([]PurchaseView, 0, len(ps))
	for _, p := range ps {
		out = append(out, PurchaseView{Purchase: p, CourseTitle: titles[p.CourseID]})
	}
	return out, nil
}

// enroll adds both sides of the enrollment pair and reports whether the
// user was newly enrolled.
func (s *EnrollmentService) enroll(ctx context.Context, userID, courseID string) (bool, error) {
	addedUser, err := s.Users.AddEnrolledCourse(ctx, userID, courseID)
	if err != nil {
		return false, notFound(err, ErrUserNotFound)
	}
	addedCourse, err := s.Courses.AddStudent(ctx, courseID, userID)
	if err != nil {
		return false, notFound(err, ErrCourseNotFound)
	}
	return addedUser || addedCourse, nil
}

func (s *EnrollmentService) sendReceipt(ctx context.Context, u *entity.User, c *entity.Course, p *entity.Purchase) {
	if s.Mail == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: templates.PurchaseReceipt,
		Data: templates.NewData(s.Brand, templates.PurchaseReceipt, u.Name, u.Email,
			templates.WithCourse(c.Title),
			templates.WithAmount(fmt.Sprintf("%.2f %s", p.Amount, strings.ToUpper(p.Currency))),
			templates.WithTime(p.CreatedAt),
			templates.WithActionURL(courseURL(s.Brand.FrontendURL, c.ID)),
		),
	}
	if err := s.Mail.Dispatch(ctx, job); err != nil {
		helpers.LogError(s.Logger, "send receipt failed", err, logrus.Fields{"purchase_id": p.ID})
	}
}

func courseURL(frontend, courseID string) string {
	if frontend == "" {
		return ""
	}
	return strings.TrimRight(frontend, "/") + "/course/" + courseID
}
