package templates

import (
	"fmt"
	"time"
)

// Brand carries the sender identity rendered into every email.
type Brand struct {
	AppName     string
	CompanyName string
	LogoURL     string
	SupportURL  string
	FrontendURL string
}

// Option pattern
type Option func(*EmailData)

func WithCode(code string) Option       { return func(d *EmailData) { d.Code = code } }
func WithActionURL(url string) Option   { return func(d *EmailData) { d.ActionURL = url } }
func WithCourse(title string) Option    { return func(d *EmailData) { d.CourseTitle = title } }
func WithAmount(amount string) Option   { return func(d *EmailData) { d.Amount = amount } }
func WithTime(t time.Time) Option {
	return func(d *EmailData) { d.Time = t.UTC().Format("02 January 2006, 15:04") }
}

func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04")
		d.ExpiresInText = humanizeDuration(time.Until(utc))
	}
}

// NewData fills brand fields, then applies opts.
func NewData(b Brand, typ, name, email string, opts ...Option) map[string]any {
	d := EmailData{
		Name:        name,
		Email:       email,
		Type:        typ,
		CompanyName: b.CompanyName,
		AppName:     b.AppName,
		LogoURL:     b.LogoURL,
		SupportURL:  b.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return ToMap(d)
}

func humanizeDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	if d < time.Minute {
		return "less than a minute"
	}
	if d < time.Hour {
		m := int(d.Minutes())
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	h := int(d.Hours())
	if h == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", h)
}
