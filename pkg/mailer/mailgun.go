package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"

	"github.com/oksasatya/go-ddd-lms/pkg/mailer/templates"
)

// Mailgun wraps Mailgun client configuration.
type Mailgun struct {
	Domain string
	APIKey string
	Sender string
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{Domain: domain, APIKey: apiKey, Sender: sender}
}

// Configured reports whether all Mailgun settings are present.
func (m *Mailgun) Configured() bool {
	return m != nil && m.Domain != "" && m.APIKey != "" && m.Sender != ""
}

// Send sends an email via Mailgun. html is optional; if provided it will be used as HTML body.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	client := mg.NewMailgun(m.Domain, m.APIKey)
	msg := client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := client.Send(c, msg)
	return err
}

// Deliver renders job (when it names a template) and sends it.
func (m *Mailgun) Deliver(ctx context.Context, job EmailJob) error {
	subject, text, html, err := Render(job)
	if err != nil {
		return err
	}
	return m.Send(ctx, job.To, subject, text, html)
}

// Render resolves subject and bodies of job, preferring its template.
func Render(job EmailJob) (subject, text, html string, err error) {
	if job.Template == "" {
		return job.Subject, job.Text, job.HTML, nil
	}
	data := job.Data
	if data == nil {
		data = map[string]any{}
	}
	if v, ok := data["Email"]; !ok || v == "" {
		data["Email"] = job.To
	}
	return templates.Render(job.Template, data)
}
