package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Publisher enqueues JSON messages (RabbitMQ in production).
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Dispatcher hands email jobs to the queue when one is configured, sends them
// through Mailgun directly otherwise, and only logs them when sending is disabled.
type Dispatcher struct {
	Pub     Publisher
	Direct  *Mailgun
	Enabled bool
	Logger  *logrus.Logger
}

func NewDispatcher(pub Publisher, direct *Mailgun, enabled bool, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{Pub: pub, Direct: direct, Enabled: enabled, Logger: logger}
}

func (d *Dispatcher) Dispatch(ctx context.Context, job EmailJob) error {
	if !d.Enabled {
		d.logSkipped(job, "mail sending disabled")
		return nil
	}
	if d.Pub != nil {
		return d.Pub.PublishJSON(ctx, job)
	}
	if d.Direct.Configured() {
		return d.Direct.Deliver(ctx, job)
	}
	d.logSkipped(job, "no mail transport configured")
	return nil
}

func (d *Dispatcher) logSkipped(job EmailJob, reason string) {
	if d.Logger == nil {
		return
	}
	entry := d.Logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template})
	// OTP codes are only ever logged in development-level verbosity.
	if d.Logger.IsLevelEnabled(logrus.DebugLevel) {
		entry = entry.WithField("data", job.Data)
	}
	entry.Info(reason)
}
