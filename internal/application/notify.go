package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/campusbuddy/events-api/pkg/mailer"
)

// Publisher is the narrow contract this layer holds on the notification
// queue. *helpers.RabbitPublisher satisfies it in production.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// publishEmail enqueues an email job. Delivery is best-effort: a failed
// enqueue is logged and never surfaced to the caller, so it can never roll
// back the mutation that triggered it.
func publishEmail(ctx context.Context, pub Publisher, logger *logrus.Logger, job mailer.EmailJob) {
	if pub == nil {
		return
	}
	if err := pub.PublishJSON(ctx, job); err != nil && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"to":       job.To,
			"template": job.Template,
		}).Warn("email enqueue failed")
	}
}
