package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	mailtpl "github.com/oksasatya/go-blog-cms/pkg/mailer/templates"
)

// errPermanent marks jobs that can never succeed; they are dropped, not requeued
var errPermanent = errors.New("permanent")

// Worker renders queued jobs and hands them to a Sender
type Worker struct {
	Sender      Sender
	Logger      logrus.FieldLogger
	SendTimeout time.Duration
}

func NewWorker(sender Sender, logger logrus.FieldLogger) *Worker {
	return &Worker{Sender: sender, Logger: logger, SendTimeout: 15 * time.Second}
}

// Process delivers one job body. A permanent error means the message should be dropped.
func (w *Worker) Process(ctx context.Context, body []byte) error {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: decode job: %v", errPermanent, err)
	}
	if strings.TrimSpace(job.To) == "" {
		return fmt.Errorf("%w: job has no recipient", errPermanent)
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		var err error
		subject, text, html, err = mailtpl.Render(job.Template, job.Data)
		if err != nil {
			return fmt.Errorf("%w: render %s: %v", errPermanent, job.Template, err)
		}
	}

	c, cancel := context.WithTimeout(ctx, w.SendTimeout)
	defer cancel()
	if err := w.Sender.Send(c, job.To, subject, text, html); err != nil {
		return fmt.Errorf("send to %s: %w", job.To, err)
	}
	return nil
}

// IsPermanent reports whether retrying err is pointless
func IsPermanent(err error) bool { return errors.Is(err, errPermanent) }

// Run acks delivered jobs, drops permanent failures and requeues the rest
// until deliveries closes or ctx is done
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-deliveries:
			if !ok {
				return
			}
			err := w.Process(ctx, msg.Body)
			switch {
			case err == nil:
				_ = msg.Ack(false)
			case IsPermanent(err):
				w.warn(err, msg.MessageId, "dropping email job")
				_ = msg.Nack(false, false)
			default:
				w.warn(err, msg.MessageId, "email send failed, requeueing")
				_ = msg.Nack(false, true)
			}
		}
	}
}

func (w *Worker) warn(err error, id, msg string) {
	if w.Logger == nil {
		return
	}
	w.Logger.WithError(err).WithField("message_id", id).Warn(msg)
}
