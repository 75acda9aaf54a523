package mailer

import "context"

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template+Data or Subject+Text(+HTML) must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "welcome" or "account_created"
	Data     map[string]any `json:"data,omitempty"`
}

// JSONPublisher is satisfied by helpers.RabbitPublisher
type JSONPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Queue enqueues email jobs for the worker
type Queue struct {
	Pub JSONPublisher
}

func NewQueue(pub JSONPublisher) *Queue { return &Queue{Pub: pub} }

func (q *Queue) Enqueue(ctx context.Context, job EmailJob) error {
	return q.Pub.PublishJSON(ctx, job)
}
