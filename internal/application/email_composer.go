package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
	"github.com/oksasatya/go-blog-cms/pkg/mailer"
	mailtpl "github.com/oksasatya/go-blog-cms/pkg/mailer/templates"
)

// EmailComposer builds account emails and queues them. A nil composer or
// queue turns every call into a no-op.
type EmailComposer struct {
	Queue       MailQueue
	AppName     string
	CompanyName string
	LoginURL    string
	Logger      logrus.FieldLogger
}

func (e *EmailComposer) data(u *entity.User) map[string]any {
	return mailtpl.ToMap(mailtpl.EmailData{
		Username:    u.Username,
		Email:       u.Email,
		Role:        string(u.Role),
		CompanyName: e.CompanyName,
		AppName:     e.AppName,
		LoginURL:    e.LoginURL,
		Time:        time.Now().UTC().Format("02 January 2006, 15:04"),
	})
}

func (e *EmailComposer) send(ctx context.Context, template string, u *entity.User) {
	if e == nil || e.Queue == nil {
		return
	}
	job := mailer.EmailJob{To: u.Email, Template: template, Data: e.data(u)}
	if err := e.Queue.Enqueue(ctx, job); err != nil && e.Logger != nil {
		e.Logger.WithError(err).WithFields(logrus.Fields{"template": template, "user_id": u.ID}).Warn("enqueue email failed")
	}
}

// Welcome is sent after self registration
func (e *EmailComposer) Welcome(ctx context.Context, u *entity.User) {
	e.send(ctx, mailtpl.Welcome, u)
}

// AccountCreated is sent when an admin creates the account
func (e *EmailComposer) AccountCreated(ctx context.Context, u *entity.User) {
	e.send(ctx, mailtpl.AccountCreated, u)
}
