package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"github.com/Ananth-NQI/servicebook-backend/internal/logger"
)

// Notifier delivers one HTML email
type Notifier interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Email is a rendered message ready for a Notifier
type Email struct {
	To       string
	Subject  string
	HTML     string
	Template string // template name, for logs
}

// SendGridNotifier sends mail through the SendGrid v3 API
type SendGridNotifier struct {
	client  *sendgrid.Client
	from    *mail.Email
	sandbox bool
}

func NewSendGridNotifier(apiKey, fromEmail, fromName string, sandbox bool) *SendGridNotifier {
	return &SendGridNotifier{
		client:  sendgrid.NewSendClient(apiKey),
		from:    mail.NewEmail(fromName, fromEmail),
		sandbox: sandbox,
	}
}

func (n *SendGridNotifier) Send(ctx context.Context, to, subject, html string) error {
	msg := mail.NewSingleEmail(n.from, subject, mail.NewEmail("", to), "", html)
	if n.sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}

	resp, err := n.client.SendWithContext(ctx, msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogNotifier only logs outgoing mail. Used when no SendGrid key is configured.
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, to, subject, _ string) error {
	logger.Log.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email not sent, no provider configured")
	return nil
}

// Dispatcher sends emails without holding up the caller. Failures are logged.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewDispatcher(n Notifier, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{notifier: n, timeout: timeout}
}

// Deliver sends e and waits for the outcome.
func (d *Dispatcher) Deliver(ctx context.Context, e Email) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.notifier.Send(ctx, e.To, e.Subject, e.HTML); err != nil {
		return &NotificationError{To: e.To, Template: e.Template, Err: err}
	}
	return nil
}

// Dispatch sends each email in the background.
func (d *Dispatcher) Dispatch(emails ...Email) {
	for _, e := range emails {
		if e.To == "" {
			continue
		}
		d.wg.Add(1)
		go func(e Email) {
			defer d.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Log.WithField("template", e.Template).Errorf("Panic while sending email: %v", r)
				}
			}()

			if err := d.Deliver(context.Background(), e); err != nil {
				logger.Log.WithError(err).WithFields(logrus.Fields{
					"to":       e.To,
					"template": e.Template,
				}).Error("Failed to send email")
				return
			}
			logger.Log.WithFields(logrus.Fields{"to": e.To, "template": e.Template}).Debug("Email sent")
		}(e)
	}
}

// Wait blocks until every dispatched email has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
