package notifier

import (
	"context"
	"fmt"
	"time"

	"CandleAlert/internal/model"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridConfig is everything the email channel needs, passed in at construction.
type SendGridConfig struct {
	APIKey  string
	From    string
	To      string
	Subject string
	Asset   string
}

// mailSender is the part of *sendgrid.Client used here.
type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridNotifier submits alerts through the SendGrid v3 mail API.
type SendGridNotifier struct {
	cfg    SendGridConfig
	client mailSender
	now    func() time.Time
}

// NewSendGridNotifier creates an email notifier. An empty subject falls back to the default title.
func NewSendGridNotifier(cfg SendGridConfig) *SendGridNotifier {
	return newSendGridNotifier(cfg, sendgrid.NewSendClient(cfg.APIKey))
}

func newSendGridNotifier(cfg SendGridConfig, client mailSender) *SendGridNotifier {
	if cfg.Subject == "" {
		cfg.Subject = DefaultTemplate.Title
	}
	if cfg.Asset == "" {
		cfg.Asset = DefaultTemplate.Asset
	}
	return &SendGridNotifier{cfg: cfg, client: client, now: time.Now}
}

func (s *SendGridNotifier) Name() string { return "email" }

// Notify sends one message. A transport error or non-2xx status is a *model.NotifyError.
func (s *SendGridNotifier) Notify(ctx context.Context, eval *model.Evaluation) error {
	tmpl := Template{Title: s.cfg.Subject, Asset: s.cfg.Asset}
	body := tmpl.HTML(eval, s.now())

	msg := mail.NewSingleEmail(mail.NewEmail("", s.cfg.From), s.cfg.Subject, mail.NewEmail("", s.cfg.To), "", body)
	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return &model.NotifyError{Channel: s.Name(), Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &model.NotifyError{
			Channel: s.Name(),
			Err:     fmt.Errorf("sendgrid API error: status %d, body: %s", resp.StatusCode, resp.Body),
		}
	}
	return nil
}
