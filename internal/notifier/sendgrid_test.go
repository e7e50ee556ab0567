package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"CandleAlert/internal/model"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailSender struct {
	resp *rest.Response
	err  error
	sent []*mail.SGMailV3
}

func (f *fakeMailSender) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	return f.resp, f.err
}

func testConfig() SendGridConfig {
	return SendGridConfig{APIKey: "SG.test", From: "bot@example.com", To: "trader@example.com"}
}

func TestSendGridNotifier_Success(t *testing.T) {
	fake := &fakeMailSender{resp: &rest.Response{StatusCode: 202}}
	n := newSendGridNotifier(testConfig(), fake)
	n.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, n.Notify(context.Background(), triggeredEvaluation(31000)))
	require.Len(t, fake.sent, 1)

	msg := fake.sent[0]
	assert.Equal(t, "bot@example.com", msg.From.Address)
	assert.Equal(t, "Bitcoin Trading Signal Alert", msg.Subject)
	require.Len(t, msg.Personalizations, 1)
	require.Len(t, msg.Personalizations[0].To, 1)
	assert.Equal(t, "trader@example.com", msg.Personalizations[0].To[0].Address)

	var htmlBody string
	for _, c := range msg.Content {
		if c.Type == "text/html" {
			htmlBody = c.Value
		}
	}
	assert.Contains(t, htmlBody, "$31000.00")
	assert.Contains(t, htmlBody, "2024-03-01 12:00:00 UTC")
}

func TestSendGridNotifier_Rejected(t *testing.T) {
	fake := &fakeMailSender{resp: &rest.Response{StatusCode: 401, Body: `{"errors":[{"message":"bad key"}]}`}}
	n := newSendGridNotifier(testConfig(), fake)

	err := n.Notify(context.Background(), triggeredEvaluation(31000))
	require.Error(t, err)

	var ne *model.NotifyError
	require.True(t, errors.As(err, &ne))
	assert.Equal(t, "email", ne.Channel)
	assert.Contains(t, err.Error(), "status 401")
}

func TestSendGridNotifier_Unreachable(t *testing.T) {
	fake := &fakeMailSender{err: errors.New("dial tcp: no route to host")}
	n := newSendGridNotifier(testConfig(), fake)

	err := n.Notify(context.Background(), triggeredEvaluation(31000))

	var ne *model.NotifyError
	require.True(t, errors.As(err, &ne))
	assert.Contains(t, err.Error(), "no route to host")
}

func TestNewSendGridNotifier(t *testing.T) {
	cfg := testConfig()
	cfg.Subject = "ETH alert"
	n := NewSendGridNotifier(cfg)
	assert.Equal(t, "ETH alert", n.cfg.Subject)
	assert.Equal(t, "BTC", n.cfg.Asset)
	assert.NotNil(t, n.client)
}
