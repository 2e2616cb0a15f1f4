package service

import (
	"context"
	"errors"
	"testing"

	"verify_keep/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESMailer_Send(t *testing.T) {
	t.Run("text and html with reply-to", func(t *testing.T) {
		fake := &fakeSES{}
		m := &SESMailer{client: fake, from: "no-reply@example.com"}

		err := m.Send(context.Background(), &Message{
			To:      "inbox@example.com",
			ReplyTo: "visitor@example.com",
			Subject: "Hi",
			Text:    "plain",
			HTML:    "<p>html</p>",
		})
		require.NoError(t, err)
		require.NotNil(t, fake.input)

		assert.Equal(t, "no-reply@example.com", aws.ToString(fake.input.FromEmailAddress))
		assert.Equal(t, []string{"inbox@example.com"}, fake.input.Destination.ToAddresses)
		assert.Equal(t, []string{"visitor@example.com"}, fake.input.ReplyToAddresses)
		assert.Equal(t, "Hi", aws.ToString(fake.input.Content.Simple.Subject.Data))
		assert.Equal(t, "plain", aws.ToString(fake.input.Content.Simple.Body.Text.Data))
		assert.Equal(t, "<p>html</p>", aws.ToString(fake.input.Content.Simple.Body.Html.Data))
	})

	t.Run("text only", func(t *testing.T) {
		fake := &fakeSES{}
		m := &SESMailer{client: fake, from: "no-reply@example.com"}

		require.NoError(t, m.Send(context.Background(), &Message{To: "a@example.com", Subject: "s", Text: "t"}))
		assert.Nil(t, fake.input.Content.Simple.Body.Html)
		assert.Empty(t, fake.input.ReplyToAddresses)
	})

	t.Run("client error is returned", func(t *testing.T) {
		fake := &fakeSES{err: errors.New("throttled")}
		m := &SESMailer{client: fake, from: "no-reply@example.com"}

		err := m.Send(context.Background(), &Message{To: "a@example.com", Subject: "s", Text: "t"})
		assert.EqualError(t, err, "throttled")
	})
}

func TestNewSESMailer_MissingStaticCredentials(t *testing.T) {
	cfg := &config.Config{}
	cfg.SES.Region = "ap-northeast-1"
	cfg.SES.AuthType = "static_credentials"

	m, err := NewSESMailer(context.Background(), cfg)
	assert.Nil(t, m)
	assert.Error(t, err)
}

func TestNewMailer(t *testing.T) {
	cfg := &config.Config{}

	cfg.Mailer.Type = "log"
	m, err := NewMailer(cfg)
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, m)

	cfg.Mailer.Type = "smtp"
	cfg.SMTP.Host = "localhost"
	cfg.SMTP.Port = 1025
	m, err = NewMailer(cfg)
	require.NoError(t, err)
	assert.IsType(t, &SmtpMailer{}, m)

	cfg.Mailer.Type = "ses"
	cfg.SES.AuthType = "static_credentials"
	m, err = NewMailer(cfg)
	assert.Error(t, err)
	assert.Nil(t, m)

	cfg.Mailer.Type = "carrier-pigeon"
	m, err = NewMailer(cfg)
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, m)
}

func TestSmtpMailer_CanceledContext(t *testing.T) {
	cfg := &config.Config{}
	cfg.SMTP.Host = "localhost"
	cfg.SMTP.Port = 1025
	m := NewSmtpMailer(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Send(ctx, &Message{To: "a@example.com", Subject: "s", Text: "t"})
	assert.ErrorIs(t, err, context.Canceled)
}
