package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"codequest/internal/metrics"
)

// EmailService delivers a message synchronously.
type EmailService interface {
	SendEmail(to, subject, msg string) error
}

// EmailDispatcher hands a message off for delivery, either inline or through a queue.
type EmailDispatcher interface {
	DispatchEmail(ctx context.Context, to, subject, body string) error
}

type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type emailService struct {
	settings SMTPSettings
	dialer   *gomail.Dialer
}

func NewEmailService(settings SMTPSettings) EmailService {
	if settings.From == "" {
		settings.From = settings.Username
	}
	return &emailService{
		settings: settings,
		dialer:   gomail.NewDialer(settings.Host, settings.Port, settings.Username, settings.Password),
	}
}

func (e *emailService) SendEmail(to, subject, msg string) error {
	m := gomail.NewMessage()

	m.SetHeader("From", e.settings.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", msg)

	if err := e.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SyncEmailDispatcher sends mail inline; used when no task queue is configured.
type SyncEmailDispatcher struct {
	Sender EmailService
}

func (d SyncEmailDispatcher) DispatchEmail(ctx context.Context, to, subject, body string) error {
	if err := d.Sender.SendEmail(to, subject, body); err != nil {
		metrics.EmailsSentTotal.WithLabelValues("sync", "error").Inc()
		log.Error().Err(err).Str("to", to).Msg("Failed to send email")
		return err
	}
	metrics.EmailsSentTotal.WithLabelValues("sync", "success").Inc()
	return nil
}
