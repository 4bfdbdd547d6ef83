// Package notifier отправляет письма о новых сообщениях формы обратной связи.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"strings"

	"github.com/magabrotheeeer/documind-api/internal/lib/sl"
	"github.com/magabrotheeeer/documind-api/internal/lib/smtp"
	"github.com/magabrotheeeer/documind-api/internal/models"
)

// Service превращает события contact.submitted в письма.
type Service struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(log *slog.Logger, transport smtp.TransportInterface) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// HandleContactSubmitted разбирает событие и отправляет уведомление.
// Некорректное тело события не повторяется: ошибка логируется, сообщение подтверждается.
func (s *Service) HandleContactSubmitted(_ context.Context, body []byte) error {
	const op = "notifier.HandleContactSubmitted"
	log := s.log.With(slog.String("op", op))

	var event models.ContactSubmittedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("failed to unmarshal message body, dropping", sl.Err(err))
		return nil
	}

	subject := "New contact form submission from " + event.Name
	if err := s.sendEmail([]string{s.transport.Recipient()}, subject, contactBody(event)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("contact notification sent", slog.String("event_id", event.EventID), slog.String("contact_id", event.ContactID))
	return nil
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// headerValue убирает переводы строк и кодирует не-ASCII по RFC 2047.
func headerValue(v string) string {
	return mime.QEncoding.Encode("utf-8", lineBreaks.Replace(v))
}

func contactBody(e models.ContactSubmittedEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", lineBreaks.Replace(e.Name))
	fmt.Fprintf(&b, "Email: %s\n", lineBreaks.Replace(e.Email))
	if e.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", lineBreaks.Replace(e.Company))
	}
	if e.Role != "" {
		fmt.Fprintf(&b, "Role: %s\n", lineBreaks.Replace(e.Role))
	}
	fmt.Fprintf(&b, "Submitted: %s\n\n", e.CreatedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	b.WriteString(e.Message)
	return b.String()
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + lineBreaks.Replace(s.transport.GetSMTPUser()),
		"To: " + lineBreaks.Replace(strings.Join(to, ";")),
		"Subject: " + headerValue(subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() { _ = client.Close() }()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", s.transport.GetSMTPUser()), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}
	return nil
}
