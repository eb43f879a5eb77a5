// Package mailer renders transactional emails and relays them over SMTP.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/gartstein/clubhire/internal/hiring/models"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Config holds the SMTP relay settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// ClubName is used in subjects and signatures.
	ClubName string
}

// Sender is the part of gomail.Dialer the mailer needs.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type message struct {
	subject string
	body    *template.Template
}

// Mailer implements events.Dispatcher on top of an SMTP relay.
type Mailer struct {
	sender    Sender
	from      string
	club      string
	templates map[models.NotificationKind]message
	logger    *zap.Logger
}

// New creates a Mailer relaying through the configured SMTP server.
func New(cfg Config, logger *zap.Logger) *Mailer {
	return NewWithSender(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg, logger)
}

// NewWithSender creates a Mailer using sender for delivery.
func NewWithSender(sender Sender, cfg Config, logger *zap.Logger) *Mailer {
	club := cfg.ClubName
	if club == "" {
		club = "The Club"
	}
	return &Mailer{
		sender:    sender,
		from:      cfg.From,
		club:      club,
		templates: parseTemplates(),
		logger:    logger.Named("mailer"),
	}
}

// Send renders and delivers n. Unknown kinds are an error.
func (m *Mailer) Send(ctx context.Context, n models.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := m.Render(n)
	if err != nil {
		return err
	}
	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send %s: %w", n.Kind, err)
	}
	m.logger.Info("Email sent",
		zap.String("kind", string(n.Kind)),
		zap.String("recipient", n.Recipient),
	)
	return nil
}

// Render builds the email for n without sending it.
func (m *Mailer) Render(n models.Notification) (*gomail.Message, error) {
	subject, body, err := m.renderBody(n)
	if err != nil {
		return nil, err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", n.Recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	return msg, nil
}

func (m *Mailer) renderBody(n models.Notification) (string, string, error) {
	tmpl, ok := m.templates[n.Kind]
	if !ok {
		return "", "", fmt.Errorf("no template for notification kind %q", n.Kind)
	}
	if n.Recipient == "" {
		return "", "", fmt.Errorf("notification %s has no recipient", n.Kind)
	}

	data := map[string]string{"Club": m.club}
	for k, v := range n.Data {
		data[k] = v
	}
	var body bytes.Buffer
	if err := tmpl.body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", n.Kind, err)
	}
	return fmt.Sprintf("%s | %s", m.club, tmpl.subject), body.String(), nil
}
