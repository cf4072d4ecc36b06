// Package mail sends transactional email through SendGrid, or through the
// log when no API key is configured.
//
//	err := mail.To("cora@example.com", "Cora").
//	    Subject("Order #12 confirmed").
//	    Template(orderPlacedTmpl, data).
//	    Send(ctx)
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/shashiranjanraj/marketplace/config"
	"github.com/shashiranjanraj/marketplace/pkg/logger"
)

// Message is one outgoing email.
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

var (
	mu      sync.RWMutex
	current Mailer
)

// Use replaces the process-wide mailer.
func Use(m Mailer) {
	mu.Lock()
	current = m
	mu.Unlock()
}

// Default returns the configured mailer, building it on first use.
func Default() Mailer {
	mu.RLock()
	m := current
	mu.RUnlock()
	if m != nil {
		return m
	}

	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		current = FromConfig()
	}
	return current
}

// FromConfig builds a SendGrid mailer when SENDGRID_API_KEY is set and a
// log mailer otherwise.
func FromConfig() Mailer {
	if key := config.SendGridAPIKey(); key != "" {
		return NewSendGrid(key, config.MailFrom(), config.MailFromName())
	}
	return &LogMailer{}
}

// ── SendGrid ─────────────────────────────────────────────────────────────────

type SendGridMailer struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

func NewSendGrid(apiKey, from, fromName string) *SendGridMailer {
	return &SendGridMailer{client: sendgrid.NewSendClient(apiKey), from: from, fromName: fromName}
}

func (s *SendGridMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.check(); err != nil {
		return err
	}

	email := sgmail.NewSingleEmail(
		sgmail.NewEmail(s.fromName, s.from),
		msg.Subject,
		sgmail.NewEmail(msg.ToName, msg.To),
		msg.Text,
		msg.HTML,
	)

	resp, err := s.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("mail: sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("mail: sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}

	logger.WithCtx(ctx).Info("mail sent", "to", msg.To, "subject", msg.Subject, "status", resp.StatusCode)
	return nil
}

// ── Log ──────────────────────────────────────────────────────────────────────

// LogMailer writes messages to the log and keeps them for inspection.
type LogMailer struct {
	mu   sync.Mutex
	sent []Message
}

func (l *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.check(); err != nil {
		return err
	}
	l.mu.Lock()
	l.sent = append(l.sent, msg)
	l.mu.Unlock()

	logger.WithCtx(ctx).Info("mail (log driver)", "to", msg.To, "subject", msg.Subject)
	return nil
}

// Sent returns a copy of every message sent so far.
func (l *LogMailer) Sent() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Message(nil), l.sent...)
}

func (m Message) check() error {
	switch {
	case strings.TrimSpace(m.To) == "":
		return errors.New("mail: recipient is empty")
	case m.Subject == "":
		return errors.New("mail: subject is empty")
	case m.Text == "" && m.HTML == "":
		return errors.New("mail: body is empty")
	}
	return nil
}

// ── Builder ──────────────────────────────────────────────────────────────────

// Builder assembles a Message fluently. A template error is kept and
// returned by Send.
type Builder struct {
	msg Message
	err error
}

func To(address, name string) *Builder {
	return &Builder{msg: Message{To: address, ToName: name}}
}

func (b *Builder) Subject(s string) *Builder {
	b.msg.Subject = s
	return b
}

// Text sets the plain-text alternative.
func (b *Builder) Text(s string) *Builder {
	b.msg.Text = s
	return b
}

// Template renders tmpl with data into the HTML body.
func (b *Builder) Template(tmpl *template.Template, data interface{}) *Builder {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		b.err = fmt.Errorf("mail: render %s: %w", tmpl.Name(), err)
		return b
	}
	b.msg.HTML = buf.String()
	return b
}

// Message returns the assembled message.
func (b *Builder) Message() (Message, error) {
	return b.msg, b.err
}

// Send delivers through Default().
func (b *Builder) Send(ctx context.Context) error {
	return b.SendWith(ctx, Default())
}

func (b *Builder) SendWith(ctx context.Context, m Mailer) error {
	if b.err != nil {
		return b.err
	}
	return m.Send(ctx, b.msg)
}
