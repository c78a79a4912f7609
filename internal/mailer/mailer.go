// Package mailer renders selection notification emails from templates.
//
// Delivery is behind the Sender interface; the service ships with a
// log-only sender and real SMTP wiring stays with the deployment.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/modurecruit/snspick/internal/selection"
	"github.com/modurecruit/snspick/internal/store"
)

// Message is a rendered notification.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// LogSender "delivers" by logging. For development and dry runs.
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) Send(_ context.Context, msg *Message) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("mail (log sender)", "to", msg.To, "subject", msg.Subject, "len", len(msg.Body))
	return nil
}

const defaultSelectedBody = `{{.Name}}님, 안녕하세요.

이번 캠페인에 선정되셨습니다. 축하드립니다!
({{.Reason}})

자세한 안내는 추후 이메일로 전달드립니다.
`

const defaultRejectedBody = `{{.Name}}님, 안녕하세요.

아쉽게도 이번 캠페인에는 선정되지 않으셨습니다.
({{.Reason}})

다음 기회에 다시 만나뵙기를 바랍니다.
`

// Config configures subjects and template bodies.
type Config struct {
	SubjectSelected string `yaml:"subject_selected"`
	SubjectRejected string `yaml:"subject_rejected"`
	BodySelected    string `yaml:"body_selected"`
	BodyRejected    string `yaml:"body_rejected"`
}

func (c *Config) defaults() {
	if c.SubjectSelected == "" {
		c.SubjectSelected = "[캠페인] 선정 안내"
	}
	if c.SubjectRejected == "" {
		c.SubjectRejected = "[캠페인] 심사 결과 안내"
	}
	if c.BodySelected == "" {
		c.BodySelected = defaultSelectedBody
	}
	if c.BodyRejected == "" {
		c.BodyRejected = defaultRejectedBody
	}
}

// Mailer renders and sends decision notifications.
type Mailer struct {
	sender   Sender
	config   Config
	selected *template.Template
	rejected *template.Template
}

// New parses the templates and returns a Mailer.
func New(sender Sender, cfg Config) (*Mailer, error) {
	cfg.defaults()
	sel, err := template.New("selected").Parse(cfg.BodySelected)
	if err != nil {
		return nil, fmt.Errorf("mailer: parse selected template: %w", err)
	}
	rej, err := template.New("rejected").Parse(cfg.BodyRejected)
	if err != nil {
		return nil, fmt.Errorf("mailer: parse rejected template: %w", err)
	}
	return &Mailer{sender: sender, config: cfg, selected: sel, rejected: rej}, nil
}

type templateData struct {
	Name   string
	Email  string
	Reason string
}

// Render produces the notification for one decision without sending it.
func (m *Mailer) Render(applicant *store.Applicant, result *selection.Result) (*Message, error) {
	data := templateData{
		Name:   applicant.Name,
		Email:  applicant.Email,
		Reason: result.Reason,
	}
	if data.Name == "" {
		data.Name = applicant.Email
	}

	tpl, subject := m.rejected, m.config.SubjectRejected
	if result.Selected {
		tpl, subject = m.selected, m.config.SubjectSelected
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("mailer: render: %w", err)
	}
	return &Message{To: applicant.Email, Subject: subject, Body: buf.String()}, nil
}

// NotifyDecision renders and delivers the notification.
func (m *Mailer) NotifyDecision(ctx context.Context, applicant *store.Applicant, result *selection.Result) error {
	msg, err := m.Render(applicant, result)
	if err != nil {
		return err
	}
	if err := m.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", msg.To, err)
	}
	return nil
}
