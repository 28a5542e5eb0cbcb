package email

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/cmlabs-hris/guardops-backend/internal/config"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/mailqueue"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

type mailTemplate struct {
	file    string
	subject string
}

var mailTemplates = map[string]mailTemplate{
	mailqueue.TypeWelcome:       {file: "welcome.html", subject: "Welcome to GuardOps"},
	mailqueue.TypeUserCreated:   {file: "user_created.html", subject: "Your GuardOps account"},
	mailqueue.TypeExpenseStatus: {file: "expense_status.html", subject: "Expense report update"},
}

// Sender renders queued messages and delivers them over SMTP.
type Sender struct {
	cfg       config.SMTPConfig
	client    *mail.Client
	templates *template.Template
}

// NewSender leaves the client unset when SMTP_HOST is empty; Send then only logs.
func NewSender(cfg config.SMTPConfig) (*Sender, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	s := &Sender{cfg: cfg, templates: tmpl}
	if cfg.Host == "" {
		return s, nil
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.DialTimeout),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	s.client, err = mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return s, nil
}

// Build renders msg into a ready-to-send mail. All errors are permanent.
func (s *Sender) Build(msg mailqueue.Message) (*mail.Msg, error) {
	mt, ok := mailTemplates[msg.Type]
	if !ok {
		return nil, mailqueue.Permanent(fmt.Errorf("unknown mail type %q", msg.Type))
	}
	tmpl := s.templates.Lookup(mt.file)
	if tmpl == nil {
		return nil, mailqueue.Permanent(fmt.Errorf("missing template %s", mt.file))
	}

	m := mail.NewMsg()
	if err := m.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
		return nil, mailqueue.Permanent(fmt.Errorf("invalid sender: %w", err))
	}
	if err := m.To(msg.To); err != nil {
		return nil, mailqueue.Permanent(fmt.Errorf("invalid recipient: %w", err))
	}
	m.Subject(mt.subject)
	if err := m.SetBodyHTMLTemplate(tmpl, msg.Data); err != nil {
		return nil, mailqueue.Permanent(fmt.Errorf("failed to render %s: %w", mt.file, err))
	}
	return m, nil
}

// Send implements mailqueue.Sender.
func (s *Sender) Send(ctx context.Context, msg mailqueue.Message) error {
	m, err := s.Build(msg)
	if err != nil {
		return err
	}

	// Skip sending if SMTP is not configured
	if s.client == nil {
		slog.Warn("SMTP not configured, skipping email send", "to", msg.To, "type", msg.Type)
		return nil
	}

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send %s mail: %w", msg.Type, err)
	}
	slog.Info("Email sent successfully", "to", msg.To, "type", msg.Type)
	return nil
}

func (s *Sender) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
