package notifications

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	htmltemplate "html/template"
	"net/smtp"
	"strconv"
	"strings"
	texttemplate "text/template"
	"time"

	"eventhive/internal/shared/config"
	"eventhive/pkg/logger"
)

// EmailSender performs the final delivery of a notification.
type EmailSender interface {
	Send(ctx context.Context, notification *EmailNotification) error
}

type emailView struct {
	Subject string
	Name    string
	Data    map[string]interface{}
}

const (
	htmlLayout = `<h2>{{.Subject}}</h2><p>Hi {{.Name}},</p>{{template "body" .}}<p>Best regards,<br>EventHive Team</p>`
	textLayout = "Hi {{.Name}},\n\n{{template \"body\" .}}\n\nBest regards,\nEventHive Team"
)

var bodies = map[NotificationType]string{
	NotificationTypeBookingConfirmed: `Your seat for {{index .Data "event_name"}} on {{index .Data "event_date"}} is confirmed. Amount paid: {{index .Data "price"}}.`,
	NotificationTypeBookingWaitlisted: `{{index .Data "event_name"}} is currently full. You are on the waitlist and will hear from us if a seat opens up.`,
	NotificationTypeBookingCancelled: `Your booking for {{index .Data "event_name"}} was cancelled. {{index .Data "message"}} Refund: {{index .Data "refund_amount"}}, fee: {{index .Data "deduction_amount"}}.`,
	NotificationTypeSeatAvailable:    `A seat just opened up for {{index .Data "event_name"}}. Book now before it is taken.`,
}

type renderedTemplates struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

func parseTemplates() map[NotificationType]renderedTemplates {
	out := make(map[NotificationType]renderedTemplates, len(bodies))
	for notType, body := range bodies {
		h := htmltemplate.Must(htmltemplate.New("html").Parse(htmlLayout))
		htmltemplate.Must(h.New("body").Parse("<p>" + body + "</p>"))

		t := texttemplate.Must(texttemplate.New("text").Parse(textLayout))
		texttemplate.Must(t.New("body").Parse(body))

		out[notType] = renderedTemplates{html: h, text: t}
	}
	return out
}

var templates = parseTemplates()

// renderContent returns the html and plain text bodies for a notification.
func renderContent(notification *EmailNotification) (string, string, error) {
	tmpl, ok := templates[notification.Type]
	if !ok {
		return "", "", fmt.Errorf("no email template for notification type %q", notification.Type)
	}

	view := emailView{
		Subject: notification.Subject,
		Name:    notification.RecipientName,
		Data:    notification.TemplateData,
	}
	if view.Name == "" {
		view.Name = notification.RecipientEmail
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := tmpl.html.ExecuteTemplate(&htmlBuf, "html", view); err != nil {
		return "", "", fmt.Errorf("failed to render html body: %w", err)
	}
	if err := tmpl.text.ExecuteTemplate(&textBuf, "text", view); err != nil {
		return "", "", fmt.Errorf("failed to render text body: %w", err)
	}
	return htmlBuf.String(), textBuf.String(), nil
}

// SMTPSender delivers notifications through an SMTP relay using STARTTLS.
type SMTPSender struct {
	config config.EmailConfig
	log    *logger.Logger
}

func NewSMTPSender(cfg config.EmailConfig, log *logger.Logger) (*SMTPSender, error) {
	if err := validateSMTPConfig(cfg); err != nil {
		return nil, err
	}
	return &SMTPSender{config: cfg, log: log}, nil
}

func validateSMTPConfig(cfg config.EmailConfig) error {
	if cfg.SMTPHost == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if cfg.SMTPPort <= 0 || cfg.SMTPPort > 65535 {
		return fmt.Errorf("SMTP port must be between 1 and 65535")
	}
	if cfg.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

func (s *SMTPSender) Send(ctx context.Context, notification *EmailNotification) error {
	htmlBody, textBody, err := renderContent(notification)
	if err != nil {
		return err
	}

	message := s.buildMessage(notification.RecipientEmail, notification.Subject, htmlBody, textBody)

	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}
	addr := s.config.SMTPHost + ":" + strconv.Itoa(s.config.SMTPPort)

	if err := s.sendWithSTARTTLS(addr, auth, notification.RecipientEmail, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.log.InfoContext(ctx, "Email sent", "type", notification.Type, "to", notification.RecipientEmail)
	return nil
}

func (s *SMTPSender) sendWithSTARTTLS(addr string, auth smtp.Auth, to string, message []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Quit()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err = client.StartTLS(&tls.Config{ServerName: s.config.SMTPHost}); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return w.Close()
}

func (s *SMTPSender) buildMessage(to, subject, htmlBody, textBody string) []byte {
	boundary := "boundary_" + strconv.FormatInt(time.Now().UnixNano(), 10)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n", boundary, textBody)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", boundary, htmlBody)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String())
}

// LogSender writes notifications to the log instead of sending mail.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, notification *EmailNotification) error {
	_, textBody, err := renderContent(notification)
	if err != nil {
		return err
	}
	s.log.InfoContext(ctx, "Email notification (log only)",
		"type", notification.Type,
		"to", notification.RecipientEmail,
		"subject", notification.Subject,
		"body", textBody,
	)
	return nil
}
