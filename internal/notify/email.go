package notify

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strings"
	"unicode/utf8"
)

// SMTPConfig holds mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
	FromName string
}

// EmailNotifier sends the alert as an HTML mail over SMTP.
type EmailNotifier struct {
	config SMTPConfig
	auth   smtp.Auth
	// send is swappable for tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailNotifier(config SMTPConfig) *EmailNotifier {
	var auth smtp.Auth
	if config.User != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.User, config.Password, config.Host)
	}
	return &EmailNotifier{config: config, auth: auth, send: smtp.SendMail}
}

func (e *EmailNotifier) Channel() Channel { return ChannelEmail }

func (e *EmailNotifier) Notify(_ context.Context, alert Alert) error {
	if alert.Email == "" {
		return fmt.Errorf("no recipient address")
	}

	subject := fmt.Sprintf("%d new high-intent leads found", alert.Summary.High)

	fromHeader := e.config.From
	if strings.TrimSpace(e.config.FromName) != "" {
		fromHeader = fmt.Sprintf("%s <%s>", e.config.FromName, e.config.From)
	}

	msg := []string{
		"From: " + sanitizeHeader(fromHeader),
		"To: " + sanitizeHeader(alert.Email),
		"Subject: " + sanitizeHeader(subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
		"",
		renderHTML(alert),
	}

	addr := e.config.Host + ":" + e.config.Port
	if err := e.send(addr, e.auth, e.config.From, []string{alert.Email}, []byte(strings.Join(msg, "\r\n"))); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// sanitizeHeader strips CR/LF to keep user input from injecting headers.
func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", "")
}

func renderHTML(alert Alert) string {
	var b strings.Builder
	b.WriteString("<h2>New high-intent leads</h2>")
	fmt.Fprintf(&b, "<p>Your search matched %d posts: %d high, %d medium, %d low intent.</p>",
		alert.Summary.Total, alert.Summary.High, alert.Summary.Medium, alert.Summary.Low)

	b.WriteString("<ul>")
	for i, lead := range alert.Leads {
		if i == maxLeadsPerAlert {
			break
		}
		fmt.Fprintf(&b, `<li><a href="%s">%s</a> (%d%% confidence): %s</li>`,
			html.EscapeString(lead.Post.URL),
			html.EscapeString(string(lead.Post.Platform)),
			lead.Assessment.Confidence,
			html.EscapeString(truncate(lead.Post.Content, contentPreviewLen)),
		)
	}
	b.WriteString("</ul>")

	if alert.DashboardURL != "" {
		fmt.Fprintf(&b, `<p><a href="%s">Open your dashboard</a></p>`, html.EscapeString(alert.DashboardURL))
	}
	return b.String()
}

const (
	maxLeadsPerAlert  = 5
	contentPreviewLen = 200
)

// truncate cuts to n runes so multi-byte content never splits mid-character.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
