package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strconv"

	"github.com/istore/storefront/domain"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html.tmpl"))

// SMTPConfig locates the outgoing mail server.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Addr returns host:port.
func (c SMTPConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

// Mailer renders notifications as HTML email and sends them over SMTP.
type Mailer struct {
	cfg  SMTPConfig
	send SendFunc
}

var _ Sink = (*Mailer)(nil)

// NewMailer returns a Mailer using smtp.SendMail. A nil send uses it too.
func NewMailer(cfg SMTPConfig, send SendFunc) *Mailer {
	if send == nil {
		send = smtp.SendMail
	}
	return &Mailer{cfg: cfg, send: send}
}

// RenderPurchase renders the purchase confirmation body.
func RenderPurchase(p domain.Purchase) ([]byte, error) {
	return render("purchase.html.tmpl", p)
}

// RenderProductRemoved renders the product removal body.
func RenderProductRemoved(r domain.ProductRemoval) ([]byte, error) {
	return render("product_removed.html.tmpl", r)
}

func render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// PurchaseConfirmed emails the purchaser.
func (m *Mailer) PurchaseConfirmed(_ context.Context, p domain.Purchase) error {
	if p.Purchaser.Email == "" {
		return fmt.Errorf("purchase %s: purchaser has no email", p.Ticket.Code)
	}
	body, err := RenderPurchase(p)
	if err != nil {
		return err
	}
	return m.deliver(p.Purchaser.Email, "Purchase Confirmation", body)
}

// ProductRemoved emails the product owner.
func (m *Mailer) ProductRemoved(_ context.Context, r domain.ProductRemoval) error {
	body, err := RenderProductRemoved(r)
	if err != nil {
		return err
	}
	return m.deliver(r.Owner, "Product Removed", body)
}

func (m *Mailer) deliver(to, subject string, body []byte) error {
	msg := composeMessage(m.cfg.From, to, subject, body)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := m.send(m.cfg.Addr(), auth, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func composeMessage(from, to, subject string, body []byte) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: iStore App <%s>\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	buf.Write(body)
	return buf.Bytes()
}
