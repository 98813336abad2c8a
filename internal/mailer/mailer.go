// Package mailer sends account emails over SMTP.
package mailer

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"gopkg.in/gomail.v2"
)

// Mailer sends account-related email through an SMTP relay.
type Mailer struct {
	config  config
	baseURL string
	dialer  *gomail.Dialer
}

// config holds SMTP settings, parsed from SMTP_* environment variables.
type config struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"465"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
}

func (c config) validate() error {
	if c.Host == "" {
		return fmt.Errorf("missing SMTP_HOST environment variable")
	}
	if c.Username == "" {
		return fmt.Errorf("missing SMTP_USERNAME environment variable")
	}
	if c.Password == "" {
		return fmt.Errorf("missing SMTP_PASSWORD environment variable")
	}
	if c.From == "" {
		return fmt.Errorf("missing SMTP_FROM environment variable")
	}
	return nil
}

// NewMailer creates a Mailer from SMTP_* environment variables. baseURL is
// the externally reachable API root used to build confirmation links.
func NewMailer(baseURL string) (*Mailer, error) {
	cfg, err := env.ParseAs[config]()
	if err != nil {
		return nil, fmt.Errorf("parsing mailer environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Mailer{
		config:  cfg,
		baseURL: baseURL,
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}, nil
}

// SendConfirmation sends the email-confirmation message with a signed token
// link back to the API.
func (m *Mailer) SendConfirmation(to, username, token string) error {
	link := fmt.Sprintf("%s/api/auth/confirmed_email/%s", m.baseURL, token)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Confirm your email")
	msg.SetBody("text/html", fmt.Sprintf(
		`<p>Hi %s,</p><p>Please confirm your email address by following <a href=%q>this link</a>.</p>`,
		username, link,
	))

	return m.dialer.DialAndSend(msg)
}
