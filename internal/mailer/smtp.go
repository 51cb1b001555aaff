package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/daviddao/taskdawn/internal/types"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// Gmail submission defaults.
const (
	DefaultSMTPHost = "smtp.gmail.com"
	DefaultSMTPPort = 587
)

// ErrNoPassword is returned when an SMTP account has no app password.
var ErrNoPassword = errors.New("smtp: account has no app password")

// SMTPSender submits digests over SMTP with STARTTLS and PLAIN auth,
// logging in as the account with its app password.
type SMTPSender struct {
	Host string
	Port int
	// RequireTLS upgrades the connection with STARTTLS and fails the send
	// when the server cannot.
	RequireTLS bool
	// TLSConfig overrides the STARTTLS configuration.
	TLSConfig *tls.Config
	Now       func() time.Time
}

// NewSMTPSender returns a sender for host:port that requires STARTTLS.
func NewSMTPSender(host string, port int) *SMTPSender {
	if host == "" {
		host = DefaultSMTPHost
	}
	if port == 0 {
		port = DefaultSMTPPort
	}
	return &SMTPSender{Host: host, Port: port, RequireTLS: true}
}

// AppPassword strips the spaces Google shows when displaying app passwords.
func AppPassword(raw string) string {
	return strings.ReplaceAll(raw, " ", "")
}

func (s *SMTPSender) Send(ctx context.Context, acct types.Account, subject, body string) error {
	password := AppPassword(acct.Mail.AppPassword)
	if password == "" {
		return ErrNoPassword
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	msg, err := Compose(acct, subject, body, now())
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	c, err := s.dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Auth(sasl.NewPlainClient("", acct.Email, password)); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.SendMail(acct.Email, []string{acct.Email}, bytes.NewReader(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return c.Quit()
}

// dial connects to addr, upgrading with STARTTLS when RequireTLS is set.
func (s *SMTPSender) dial(addr string) (*smtp.Client, error) {
	if !s.RequireTLS {
		c, err := smtp.Dial(addr)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", addr, err)
		}
		return c, nil
	}

	cfg := s.TLSConfig
	if cfg == nil {
		cfg = &tls.Config{ServerName: s.Host}
	}
	c, err := smtp.DialStartTLS(addr, cfg)
	if err != nil {
		return nil, fmt.Errorf("dial %s with STARTTLS: %w", addr, err)
	}
	return c, nil
}
