// Package gmail delivers digests through the Gmail API.
//
// It is the alternative to SMTP submission for accounts whose OAuth grant
// includes the gmail.send scope, so no app password is needed.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/daviddao/taskdawn/internal/mailer"
	"github.com/daviddao/taskdawn/internal/types"
	gm "google.golang.org/api/gmail/v1"
)

// ServiceFunc returns an authenticated Gmail service for an account.
type ServiceFunc func(ctx context.Context, acct types.Account) (*gm.Service, error)

// Sender implements mailer.Sender with users.messages.send.
type Sender struct {
	Services ServiceFunc
	Now      func() time.Time
}

// NewSender returns a Sender that authenticates through services.
func NewSender(services ServiceFunc) *Sender {
	return &Sender{Services: services}
}

func (s *Sender) Send(ctx context.Context, acct types.Account, subject, body string) error {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	raw, err := mailer.Compose(acct, subject, body, now())
	if err != nil {
		return err
	}

	svc, err := s.Services(ctx, acct)
	if err != nil {
		return fmt.Errorf("gmail service: %w", err)
	}
	if _, err := Send(ctx, svc, raw); err != nil {
		return err
	}
	return nil
}

// Send submits a raw RFC 5322 message as the authenticated user and
// returns the new message ID.
func Send(ctx context.Context, svc *gm.Service, raw []byte) (string, error) {
	msg := &gm.Message{Raw: encodeBase64URL(raw)}
	sent, err := svc.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	return sent.Id, nil
}

// encodeBase64URL encodes content the way Gmail expects raw messages.
func encodeBase64URL(data []byte) string {
	return base64.URLEncoding.EncodeToString(data)
}
