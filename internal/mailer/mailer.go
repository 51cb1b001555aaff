// Package mailer composes the digest email and delivers it.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/daviddao/taskdawn/internal/digest"
	"github.com/daviddao/taskdawn/internal/types"
	"github.com/emersion/go-message/mail"
)

// Sender delivers a digest to the account holder's own address.
type Sender interface {
	Send(ctx context.Context, acct types.Account, subject, body string) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, acct types.Account, subject, body string) error

func (f SenderFunc) Send(ctx context.Context, acct types.Account, subject, body string) error {
	return f(ctx, acct, subject, body)
}

// Compose builds an RFC 5322 plain-text message from the account to itself.
func Compose(acct types.Account, subject, body string, now time.Time) ([]byte, error) {
	var h mail.Header
	h.SetDate(now)
	h.SetAddressList("From", []*mail.Address{{Name: digest.BrandName, Address: acct.Email}})
	h.SetAddressList("To", []*mail.Address{{Address: acct.Email}})
	h.SetSubject(subject)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "quoted-printable")
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("generate message id: %w", err)
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	if _, err := io.WriteString(w, body); err != nil {
		w.Close()
		return nil, fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close message: %w", err)
	}
	return buf.Bytes(), nil
}

// WriterSender prints digests instead of sending them.
type WriterSender struct {
	W io.Writer
}

func (s WriterSender) Send(_ context.Context, acct types.Account, subject, body string) error {
	_, err := fmt.Fprintf(s.W, "To: %s\nSubject: %s\n\n%s\n\n", acct.Email, subject, body)
	return err
}
