package mailer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/daviddao/taskdawn/internal/types"
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAccount = types.Account{
	Email: "dawn@example.com",
	Mail:  types.MailCredentials{Transport: types.TransportSMTP, AppPassword: "abcd efgh ijkl mnop"},
}

func TestCompose(t *testing.T) {
	now := time.Date(2024, 1, 2, 7, 0, 0, 0, time.UTC)
	raw, err := Compose(testAccount, "Task Dawn - Tue, Jan 02", "TOP PRIORITY\n>>> Ship it <<<", now)
	require.NoError(t, err)

	r, err := mail.CreateReader(bytes.NewReader(raw))
	require.NoError(t, err)

	subject, err := r.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Task Dawn - Tue, Jan 02", subject)

	from, err := r.Header.AddressList("From")
	require.NoError(t, err)
	require.Len(t, from, 1)
	assert.Equal(t, "Task Dawn", from[0].Name)
	assert.Equal(t, "dawn@example.com", from[0].Address)

	to, err := r.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, "dawn@example.com", to[0].Address)

	part, err := r.NextPart()
	require.NoError(t, err)
	body, err := io.ReadAll(part.Body)
	require.NoError(t, err)
	// quoted-printable bodies travel with CRLF line endings
	assert.Equal(t, "TOP PRIORITY\n>>> Ship it <<<", strings.ReplaceAll(string(body), "\r\n", "\n"))
}

func TestAppPassword(t *testing.T) {
	assert.Equal(t, "abcdefghijklmnop", AppPassword("abcd efgh ijkl mnop"))
}

func TestWriterSender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriterSender{W: &buf}.Send(context.Background(), testAccount, "subj", "body"))
	assert.Equal(t, "To: dawn@example.com\nSubject: subj\n\nbody\n\n", buf.String())
}

func TestSMTPSender_NoPassword(t *testing.T) {
	acct := testAccount
	acct.Mail.AppPassword = "  "
	err := NewSMTPSender("", 0).Send(context.Background(), acct, "s", "b")
	assert.ErrorIs(t, err, ErrNoPassword)
}

func TestSMTPSender_Delivers(t *testing.T) {
	be := &backend{}
	addr := startServer(t, be)
	host, port := splitAddr(t, addr)

	s := NewSMTPSender(host, port)
	s.RequireTLS = false
	require.NoError(t, s.Send(context.Background(), testAccount, "Task Dawn - Tue, Jan 02", "hello"))

	be.mu.Lock()
	defer be.mu.Unlock()
	assert.Equal(t, "dawn@example.com", be.username)
	assert.Equal(t, "abcdefghijklmnop", be.password)
	assert.Equal(t, "dawn@example.com", be.from)
	assert.Equal(t, []string{"dawn@example.com"}, be.to)
	assert.Contains(t, be.data, "Subject: Task Dawn - Tue, Jan 02")
	assert.True(t, strings.HasSuffix(strings.TrimRight(be.data, "\r\n"), "hello"))
}

func TestSMTPSender_RequiresTLS(t *testing.T) {
	addr := startServer(t, &backend{})
	host, port := splitAddr(t, addr)

	err := NewSMTPSender(host, port).Send(context.Background(), testAccount, "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STARTTLS")
}

func startServer(t *testing.T, be smtp.Backend) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := smtp.NewServer(be)
	srv.Domain = "localhost"
	srv.AllowInsecureAuth = true
	go srv.Serve(l)
	t.Cleanup(func() { srv.Close() })
	return l.Addr().String()
}

func splitAddr(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := net.LookupPort("tcp", portStr)
	require.NoError(t, err)
	return host, port
}

type backend struct {
	mu       sync.Mutex
	username string
	password string
	from     string
	to       []string
	data     string
}

func (b *backend) NewSession(*smtp.Conn) (smtp.Session, error) {
	return &session{be: b}, nil
}

type session struct {
	be *backend
}

func (s *session) AuthMechanisms() []string { return []string{sasl.Plain} }

func (s *session) Auth(string) (sasl.Server, error) {
	return sasl.NewPlainServer(func(_, username, password string) error {
		if username == "" {
			return errors.New("missing username")
		}
		s.be.mu.Lock()
		s.be.username, s.be.password = username, password
		s.be.mu.Unlock()
		return nil
	}), nil
}

func (s *session) Mail(from string, _ *smtp.MailOptions) error {
	s.be.mu.Lock()
	s.be.from = from
	s.be.mu.Unlock()
	return nil
}

func (s *session) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.be.mu.Lock()
	s.be.to = append(s.be.to, to)
	s.be.mu.Unlock()
	return nil
}

func (s *session) Data(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.be.mu.Lock()
	s.be.data = string(b)
	s.be.mu.Unlock()
	return nil
}

func (s *session) Reset() {}

func (s *session) Logout() error { return nil }
