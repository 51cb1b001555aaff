// Package config loads taskdawn accounts and settings.
package config

import (
	"time"

	"github.com/daviddao/taskdawn/internal/types"
)

// Config holds the batch settings and the accounts to process.
type Config struct {
	SyncList     string          `mapstructure:"sync_list" validate:"required"`
	LogLevel     string          `mapstructure:"log_level" validate:"oneof=debug info warn warning error"`
	WeekdaysOnly bool            `mapstructure:"weekdays_only"`
	Retry        RetryConfig     `mapstructure:"retry"`
	SMTP         SMTPConfig      `mapstructure:"smtp"`
	Ledger       string          `mapstructure:"ledger"`
	Accounts     []AccountConfig `mapstructure:"accounts" validate:"dive"`
}

// RetryConfig tunes backoff against the Tasks API.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay  time.Duration `mapstructure:"base_delay" validate:"gte=0"`
}

// SMTPConfig is the submission server used by the smtp transport.
type SMTPConfig struct {
	Host string `mapstructure:"host" validate:"required,hostname|ip"`
	Port int    `mapstructure:"port" validate:"gt=0,lt=65536"`
}

// AccountConfig is one entry of the accounts list. Keys match the legacy
// users.json layout so old files load unchanged.
type AccountConfig struct {
	Email        string `mapstructure:"email" validate:"required,email"`
	Name         string `mapstructure:"name"`
	ClientID     string `mapstructure:"google_client_id" validate:"required"`
	ClientSecret string `mapstructure:"google_client_secret" validate:"required"`
	RefreshToken string `mapstructure:"google_refresh_token" validate:"required"`
	Transport    string `mapstructure:"transport" validate:"oneof=smtp gmail"`
	AppPassword  string `mapstructure:"email_app_password" validate:"required_if=Transport smtp"`
}

// Account converts the entry to the pipeline's account type.
func (a AccountConfig) Account() types.Account {
	return types.Account{
		Email: a.Email,
		Name:  a.Name,
		Google: types.GoogleCredentials{
			ClientID:     a.ClientID,
			ClientSecret: a.ClientSecret,
			RefreshToken: a.RefreshToken,
		},
		Mail: types.MailCredentials{
			Transport:   a.Transport,
			AppPassword: a.AppPassword,
		},
	}
}

// AccountList returns every configured account in file order.
func (c *Config) AccountList() []types.Account {
	out := make([]types.Account, 0, len(c.Accounts))
	for _, a := range c.Accounts {
		out = append(out, a.Account())
	}
	return out
}

// Select returns the accounts whose email is in emails, in file order.
// An empty filter selects everything.
func (c *Config) Select(emails ...string) ([]types.Account, error) {
	all := c.AccountList()
	if len(emails) == 0 {
		return all, nil
	}

	want := make(map[string]bool, len(emails))
	for _, e := range emails {
		want[e] = true
	}
	var out []types.Account
	for _, a := range all {
		if want[a.Email] {
			out = append(out, a)
			delete(want, a.Email)
		}
	}
	for e := range want {
		return nil, &Error{Err: ErrUnknownAccount, Detail: e}
	}
	return out, nil
}
