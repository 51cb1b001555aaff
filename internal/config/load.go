package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/daviddao/taskdawn/internal/mailer"
	"github.com/daviddao/taskdawn/internal/retry"
	"github.com/daviddao/taskdawn/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. TASKDAWN_LOG_LEVEL or
// TASKDAWN_RETRY_MAX_RETRIES.
const EnvPrefix = "TASKDAWN"

// DefaultSyncList is the list ensured in every account on each run.
const DefaultSyncList = "Task Dawn Sync"

var (
	ErrNotFound       = errors.New("config file not found")
	ErrInvalid        = errors.New("invalid config")
	ErrNoAccounts     = errors.New("no accounts configured")
	ErrUnknownAccount = errors.New("account not configured")
)

// Error reports a configuration problem. It aborts a run before any account
// is processed.
type Error struct {
	Path   string
	Err    error
	Detail string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("config")
	if e.Path != "" {
		b.WriteString(" " + e.Path)
	}
	b.WriteString(": " + e.Err.Error())
	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// DefaultPath returns $XDG_CONFIG_HOME/taskdawn/config.yaml, falling back to
// ~/.config/taskdawn/config.yaml.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "taskdawn", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "taskdawn", "config.yaml")
	}
	return filepath.Join(home, ".config", "taskdawn", "config.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sync_list", DefaultSyncList)
	v.SetDefault("log_level", "info")
	v.SetDefault("weekdays_only", true)
	v.SetDefault("retry.max_retries", retry.DefaultMaxRetries)
	v.SetDefault("retry.base_delay", retry.DefaultBaseDelay)
	v.SetDefault("smtp.host", mailer.DefaultSMTPHost)
	v.SetDefault("smtp.port", mailer.DefaultSMTPPort)
	v.SetDefault("ledger", "")
}

// Load reads the config file at path, applies TASKDAWN_* environment
// overrides for the global settings and validates the result.
//
// A file whose root is a JSON array is read as a legacy users.json: the
// array becomes the accounts list and every global takes its default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &Error{Path: path, Err: ErrNotFound}
		}
		return nil, &Error{Path: path, Err: ErrInvalid, Detail: err.Error()}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	data = bytes.TrimPrefix(data, utf8BOM)

	if isJSONArray(data) {
		var accounts []map[string]any
		if err := json.Unmarshal(data, &accounts); err != nil {
			return nil, &Error{Path: path, Err: ErrInvalid, Detail: err.Error()}
		}
		v.Set("accounts", accounts)
	} else {
		v.SetConfigFile(path)
		if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext == "" {
			v.SetConfigType("yaml")
		}
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, &Error{Path: path, Err: ErrInvalid, Detail: err.Error()}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &Error{Path: path, Err: ErrInvalid, Detail: err.Error()}
	}
	normalize(&cfg)

	if len(cfg.Accounts) == 0 {
		return nil, &Error{Path: path, Err: ErrNoAccounts}
	}
	if err := Validate(&cfg); err != nil {
		return nil, &Error{Path: path, Err: ErrInvalid, Detail: err.Error()}
	}
	if dup := duplicateEmail(cfg.Accounts); dup != "" {
		return nil, &Error{Path: path, Err: ErrInvalid, Detail: "duplicate account " + dup}
	}

	return &cfg, nil
}

var utf8BOM = []byte("\ufeff")

func isJSONArray(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}

func normalize(cfg *Config) {
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	for i := range cfg.Accounts {
		a := &cfg.Accounts[i]
		a.Email = strings.TrimSpace(a.Email)
		a.Transport = strings.ToLower(strings.TrimSpace(a.Transport))
		if a.Transport == "" {
			a.Transport = types.TransportSMTP
		}
	}
}

func duplicateEmail(accounts []AccountConfig) string {
	seen := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		key := strings.ToLower(a.Email)
		if seen[key] {
			return a.Email
		}
		seen[key] = true
	}
	return ""
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks struct constraints and reports every failing field.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		msg := fmt.Sprintf("%s failed %q", field, fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s failed %q (%s)", field, fe.Tag(), fe.Param())
		}
		msgs = append(msgs, msg)
	}
	return errors.New(strings.Join(msgs, "; "))
}

// RetryPolicy builds the backoff policy for provider calls.
func (c *Config) RetryPolicy(retryable func(error) bool) retry.Policy {
	p := retry.Default(retryable)
	p.MaxRetries = c.Retry.MaxRetries
	if c.Retry.BaseDelay > 0 {
		p.BaseDelay = c.Retry.BaseDelay
	}
	return p
}
