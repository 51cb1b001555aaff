package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Example is the starter file written by `taskdawn init`.
const Example = `# Task Dawn configuration.
# Every global below may be overridden with a TASKDAWN_* environment
# variable, e.g. TASKDAWN_LOG_LEVEL=debug or TASKDAWN_WEEKDAYS_ONLY=false.

sync_list: Task Dawn Sync
log_level: info
weekdays_only: true

retry:
  max_retries: 3
  base_delay: 1s

smtp:
  host: smtp.gmail.com
  port: 587

# Run ledger (SQLite). Leave empty to disable.
ledger: ""

accounts:
  - email: you@example.com
    name: You
    google_client_id: YOUR_CLIENT_ID.apps.googleusercontent.com
    google_client_secret: YOUR_CLIENT_SECRET
    google_refresh_token: YOUR_REFRESH_TOKEN
    # smtp (app password) or gmail (Gmail API, needs the gmail.send scope)
    transport: smtp
    email_app_password: "abcd efgh ijkl mnop"
`

// WriteExample writes Example to path, creating parent directories. It never
// overwrites an existing file.
func WriteExample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(Example); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
