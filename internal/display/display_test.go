package display

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrinter_Quiet(t *testing.T) {
	var out, errOut bytes.Buffer
	p := &Printer{Out: &out, Err: &errOut, Quiet: true}

	p.Step("Fetching tasks")
	p.SuccessMsg("done")
	p.ErrorMsg("boom %d", 1)

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "boom 1")
}

func TestPrinter_Step(t *testing.T) {
	var out bytes.Buffer
	p := &Printer{Out: &out}
	p.Step("Found %d task(s)", 4)
	assert.Equal(t, "  Found 4 task(s)\n", out.String())
}

func TestPrinter_Nil(t *testing.T) {
	var p *Printer
	assert.NotPanics(t, func() {
		p.Step("x")
		p.ErrorMsg("y")
	})
}

func TestTaskPreview(t *testing.T) {
	var out bytes.Buffer
	p := &Printer{Out: &out}
	p.TaskPreview([]string{"First", "Second"})
	assert.Contains(t, out.String(), "First")
	assert.Contains(t, out.String(), "2.")
}

func TestAccountLabel(t *testing.T) {
	assert.Equal(t, "example", AccountLabel("me@example.com"))
	assert.Equal(t, "localhost", AccountLabel("me@localhost"))
	assert.Equal(t, "plain", AccountLabel("plain"))
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", MaskSecret("abcd"))
	assert.Equal(t, "ab****gh", MaskSecret("abcdefgh"))
}

func TestTimeAgo(t *testing.T) {
	assert.Equal(t, "", TimeAgo(time.Time{}))
	assert.Equal(t, "just now", TimeAgo(time.Now()))
	assert.Equal(t, "2h ago", TimeAgo(time.Now().Add(-2*time.Hour-time.Minute)))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd...", Truncate("abcdefghij", 7))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	assert.Equal(t, "══...", Truncate("══════", 5))
}
