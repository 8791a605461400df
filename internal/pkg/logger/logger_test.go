package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	SetOutput(buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(INFO)
	})
	return buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]string {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]string
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	return entry
}

func TestInfoRedactsEmailFields(t *testing.T) {
	buf := captureOutput(t)

	Info("email delivered", "email", "john.doe@example.com", "message_id", "abc-123")

	entry := lastEntry(t, buf)
	if entry["level"] != "INFO" || entry["msg"] != "email delivered" {
		t.Errorf("entry = %v, want INFO/email delivered", entry)
	}
	if entry["email"] != "jo***@example.com" {
		t.Errorf("email field = %q, want redacted address", entry["email"])
	}
	if entry["message_id"] != "abc-123" {
		t.Errorf("message_id field = %q, want passed through", entry["message_id"])
	}
}

func TestEmbeddedEmailsRedactedInGenericFields(t *testing.T) {
	buf := captureOutput(t)

	Error("lure delivery failed", "error", "550 mailbox rejected for carol@example.com")

	entry := lastEntry(t, buf)
	if strings.Contains(entry["error"], "carol@") {
		t.Errorf("error field leaks the address: %q", entry["error"])
	}
	if !strings.Contains(entry["error"], "ca***@example.com") {
		t.Errorf("error field = %q, want embedded address masked", entry["error"])
	}
}

func TestIDFieldsPassThrough(t *testing.T) {
	buf := captureOutput(t)

	Info("click recorded", "recipient", "3f2c9a50-0b1d-4c5e-9f6a-7b8c9d0e1f2a")

	entry := lastEntry(t, buf)
	if entry["recipient"] != "3f2c9a50-0b1d-4c5e-9f6a-7b8c9d0e1f2a" {
		t.Errorf("recipient field = %q, want the ID untouched", entry["recipient"])
	}
}

func TestDebugSuppressedBelowLevel(t *testing.T) {
	buf := captureOutput(t)

	Debug("noise")
	if buf.Len() != 0 {
		t.Fatalf("DEBUG emitted at INFO level: %q", buf.String())
	}

	SetLevel(DEBUG)
	Debug("now visible")
	if entry := lastEntry(t, buf); entry["level"] != "DEBUG" {
		t.Errorf("entry = %v, want DEBUG after lowering the level", entry)
	}
}

func TestRedactEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"john.doe@example.com", "jo***@example.com"},
		{"ab@example.com", "***@example.com"},
		{"not-an-email", "***@***"},
	}
	for _, tt := range tests {
		if got := RedactEmail(tt.in); got != tt.want {
			t.Errorf("RedactEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
