package email

import (
	"context"
	"strings"
	"testing"
	"time"

	"pms/internal/platform/config"
)

func TestNewReturnsNoopWhenDisabled(t *testing.T) {
	mailer := New(config.Config{EmailEnabled: false, SMTPHost: "smtp.example.com"})
	if _, ok := mailer.(noopMailer); !ok {
		t.Fatalf("expected noop mailer, got %T", mailer)
	}
	if err := mailer.Send(context.Background(), "a@example.com", "b@example.com", "s", "b"); err != nil {
		t.Fatalf("noop send failed: %v", err)
	}

	mailer = New(config.Config{EmailEnabled: true})
	if _, ok := mailer.(noopMailer); !ok {
		t.Fatalf("expected noop mailer without host, got %T", mailer)
	}
}

func TestNewBuildsSMTPAddress(t *testing.T) {
	mailer := New(config.Config{EmailEnabled: true, SMTPHost: "smtp.example.com", SMTPPort: 2525})
	m, ok := mailer.(*smtpMailer)
	if !ok {
		t.Fatalf("expected smtp mailer, got %T", mailer)
	}
	if m.addr != "smtp.example.com:2525" {
		t.Fatalf("unexpected addr %q", m.addr)
	}
}

func TestBuildMessageStripsHeaderInjection(t *testing.T) {
	sent := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	msg := string(buildMessage("pms@example.com", "erin@example.com", "Goal\r\nBcc: evil@example.com", "hello", sent))

	if strings.Contains(msg, "\r\nBcc:") {
		t.Fatalf("header injection not stripped: %q", msg)
	}
	if !strings.Contains(msg, "Subject: Goal  Bcc: evil@example.com\r\n") {
		t.Fatalf("unexpected subject line: %q", msg)
	}
	if !strings.HasSuffix(msg, "\r\n\r\nhello") {
		t.Fatalf("body must follow a blank line: %q", msg)
	}
	if !strings.Contains(msg, "Date: Fri, 02 Jan 2026 03:04:05 +0000") {
		t.Fatalf("missing date header: %q", msg)
	}
}

func TestSendSkipsEmptyRecipient(t *testing.T) {
	m := &smtpMailer{addr: "127.0.0.1:1"}
	if err := m.Send(context.Background(), "a@example.com", "  ", "s", "b"); err != nil {
		t.Fatalf("expected nil for empty recipient, got %v", err)
	}
}
