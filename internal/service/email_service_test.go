package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/storefront-next/internal/config"
)

func newTestEmailService(deliver func(cfg *config.EmailConfig, toEmail string, msg []byte) error) *EmailService {
	svc := NewEmailService(&config.EmailConfig{
		Enabled:            true,
		Host:               "smtp.example.com",
		Port:               25,
		From:               "shop@example.com",
		FromName:           "Shop",
		BreakerMaxFailures: 2,
		BreakerOpenSeconds: 60,
	})
	svc.deliver = deliver
	return svc
}

func TestIsEmailRecipientRejected(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "smtp_550_no_such_recipient",
			err:  errors.New("550 No such recipient here"),
			want: true,
		},
		{
			name: "smtp_user_unknown",
			err:  errors.New("SMTP 5.1.1 user unknown"),
			want: true,
		},
		{
			name: "smtp_550_mailbox_unavailable",
			err:  errors.New("550 mailbox unavailable"),
			want: true,
		},
		{
			name: "network_timeout",
			err:  errors.New("dial tcp timeout"),
			want: false,
		},
		{
			name: "nil_error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isEmailRecipientRejected(tt.err); got != tt.want {
				t.Fatalf("isEmailRecipientRejected() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeEmailSendError(t *testing.T) {
	rejected := errors.New("550 No such recipient here")
	if got := normalizeEmailSendError(rejected); !errors.Is(got, ErrEmailRecipientRejected) {
		t.Fatalf("normalizeEmailSendError() expected ErrEmailRecipientRejected, got %v", got)
	}

	networkErr := errors.New("dial tcp timeout")
	if got := normalizeEmailSendError(networkErr); !errors.Is(got, networkErr) {
		t.Fatalf("normalizeEmailSendError() should keep original error, got %v", got)
	}

	if got := normalizeEmailSendError(nil); got != nil {
		t.Fatalf("normalizeEmailSendError(nil) should be nil, got %v", got)
	}
}

func TestEmailServiceRejectsDisabledAndInvalid(t *testing.T) {
	disabled := NewEmailService(&config.EmailConfig{Enabled: false})
	if err := disabled.SendText("a@example.com", "s", "b"); !errors.Is(err, ErrEmailServiceDisabled) {
		t.Fatalf("expected ErrEmailServiceDisabled, got %v", err)
	}

	missingHost := NewEmailService(&config.EmailConfig{Enabled: true, Port: 25, From: "shop@example.com"})
	if err := missingHost.SendText("a@example.com", "s", "b"); !errors.Is(err, ErrEmailServiceNotConfigured) {
		t.Fatalf("expected ErrEmailServiceNotConfigured, got %v", err)
	}

	svc := newTestEmailService(func(*config.EmailConfig, string, []byte) error { return nil })
	if err := svc.SendHTML("not-an-email", "s", "<p>b</p>"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestEmailServiceBuildsHTMLMessage(t *testing.T) {
	var captured string
	svc := newTestEmailService(func(_ *config.EmailConfig, toEmail string, msg []byte) error {
		if toEmail != "buyer@example.com" {
			t.Fatalf("unexpected recipient %q", toEmail)
		}
		captured = string(msg)
		return nil
	})

	if err := svc.SendHTML("buyer@example.com", "Order confirmation", "<p>hello</p>"); err != nil {
		t.Fatalf("send html failed: %v", err)
	}
	if !strings.Contains(captured, "Content-Type: text/html; charset=UTF-8") {
		t.Fatalf("missing html content type: %s", captured)
	}
	if !strings.Contains(captured, "<p>hello</p>") {
		t.Fatalf("missing body: %s", captured)
	}
}

func TestEmailServiceBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	svc := newTestEmailService(func(*config.EmailConfig, string, []byte) error {
		calls++
		return errors.New("dial tcp: connection refused")
	})

	for i := 0; i < 2; i++ {
		if err := svc.SendText("buyer@example.com", "s", "b"); err == nil {
			t.Fatalf("attempt %d expected error", i)
		}
	}
	if err := svc.SendText("buyer@example.com", "s", "b"); !errors.Is(err, ErrEmailServiceUnavailable) {
		t.Fatalf("expected ErrEmailServiceUnavailable once breaker opens, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 smtp attempts, got %d", calls)
	}
}

func TestEmailServiceRecipientRejectionDoesNotTripBreaker(t *testing.T) {
	calls := 0
	svc := newTestEmailService(func(*config.EmailConfig, string, []byte) error {
		calls++
		return errors.New("550 no such user")
	})

	for i := 0; i < 4; i++ {
		if err := svc.SendText("buyer@example.com", "s", "b"); !errors.Is(err, ErrEmailRecipientRejected) {
			t.Fatalf("attempt %d expected ErrEmailRecipientRejected, got %v", i, err)
		}
	}
	if calls != 4 {
		t.Fatalf("expected every attempt to reach smtp, got %d", calls)
	}
}
