package service

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"

	"github.com/sony/gobreaker/v2"
)

const (
	defaultBreakerMaxFailures = 5
	defaultBreakerOpenSeconds = 60

	contentTypeText = "text/plain"
	contentTypeHTML = "text/html"
)

// MailSender 邮件发送接口
type MailSender interface {
	SendHTML(toEmail, subject, html string) error
	SendText(toEmail, subject, body string) error
}

// EmailService SMTP 邮件发送服务（带熔断）
type EmailService struct {
	mu      sync.RWMutex
	cfg     *config.EmailConfig
	breaker *gobreaker.CircuitBreaker[struct{}]
	deliver func(cfg *config.EmailConfig, toEmail string, msg []byte) error
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	s := &EmailService{deliver: deliverSMTP}
	s.SetConfig(cfg)
	return s
}

// SetConfig 更新运行时邮件配置并重置熔断器
func (s *EmailService) SetConfig(cfg *config.EmailConfig) {
	if cfg == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.breaker = newEmailBreaker(cfg)
}

func newEmailBreaker(cfg *config.EmailConfig) *gobreaker.CircuitBreaker[struct{}] {
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures <= 0 {
		maxFailures = defaultBreakerMaxFailures
	}
	openSeconds := cfg.BreakerOpenSeconds
	if openSeconds <= 0 {
		openSeconds = defaultBreakerOpenSeconds
	}
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Timeout:     time.Duration(openSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(maxFailures)
		},
		// 收件人被拒属于业务错误，不计入 SMTP 故障
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrEmailRecipientRejected)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnw("email_breaker_state_changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// SendHTML 发送 HTML 邮件
func (s *EmailService) SendHTML(toEmail, subject, html string) error {
	return s.send(toEmail, subject, html, contentTypeHTML)
}

// SendText 发送纯文本邮件
func (s *EmailService) SendText(toEmail, subject, body string) error {
	return s.send(toEmail, subject, body, contentTypeText)
}

func (s *EmailService) send(toEmail, subject, body, contentType string) error {
	s.mu.RLock()
	cfg := s.cfg
	breaker := s.breaker
	s.mu.RUnlock()

	if cfg == nil || !cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if cfg.Host == "" || cfg.Port == 0 || cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	toEmail = strings.TrimSpace(toEmail)
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	from := buildFromAddress(cfg.From, cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, body, contentType)

	_, err := breaker.Execute(func() (struct{}, error) {
		return struct{}{}, normalizeEmailSendError(s.deliver(cfg, toEmail, []byte(msg)))
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrEmailServiceUnavailable
	}
	return err
}

func deliverSMTP(cfg *config.EmailConfig, toEmail string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	var auth smtp.Auth
	if cfg.Username != "" || cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	to := []string{toEmail}
	switch {
	case cfg.UseSSL:
		return sendMailWithSSL(addr, auth, cfg.Host, cfg.From, to, msg)
	case cfg.UseTLS:
		return sendMailWithStartTLS(addr, auth, cfg.Host, cfg.From, to, msg)
	default:
		return sendMailPlain(addr, auth, cfg.From, to, msg)
	}
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body, contentType string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	buf.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString(fmt.Sprintf("Content-Type: %s; charset=UTF-8\r\n", contentType))
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

func sendMailWithSSL(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := authenticateSMTP(client, auth); err != nil {
		return err
	}
	return sendSMTPData(client, from, to, msg)
}

func sendMailWithStartTLS(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return err
	}
	if err := authenticateSMTP(client, auth); err != nil {
		return err
	}
	return sendSMTPData(client, from, to, msg)
}

func sendMailPlain(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := authenticateSMTP(client, auth); err != nil {
		return err
	}
	return sendSMTPData(client, from, to, msg)
}

func authenticateSMTP(client *smtp.Client, auth smtp.Auth) error {
	if auth == nil {
		return nil
	}
	if ok, _ := client.Extension("AUTH"); !ok {
		return nil
	}
	return client.Auth(auth)
}

func sendSMTPData(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return ErrEmailRecipientRejected
	}
	return err
}

func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	directKeywords := []string{
		"no such recipient",
		"no such user",
		"recipient not found",
		"recipient address rejected",
		"invalid recipient",
		"user unknown",
		"unknown user",
		"unknown mailbox",
		"mailbox unavailable",
	}
	for _, keyword := range directKeywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	if strings.Contains(message, "550") {
		hints := []string{"recipient", "user", "mailbox", "address", "rcpt"}
		for _, hint := range hints {
			if strings.Contains(message, hint) {
				return true
			}
		}
	}
	return false
}
