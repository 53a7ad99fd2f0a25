// File: internal/auth/mailer.go
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"educycle_backend/internal/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer delivers verification codes.
type Mailer interface {
	SendOTP(ctx context.Context, to, code string, ttl time.Duration) error
}

// NewMailer chains Resend, SMTP and logging, using whichever are configured in that order.
func NewMailer(cfg *config.Config, logger *zap.Logger) Mailer {
	logger = logger.Named("mailer")
	var chain fallbackMailer
	if cfg.ResendAPIKey != "" {
		chain = append(chain, &resendMailer{
			apiKey:   cfg.ResendAPIKey,
			apiURL:   cfg.ResendAPIURL,
			fromName: cfg.EmailsFromName,
			client:   &http.Client{Timeout: 10 * time.Second},
		})
	}
	if cfg.SMTPHost != "" && cfg.SMTPUser != "" && cfg.SMTPPassword != "" {
		chain = append(chain, &smtpMailer{
			dialer:   gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
			from:     cfg.EmailsFromAddr,
			fromName: cfg.EmailsFromName,
		})
	}
	chain = append(chain, &logMailer{logger: logger})
	return &chainMailer{mailers: chain, logger: logger}
}

type fallbackMailer []Mailer

// chainMailer returns after the first mailer that succeeds.
type chainMailer struct {
	mailers fallbackMailer
	logger  *zap.Logger
}

func (c *chainMailer) SendOTP(ctx context.Context, to, code string, ttl time.Duration) error {
	var lastErr error
	for _, m := range c.mailers {
		if err := m.SendOTP(ctx, to, code, ttl); err != nil {
			c.logger.Warn("Mail delivery failed; trying next transport", zap.String("transport", fmt.Sprintf("%T", m)), zap.Error(err))
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

func otpMessage(code string, ttl time.Duration) (subject, html string) {
	subject = fmt.Sprintf("%s is your EduCycle verification code", code)
	html = fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif; color: #333;">
<h2 style="color: #4CAF50;">Welcome to EduCycle!</h2>
<p>Use the following 6-digit code to verify your email address:</p>
<p style="font-size: 32px; font-weight: bold; letter-spacing: 5px; color: #2e7d32;">%s</p>
<p>This code will expire in %d minutes. If you didn't request this, please ignore this email.</p>
</body></html>`, code, int(ttl.Minutes()))
	return subject, html
}

type resendMailer struct {
	apiKey   string
	apiURL   string
	fromName string
	client   *http.Client
}

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (m *resendMailer) SendOTP(ctx context.Context, to, code string, ttl time.Duration) error {
	subject, html := otpMessage(code, ttl)
	body, err := json.Marshal(resendEmail{
		From:    fmt.Sprintf("%s <onboarding@resend.dev>", m.fromName),
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to encode email: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("resend request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return fmt.Errorf("resend returned %d: %s", res.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}

type smtpMailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func (m *smtpMailer) SendOTP(_ context.Context, to, code string, ttl time.Duration) error {
	subject, html := otpMessage(code, ttl)
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

// logMailer writes the code to the log. It is the last resort in development.
type logMailer struct {
	logger *zap.Logger
}

func (m *logMailer) SendOTP(_ context.Context, to, code string, ttl time.Duration) error {
	m.logger.Info("Email delivery not configured; logging OTP",
		zap.String("to", to), zap.String("otp", code), zap.Duration("expires_in", ttl))
	return nil
}
