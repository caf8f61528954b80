package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// Mailer delivers account emails. The core only builds the payload; template
// rendering beyond a minimal HTML body is out of scope.
type Mailer interface {
	SendVerificationOTP(ctx context.Context, to, name, code string) error
	SendPasswordResetLink(ctx context.Context, to, name, link string) error
	SendPasswordResetOTP(ctx context.Context, to, name, code string) error
}

// ResendMailer sends through the Resend HTTP API.
type ResendMailer struct {
	client *resty.Client
	domain string
}

func NewResendMailer(apiKey, domain string) *ResendMailer {
	client := resty.New().
		SetBaseURL("https://api.resend.com").
		SetAuthToken(apiKey).
		SetTimeout(10 * time.Second)
	return &ResendMailer{client: client, domain: domain}
}

type sendEmailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func (m *ResendMailer) send(ctx context.Context, from, to, subject, html string) error {
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(sendEmailRequest{From: from, To: to, Subject: subject, HTML: html}).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("resend API returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

func (m *ResendMailer) SendVerificationOTP(ctx context.Context, to, name, code string) error {
	html := fmt.Sprintf("<p>Hi %s,</p><p>Your StudyioVibe verification code is <strong>%s</strong>. It expires in 3 minutes.</p>", name, code)
	return m.send(ctx, "studyiovibe.onboarding"+m.domain, to,
		"One time password for account verification", html)
}

func (m *ResendMailer) SendPasswordResetLink(ctx context.Context, to, name, link string) error {
	html := fmt.Sprintf("<p>Hi %s,</p><p><a href=%q>Reset your StudyioVibe password</a>. The link expires in 15 minutes.</p>", name, link)
	return m.send(ctx, "help.studyiovibe"+m.domain, to,
		"Reset your StudyioVibe account password", html)
}

func (m *ResendMailer) SendPasswordResetOTP(ctx context.Context, to, name, code string) error {
	html := fmt.Sprintf("<p>Hi %s,</p><p>Your password reset code is <strong>%s</strong>. It expires in 10 minutes.</p>", name, code)
	return m.send(ctx, "studyiovibe.help"+m.domain, to,
		"Reset your StudyioVibe account password with this OTP", html)
}

// LogMailer logs instead of sending. Used when RESEND_API_KEY is unset.
type LogMailer struct{}

func (LogMailer) SendVerificationOTP(_ context.Context, to, _, code string) error {
	slog.Info("email not configured, verification OTP logged", "to", to, "code", code)
	return nil
}

func (LogMailer) SendPasswordResetLink(_ context.Context, to, _, link string) error {
	slog.Info("email not configured, reset link logged", "to", to, "link", link)
	return nil
}

func (LogMailer) SendPasswordResetOTP(_ context.Context, to, _, code string) error {
	slog.Info("email not configured, reset OTP logged", "to", to, "code", code)
	return nil
}
