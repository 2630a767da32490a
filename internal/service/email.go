package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// EmailService sends transactional email through Resend.
// In development messages are logged instead of sent.
type EmailService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
}

func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
	}
}

func (s *EmailService) SendVerificationEmail(ctx context.Context, email, token string) error {
	verifyURL := fmt.Sprintf("%s/auth/verify/%s", s.appURL, token)
	subject, body := verificationEmailTemplate(verifyURL, s.appName)
	return s.send(ctx, "email_verify", email, subject, body, "url", verifyURL)
}

func (s *EmailService) SendMagicLinkEmail(ctx context.Context, email, token string) error {
	magicURL := fmt.Sprintf("%s/auth/magic-link/%s", s.appURL, token)
	subject, body := magicLinkEmailTemplate(magicURL, s.appName)
	return s.send(ctx, "magic_link", email, subject, body, "url", magicURL)
}

func (s *EmailService) SendPostApprovedEmail(ctx context.Context, email, postID, hospital string) error {
	postURL := fmt.Sprintf("%s/posts/%s", s.appURL, postID)
	subject, body := postApprovedEmailTemplate(hospital, postURL, s.appName)
	return s.send(ctx, "post_approved", email, subject, body, "post_id", postID)
}

func (s *EmailService) SendPostRejectedEmail(ctx context.Context, email, postID, hospital string) error {
	policyURL := fmt.Sprintf("%s/legal/moderation", s.appURL)
	subject, body := postRejectedEmailTemplate(hospital, policyURL, s.appName)
	return s.send(ctx, "post_rejected", email, subject, body, "post_id", postID)
}

func (s *EmailService) send(ctx context.Context, kind, to, subject, body string, attrs ...any) error {
	if s.isDev {
		slog.Info("email sent (dev mode)", append([]any{"type", kind, "to", to, "subject", subject}, attrs...)...)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send %s email: %w", kind, err)
	}

	slog.Info("email sent", "type", kind, "to", to)
	return nil
}
