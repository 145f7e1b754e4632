package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// Mailer delivers the transactional e-mails of the app.
type Mailer interface {
	SendInvitation(ctx context.Context, to string, msg InvitationEmail) error
	SendVerification(ctx context.Context, to, name, link string) error
	SendPasswordReset(ctx context.Context, to, name, link string) error
}

type InvitationEmail struct {
	FamilyName  string
	InviterName string
	Code        string
	Link        string
	ExpiresAt   time.Time
}

type sesSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService sends mail through Amazon SES. Without a sender address it is
// disabled and every Send call only logs.
type EmailService struct {
	client    sesSender
	fromEmail string
	fromName  string
	enabled   bool
}

func NewEmailService(ctx context.Context, region, fromEmail, fromName string) (*EmailService, error) {
	if fromEmail == "" {
		slog.Warn("email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	slog.Info("email service enabled", "from", fromEmail, "region", region)
	return &EmailService{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
	}, nil
}

func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

var invitationTmpl = template.Must(template.New("invitation").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<h1>You're invited to join {{.FamilyName}}</h1>
	<p>{{if .InviterName}}{{.InviterName}} has invited you{{else}}You have been invited{{end}} to join their family.</p>
	<p>Your invitation code is <strong>{{.Code}}</strong>.</p>
	<p><a href="{{.Link}}">Join the family</a></p>
	<p>This invitation expires on {{.ExpiresAt.Format "2 January 2006"}}.</p>
</body>
</html>`))

var linkTmpl = template.Must(template.New("link").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<p>Hi {{.Name}},</p>
	<p>{{.Intro}}</p>
	<p><a href="{{.Link}}">{{.Action}}</a></p>
	<p>{{.Footer}}</p>
</body>
</html>`))

type linkEmail struct {
	Name, Intro, Action, Link, Footer string
}

func (s *EmailService) SendInvitation(ctx context.Context, to string, msg InvitationEmail) error {
	var html bytes.Buffer
	if err := invitationTmpl.Execute(&html, msg); err != nil {
		return fmt.Errorf("failed to render invitation email: %w", err)
	}
	text := fmt.Sprintf("You have been invited to join %s.\n\nInvitation code: %s\nJoin here: %s\n\nThis invitation expires on %s.\n",
		msg.FamilyName, msg.Code, msg.Link, msg.ExpiresAt.Format("2 January 2006"))

	return s.send(ctx, to, "You're invited to join "+msg.FamilyName, html.String(), text)
}

func (s *EmailService) SendVerification(ctx context.Context, to, name, link string) error {
	return s.sendLink(ctx, to, "Verify your email address", linkEmail{
		Name:   name,
		Intro:  "Please confirm your email address to finish setting up your account.",
		Action: "Verify email",
		Link:   link,
		Footer: "This link expires in 24 hours.",
	})
}

func (s *EmailService) SendPasswordReset(ctx context.Context, to, name, link string) error {
	return s.sendLink(ctx, to, "Reset your password", linkEmail{
		Name:   name,
		Intro:  "We received a request to reset your password.",
		Action: "Reset password",
		Link:   link,
		Footer: "This link expires in 1 hour. If you didn't ask for a reset you can ignore this email.",
	})
}

func (s *EmailService) sendLink(ctx context.Context, to, subject string, data linkEmail) error {
	var html bytes.Buffer
	if err := linkTmpl.Execute(&html, data); err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}
	text := fmt.Sprintf("Hi %s,\n\n%s\n\n%s: %s\n\n%s\n", data.Name, data.Intro, data.Action, data.Link, data.Footer)
	return s.send(ctx, to, subject, html.String(), text)
}

func (s *EmailService) send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	if !s.enabled {
		slog.Info("skipping email send (service disabled)", "subject", subject)
		return nil
	}

	from := s.fromEmail
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String("UTF-8")},
					Text: &types.Content{Data: aws.String(textBody), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	slog.Info("email sent", "subject", subject)
	return nil
}
