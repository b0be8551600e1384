// Package ses sends eligibility digest emails via AWS SES
package ses

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	appConfig "kisanmitra-scheme-engine/internal/config"
	"kisanmitra-scheme-engine/internal/models"
	"kisanmitra-scheme-engine/internal/services/matcher"
	"kisanmitra-scheme-engine/internal/utils"
)

// ErrNoRecipient is returned when the farmer has no email address.
var ErrNoRecipient = errors.New("farmer has no email address")

// Service handles SES email operations
type Service struct {
	client       *ses.Client
	fromEmail    string
	dashboardURL string
}

// EmailParams represents parameters for sending an email
type EmailParams struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
	ReplyTo  string
}

// DigestParams contains data for the eligibility digest email
type DigestParams struct {
	FarmerName    string
	FarmerEmail   string
	EligibleCount int
	Schemes       []DigestScheme
	DashboardURL  string
}

// DigestScheme is one eligible scheme in the digest.
type DigestScheme struct {
	models.MatchSummary
	Ministry    string
	Reasons     []string
	Explanation string
}

// SendEmailResult contains the result of sending an email
type SendEmailResult struct {
	MessageID string
	SentAt    time.Time
}

// NewService creates a new SES service
func NewService(ctx context.Context, appCfg *appConfig.Config) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(appCfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Service{
		client:       ses.NewFromConfig(cfg),
		fromEmail:    appCfg.SESSenderEmail,
		dashboardURL: appCfg.DashboardURL,
	}, nil
}

// SendEmail sends a basic email
func (s *Service) SendEmail(ctx context.Context, params EmailParams) (*SendEmailResult, error) {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{params.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(params.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}

	if params.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(params.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}

	if params.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(params.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}

	if params.ReplyTo != "" {
		input.ReplyToAddresses = []string{params.ReplyTo}
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		utils.GetLogger().Error("Failed to send email",
			zap.String("to", params.To),
			zap.String("subject", params.Subject),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	messageID := aws.ToString(result.MessageId)
	utils.GetLogger().Info("Email sent successfully",
		zap.String("to", params.To),
		zap.String("messageId", messageID),
	)

	return &SendEmailResult{
		MessageID: messageID,
		SentAt:    time.Now(),
	}, nil
}

// SendEligibilityDigest emails a farmer the schemes they are eligible for.
func (s *Service) SendEligibilityDigest(ctx context.Context, profile *models.FarmerProfile, results []models.MatchResult) error {
	if profile.Email == "" {
		return ErrNoRecipient
	}

	params := BuildDigestParams(profile, results, s.dashboardURL)

	htmlBody, err := RenderDigestHTML(params)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	_, err = s.SendEmail(ctx, EmailParams{
		To:       profile.Email,
		Subject:  DigestSubject(params),
		HTMLBody: htmlBody,
		TextBody: RenderDigestText(params),
	})
	return err
}

// BuildDigestParams keeps the eligible results, in ranked order.
func BuildDigestParams(profile *models.FarmerProfile, results []models.MatchResult, dashboardURL string) DigestParams {
	schemes := make([]DigestScheme, 0, len(results))

	for _, r := range matcher.EligibleOnly(results) {
		if r.Scheme == nil {
			continue
		}
		schemes = append(schemes, DigestScheme{
			MatchSummary: r.ToSummary(),
			Ministry:     r.Scheme.Ministry,
			Reasons:      r.Reasons,
			Explanation:  matcher.Explain(r),
		})
	}

	return DigestParams{
		FarmerName:    profile.Name,
		FarmerEmail:   profile.Email,
		EligibleCount: len(schemes),
		Schemes:       schemes,
		DashboardURL:  dashboardURL,
	}
}

// DigestSubject returns the email subject line.
func DigestSubject(params DigestParams) string {
	if params.EligibleCount == 1 {
		return fmt.Sprintf("%s, you are eligible for 1 government scheme", params.FarmerName)
	}
	return fmt.Sprintf("%s, you are eligible for %d government schemes", params.FarmerName, params.EligibleCount)
}

var digestTemplate = template.Must(template.New("eligibility_digest").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #2e7d32 0%, #66bb6a 100%); color: white; padding: 30px; border-radius: 10px 10px 0 0; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
        .scheme-card { background: white; border-radius: 8px; padding: 20px; margin: 15px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .scheme-card h3 { margin: 0 0 6px 0; color: #2e7d32; }
        .scheme-card .ministry { color: #666; font-size: 14px; }
        .score-badge { display: inline-block; background: #28a745; color: white; padding: 4px 12px; border-radius: 20px; font-weight: bold; }
        .cta-button { display: inline-block; background: #2e7d32; color: white; padding: 15px 30px; text-decoration: none; border-radius: 8px; font-weight: bold; margin-top: 20px; }
        .footer { text-align: center; margin-top: 30px; color: #999; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Schemes You Qualify For</h1>
        <p>Namaste {{.FarmerName}}, you are eligible for {{.EligibleCount}} scheme(s)</p>
    </div>
    <div class="content">
        {{range .Schemes}}
        <div class="scheme-card">
            <h3>{{.SchemeName}} <span class="score-badge">{{.MatchScore}}% Match</span></h3>
            <p class="ministry">{{.Ministry}}</p>
            <p><strong>Benefit:</strong> {{.BenefitAmount}}<br><strong>Deadline:</strong> {{.Deadline}}</p>
            <ul>
                {{range .Reasons}}<li>{{.}}</li>
                {{end}}
            </ul>
        </div>
        {{end}}
        {{if .DashboardURL}}
        <div style="text-align: center;">
            <a href="{{.DashboardURL}}" class="cta-button">View All Schemes</a>
        </div>
        {{end}}
    </div>
    <div class="footer">
        <p>This email was sent by KisanMitra</p>
        <p>You received this because your profile was registered for scheme matching.</p>
    </div>
</body>
</html>`))

// RenderDigestHTML renders the HTML email body.
func RenderDigestHTML(params DigestParams) (string, error) {
	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, params); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderDigestText renders the plain text body with one explanation per scheme.
func RenderDigestText(params DigestParams) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Namaste %s,\n\n", params.FarmerName)
	fmt.Fprintf(&b, "You are eligible for %d government scheme(s).\n\n", params.EligibleCount)

	for i, s := range params.Schemes {
		fmt.Fprintf(&b, "%d. ", i+1)
		b.WriteString(s.Explanation)
		fmt.Fprintf(&b, "Benefit: %s | Deadline: %s\n\n", s.BenefitAmount, s.Deadline)
	}

	if params.DashboardURL != "" {
		fmt.Fprintf(&b, "View all schemes: %s\n\n", params.DashboardURL)
	}

	b.WriteString("Regards,\nKisanMitra Team\n")

	return b.String()
}
