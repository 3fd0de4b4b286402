// Package ses emails validation failures to an operations mailbox through Amazon SES.
package ses

import (
	"context"
	"fmt"
	"html"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"taxdocs/internal/domain"
	"taxdocs/internal/port"
)

// EmailAPI is the subset of the SES v2 client used by the reporter.
type EmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type sesReporter struct {
	client      EmailAPI
	fromAddress string
	fromName    string
	toAddresses []string
}

// NewSESReporter creates an ErrorReporter using the default AWS credential chain.
func NewSESReporter(ctx context.Context, region, fromAddress, fromName string, toAddresses []string) (port.ErrorReporter, error) {
	if len(toAddresses) == 0 {
		return nil, fmt.Errorf("SES reporter: no recipient addresses configured")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return NewSESReporterWithClient(sesv2.NewFromConfig(cfg), fromAddress, fromName, toAddresses), nil
}

// NewSESReporterWithClient creates an ErrorReporter over an existing SES client.
func NewSESReporterWithClient(client EmailAPI, fromAddress, fromName string, toAddresses []string) port.ErrorReporter {
	return &sesReporter{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		toAddresses: toAddresses,
	}
}

func (s *sesReporter) ReportInvalid(ctx context.Context, rec *domain.DocumentRecord, res *domain.ValidationResult) error {
	subject := fmt.Sprintf("Document %s failed %s validation", rec.ID, res.CategoryID)
	textBody := buildText(rec, res)
	htmlBody := buildHTML(rec, res)
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: s.toAddresses,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildText(rec *domain.DocumentRecord, res *domain.ValidationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Document: %s\nCategory: %s\nStatus: %s\nQuality score: %.2f\n\nErrors:\n",
		rec.ID, res.CategoryID, rec.Status, res.QualityScore)
	for _, e := range res.Errors {
		fmt.Fprintf(&b, "  - %s\n", e)
	}
	if len(res.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range res.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}
	return b.String()
}

func buildHTML(rec *domain.DocumentRecord, res *domain.ValidationResult) string {
	var items strings.Builder
	for _, e := range res.Errors {
		fmt.Fprintf(&items, "<li>%s</li>", html.EscapeString(e))
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Document validation failed</h2>
  <p>Document <code>%s</code> (%s) scored %.2f.</p>
  <ul style="color: #b91c1c;">%s</ul>
</body>
</html>`, rec.ID, html.EscapeString(res.CategoryID), res.QualityScore, items.String())
}
