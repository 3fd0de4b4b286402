package ses_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxdocs/internal/domain"
	"taxdocs/internal/reporter/ses"
)

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	return &sesv2.SendEmailOutput{}, f.err
}

func TestSESReporter_ReportInvalid(t *testing.T) {
	fake := &fakeSES{}
	r := ses.NewSESReporterWithClient(fake, "noreply@example.com", "Tax Documents", []string{"ops@example.com"})

	rec := &domain.DocumentRecord{ID: uuid.New(), Status: domain.StateUploaded}
	res := &domain.ValidationResult{
		CategoryID:   "W2",
		QualityScore: 0.59,
		Errors:       []string{"missing required field: wages", `unsupported format "text/plain": expected one of pdf, image`},
		Warnings:     []string{"pattern: employee_ssn does not match expected format"},
	}
	require.NoError(t, r.ReportInvalid(context.Background(), rec, res))

	require.NotNil(t, fake.input)
	assert.Equal(t, "Tax Documents <noreply@example.com>", *fake.input.FromEmailAddress)
	assert.Equal(t, []string{"ops@example.com"}, fake.input.Destination.ToAddresses)
	msg := fake.input.Content.Simple
	assert.Contains(t, *msg.Subject.Data, "failed W2 validation")
	assert.Contains(t, *msg.Body.Text.Data, "  - missing required field: wages")
	assert.Contains(t, *msg.Body.Text.Data, "Warnings:")
	assert.Contains(t, *msg.Body.Html.Data, "&#34;text/plain&#34;")
}

func TestSESReporter_SendError(t *testing.T) {
	fake := &fakeSES{err: errors.New("throttled")}
	r := ses.NewSESReporterWithClient(fake, "a@b.c", "n", []string{"ops@example.com"})
	err := r.ReportInvalid(context.Background(), &domain.DocumentRecord{ID: uuid.New()}, &domain.ValidationResult{})
	assert.ErrorContains(t, err, "throttled")
}

func TestNewSESReporter_RequiresRecipients(t *testing.T) {
	_, err := ses.NewSESReporter(context.Background(), "us-east-1", "a@b.c", "n", nil)
	assert.Error(t, err)
}
