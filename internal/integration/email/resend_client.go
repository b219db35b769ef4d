// Package email delivers the monthly settlement report mails.
package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/salon-ledger/backend/internal/application/adapter"
	domainerror "github.com/salon-ledger/backend/internal/domain/error"
)

// ResendClient implements the adapter.ReportSender interface using Resend.
type ResendClient struct {
	client    *resend.Client
	fromName  string
	fromEmail string
}

// NewResendClient creates a new Resend client.
func NewResendClient(apiKey, fromName, fromEmail string) *ResendClient {
	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

// Send delivers one rendered settlement report via Resend.
func (c *ResendClient) Send(ctx context.Context, input adapter.SendReportInput) error {
	from := fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail)

	params := &resend.SendEmailRequest{
		From:    from,
		To:      []string{input.To},
		Subject: input.Subject,
		Html:    input.HTML,
		Text:    input.Text,
	}

	if _, err := c.client.Emails.SendWithContext(ctx, params); err != nil {
		if isPermanentError(err) {
			return domainerror.NewReportError(
				domainerror.ErrCodePermanentReportFailure,
				"permanent report delivery failure",
				err,
			)
		}
		return domainerror.NewReportError(
			domainerror.ErrCodeTemporaryReportFailure,
			"temporary report delivery failure",
			err,
		)
	}
	return nil
}

// isPermanentError checks if the error should not be retried.
// Permanent: 401 (Unauthorized), 403 (Forbidden), 422 (Validation Error).
// Temporary: 429 (Rate Limit), 5xx (Server Errors).
func isPermanentError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	permanentPatterns := []string{
		"401",
		"403",
		"422",
		"unauthorized",
		"forbidden",
		"validation",
		"invalid",
		"bad request",
	}
	for _, pattern := range permanentPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// MockReportSender is a mock implementation for testing.
type MockReportSender struct {
	SentReports []adapter.SendReportInput
	ShouldFail  bool
	IsPermanent bool
}

// NewMockReportSender creates a new mock report sender.
func NewMockReportSender() *MockReportSender {
	return &MockReportSender{
		SentReports: make([]adapter.SendReportInput, 0),
	}
}

// Send implements the adapter.ReportSender interface for testing.
func (m *MockReportSender) Send(_ context.Context, input adapter.SendReportInput) error {
	if m.ShouldFail {
		if m.IsPermanent {
			return domainerror.NewReportError(
				domainerror.ErrCodePermanentReportFailure,
				"mock permanent failure",
				nil,
			)
		}
		return domainerror.NewReportError(
			domainerror.ErrCodeTemporaryReportFailure,
			"mock temporary failure",
			nil,
		)
	}
	m.SentReports = append(m.SentReports, input)
	return nil
}
