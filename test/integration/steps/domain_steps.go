package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// registerReportSteps registers settlement report worker steps.
func registerReportSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the report worker runs$`, theReportWorkerRuns)
	ctx.Step(`^a report email should be sent to "([^"]*)"$`, aReportEmailShouldBeSentTo)
	ctx.Step(`^no report email should be sent$`, noReportEmailShouldBeSent)
	ctx.Step(`^the report email should contain "([^"]*)"$`, theReportEmailShouldContain)
}

// iAmSignedInAs performs a sign-in for the given email and stores the issued
// tokens. Each call uses a fresh nonce so repeated sign-ins pass replay checks.
func iAmSignedInAs(ctx context.Context, userEmail string) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}

	tc.nonceCounter++
	nonce := fmt.Sprintf("nonce-%s-%d", userEmail, tc.nonceCounter)
	payload := map[string]string{
		"provider":       "google",
		"identity_token": userEmail + "|" + nonce,
		"nonce":          nonce,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return ctx, fmt.Errorf("failed to marshal sign-in payload: %w", err)
	}

	if err := tc.send("POST", "/api/v1/auth/signin", bytes.NewBuffer(body)); err != nil {
		return ctx, err
	}
	if tc.response.StatusCode != 200 {
		return ctx, fmt.Errorf("sign-in failed with status %d. Body: %s", tc.response.StatusCode, string(tc.responseBody))
	}

	var authResp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(tc.responseBody, &authResp); err != nil {
		return ctx, fmt.Errorf("failed to parse sign-in response: %w", err)
	}
	tc.accessToken = authResp.AccessToken
	tc.refreshToken = authResp.RefreshToken
	tc.saved["access_token"] = authResp.AccessToken
	tc.saved["refresh_token"] = authResp.RefreshToken

	return SetTestContext(ctx, tc), nil
}

func theReportWorkerRuns(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	tc.injector.Worker.ProcessNow(context.Background())
	return nil
}

func aReportEmailShouldBeSentTo(ctx context.Context, recipient string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	for _, sent := range tc.reportSender.SentReports {
		if sent.To == recipient {
			return nil
		}
	}
	return fmt.Errorf("no report email sent to '%s' (%d sent in total)", recipient, len(tc.reportSender.SentReports))
}

func noReportEmailShouldBeSent(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	if len(tc.reportSender.SentReports) != 0 {
		return fmt.Errorf("expected no report emails, got %d", len(tc.reportSender.SentReports))
	}
	return nil
}

func theReportEmailShouldContain(ctx context.Context, expected string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	if len(tc.reportSender.SentReports) == 0 {
		return fmt.Errorf("no report emails were sent")
	}
	last := tc.reportSender.SentReports[len(tc.reportSender.SentReports)-1]
	if !strings.Contains(last.Text, expected) && !strings.Contains(last.Subject, expected) {
		return fmt.Errorf("report email does not contain '%s'. Subject: %s Text: %s", expected, last.Subject, last.Text)
	}
	return nil
}
