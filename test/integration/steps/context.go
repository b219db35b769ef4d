// Package steps provides step definitions for BDD integration tests.
package steps

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"

	"github.com/salon-ledger/backend/config"
	"github.com/salon-ledger/backend/internal/application/adapter"
	"github.com/salon-ledger/backend/internal/domain/entity"
	"github.com/salon-ledger/backend/internal/infra/dependency"
	"github.com/salon-ledger/backend/internal/integration/email"
	"github.com/salon-ledger/backend/test/integration/mock"
)

// TestContext holds the test state for each scenario.
type TestContext struct {
	// HTTP
	server       *httptest.Server
	engine       *gin.Engine
	response     *http.Response
	responseBody []byte

	// Request building
	requestHeaders map[string]string

	// Auth
	accessToken  string
	refreshToken string
	nonceCounter int

	// Saved response fields, substituted into later requests as {name}
	saved map[string]string

	injector     *dependency.Injector
	reportSender *email.MockReportSender
}

// contextKey is used to store TestContext in context.Context.
type contextKey struct{}

// GetTestContext retrieves the TestContext from context.
func GetTestContext(ctx context.Context) *TestContext {
	if tc, ok := ctx.Value(contextKey{}).(*TestContext); ok {
		return tc
	}
	return nil
}

// SetTestContext stores the TestContext in context.
func SetTestContext(ctx context.Context, tc *TestContext) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// stubVerifier accepts any identity token of the form "subject|nonce".
type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, identityToken string) (*adapter.Identity, error) {
	parts := strings.SplitN(identityToken, "|", 2)
	identity := &adapter.Identity{
		Subject:     parts[0],
		Email:       parts[0],
		DisplayName: "Test Owner",
	}
	if len(parts) == 2 {
		identity.Nonce = parts[1]
	}
	return identity, nil
}

// InitializeTestSuite sets up resources before any scenarios run.
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		gin.SetMode(gin.TestMode)
	})
}

// InitializeScenario registers all step definitions.
func InitializeScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		db := mock.NewDb()
		if err := db.Reset(); err != nil {
			return ctx, fmt.Errorf("failed to reset database: %w", err)
		}
		redisClient := mock.NewRedis()
		if err := mock.ClearRedis(redisClient); err != nil {
			return ctx, fmt.Errorf("failed to clear redis: %w", err)
		}

		cfg := config.Load()
		cfg.Server.Environment = "test"

		reportSender := email.NewMockReportSender()
		injector := dependency.NewInjector(cfg, db.DbConn, redisClient, dependency.Options{
			Verifiers: map[entity.AuthProvider]adapter.IdentityVerifier{
				entity.AuthProviderGoogle: stubVerifier{},
				entity.AuthProviderApple:  stubVerifier{},
			},
			ReportSender: reportSender,
		})

		tc := &TestContext{
			requestHeaders: make(map[string]string),
			saved:          make(map[string]string),
			injector:       injector,
			reportSender:   reportSender,
		}
		tc.engine = injector.Router.Setup("test")
		tc.server = httptest.NewServer(tc.engine)

		return SetTestContext(ctx, tc), nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		tc := GetTestContext(ctx)
		if tc != nil && tc.server != nil {
			tc.server.Close()
		}
		return ctx, nil
	})

	registerAPISteps(ctx)
	registerResponseSteps(ctx)
	registerReportSteps(ctx)
}

// substitute replaces {name} placeholders with saved response fields.
func (tc *TestContext) substitute(s string) string {
	for key, value := range tc.saved {
		s = strings.ReplaceAll(s, "{"+key+"}", value)
	}
	return s
}
