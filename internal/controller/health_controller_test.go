package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"qr-health-be/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHealthService struct {
	response *dto.HealthResponse
}

func (s *stubHealthService) Check(_ context.Context) *dto.HealthResponse {
	return s.response
}

func newHealthApp(response *dto.HealthResponse) *fiber.App {
	app := fiber.New()
	NewHealthController(&stubHealthService{response: response}).RegisterRootRoutes(app)
	return app
}

func TestHealthCheckHealthy(t *testing.T) {
	app := newHealthApp(&dto.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Services:  dto.ServiceStatus{Model: true, Store: true},
		Models:    []string{"gemma2"},
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var got dto.HealthResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "healthy", got.Status)
	assert.True(t, got.Services.Model)
	assert.Equal(t, []string{"gemma2"}, got.Models)
}

func TestHealthCheckDegradedStillAnswers200(t *testing.T) {
	app := newHealthApp(&dto.HealthResponse{
		Status:    "degraded",
		Timestamp: time.Now().UTC(),
		Services:  dto.ServiceStatus{Model: false, Store: true},
		Models:    []string{},
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)

	// A model outage must not flip the liveness probe.
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var got dto.HealthResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "degraded", got.Status)
	assert.False(t, got.Services.Model)
	assert.Empty(t, got.Models)
}
