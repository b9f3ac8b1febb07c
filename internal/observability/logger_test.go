package observability

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOTLPHeaders(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "Authorization=Basic%20dXNlcjpwYXNz,X-Scope-OrgID=tw")

	headers := parseOTLPHeaders()
	assert.Equal(t, "Basic dXNlcjpwYXNz", headers["Authorization"])
	assert.Equal(t, "tw", headers["X-Scope-OrgID"])
}

func TestParseOTLPHeadersUnset(t *testing.T) {
	os.Unsetenv("OTEL_EXPORTER_OTLP_HEADERS")
	assert.Nil(t, parseOTLPHeaders())
}

func TestInitLoggerDisabled(t *testing.T) {
	provider, logger, err := InitLogger(context.Background(), "", false)
	require.NoError(t, err)
	require.NotNil(t, provider)
	require.NotNil(t, logger)

	logger.Info("probe")
	require.NoError(t, provider.Shutdown(context.Background()))
}
