package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvAPIKey, EnvAPISecret, EnvSubaccount, EnvBaseURL} {
		t.Setenv(key, "")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	clearEnv(t)
	cfgPath := writeTempConfig(t, `
exchange:
  api_key: " key "
  api_secret: secret
`)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "key", cfg.Exchange.APIKey)
	assert.Equal(t, DefaultRestBaseURL, cfg.Exchange.RestBaseURL)
	assert.Equal(t, DefaultWSURL, cfg.Exchange.WSURL)
	assert.EqualValues(t, 15, cfg.Exchange.HTTPTimeoutSec)
	assert.Equal(t, 0, cfg.Exchange.RequestsPerSecond)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Exchange.HasCredentials())
}

func TestLoadWithoutFileUsesEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvAPISecret, "env-secret")
	t.Setenv(EnvSubaccount, "my sub")
	t.Setenv(EnvBaseURL, "http://127.0.0.1:8080/api/")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Exchange.APIKey)
	assert.Equal(t, "env-secret", cfg.Exchange.APISecret)
	assert.Equal(t, "my sub", cfg.Exchange.Subaccount)
	assert.Equal(t, "http://127.0.0.1:8080/api", cfg.Exchange.RestBaseURL)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPISecret, "from-env")
	cfgPath := writeTempConfig(t, `
exchange:
  api_key: k
  api_secret: from-file
  subaccount: main
`)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Exchange.APISecret)
	assert.Equal(t, "main", cfg.Exchange.Subaccount)
}

func TestLoadRejectsHalfCredentials(t *testing.T) {
	clearEnv(t)
	cfgPath := writeTempConfig(t, `
exchange:
  api_key: k
`)
	_, err := Load(cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key and api_secret must be set together")
}

func TestLoadRejectsUnknownField(t *testing.T) {
	clearEnv(t)
	cfgPath := writeTempConfig(t, `
exchange:
  api_key: k
  api_secret: s
  recv_window_ms: 5000
`)
	_, err := Load(cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recv_window_ms")
}

func TestLoadRejectsMultipleDocuments(t *testing.T) {
	clearEnv(t)
	for _, doc := range []string{
		"log:\n  level: debug\n---\nlog:\n  level: info\n",
		"log:\n  level: debug\n---\nunrelated: 1\n",
		"log:\n  level: debug\n---\n- a\n- b\n",
	} {
		cfgPath := writeTempConfig(t, doc)
		_, err := Load(cfgPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "single YAML document", doc)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"rest_base_url":       "exchange:\n  rest_base_url: ftp://example.com\n",
		"ws_url":              "exchange:\n  ws_url: https://example.com\n",
		"http_timeout_sec":    "exchange:\n  http_timeout_sec: 500\n",
		"requests_per_second": "exchange:\n  requests_per_second: -1\n",
		"log level":           "log:\n  level: loud\n",
		"max_order_size":      "defaults:\n  max_order_size: \"-1\"\n",
	}
	for want, body := range cases {
		t.Run(want, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeTempConfig(t, body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), want)
		})
	}
}

func TestLoadParsesDecimalDefaults(t *testing.T) {
	clearEnv(t)
	cfgPath := writeTempConfig(t, `
defaults:
  max_order_size: 0.25
log:
  level: DEBUG
  file: logs/ftx.log
`)
	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.True(t, cfg.Defaults.MaxOrderSize.Equal(decimal.RequireFromString("0.25")))
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 100, cfg.Log.MaxSizeMB)
	assert.Equal(t, 5, cfg.Log.MaxBackups)
}

func TestLoadEnvFile(t *testing.T) {
	const key = "FTX_REST_CONFIG_TEST_VALUE"
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	require.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
	require.NoError(t, LoadEnvFile(""))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=hello\n"), 0o600))
	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "hello", os.Getenv(key))
}

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
