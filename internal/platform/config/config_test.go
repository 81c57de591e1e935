package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithMemoryStore(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("CAMPAIGN_STORE", "Memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.CampaignStore)
	assert.Equal(t, VerifierReported, cfg.PaymentVerifier)
	assert.Equal(t, 24*time.Hour, cfg.WizardSessionTTL)
	assert.Equal(t, ":8080", cfg.HTTPAddr())
	assert.True(t, cfg.EnableEndDateCompleter)
}

func TestLoadDefaultsToProcessorVerifierWithDurableStore(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("CAMPAIGN_STORE", "postgres")
	t.Setenv("POSTGRES_DSN", "postgres://soundtik@localhost/soundtik")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, VerifierProcessor, cfg.PaymentVerifier)

	t.Setenv("PAYMENT_VERIFIER", "reported")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadReadsEnvFileWithoutOverridingProcessEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CAMPAIGN_STORE=memory\nHTTP_PORT=9090\nLOG_LEVEL=debug\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("CAMPAIGN_STORE", "memory")
	t.Setenv("HTTP_PORT", "")
	os.Unsetenv("HTTP_PORT")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr())
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestValidateRequiresBackendSettings(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{name: "postgres without dsn", cfg: Config{CampaignStore: StorePostgres, PaymentVerifier: VerifierProcessor, StripeSecretKey: "sk"}},
		{name: "firestore without project", cfg: Config{CampaignStore: StoreFirestore, PaymentVerifier: VerifierProcessor, StripeSecretKey: "sk"}},
		{name: "reported payments with a durable store", cfg: Config{CampaignStore: StorePostgres, PostgresDSN: "postgres://x", PaymentVerifier: VerifierReported}},
		{name: "unknown store", cfg: Config{CampaignStore: "mongo", PaymentVerifier: VerifierReported}},
		{name: "processor without keys", cfg: Config{CampaignStore: StoreMemory, PaymentVerifier: VerifierProcessor}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, tc.cfg.Validate())
		})
	}
}
