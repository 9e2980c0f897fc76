package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig() *Config {
	return NewFromViper(NewEmptyViper())
}

func TestDefaults(t *testing.T) {
	cfg := newTestConfig()

	assert.Equal(t, "none", cfg.GetClassifier().Provider)
	assert.Equal(t, "memory", cfg.GetStore().Type)
	assert.Equal(t, "0.0.0.0:8080", cfg.GetServer().ListenAddress)

	smtpCfg := cfg.GetSMTP()
	assert.True(t, smtpCfg.Enabled)
	assert.Equal(t, "0.0.0.0:10025", smtpCfg.ListenAddress)
	assert.False(t, smtpCfg.BlockQuarantined)
	assert.Equal(t, "X-Phish-Status", smtpCfg.StatusHeader)
	assert.Equal(t, "X-Phish-Score", smtpCfg.ScoreHeader)

	assert.Empty(t, cfg.GetEngine().TrustedDomains)
}

func TestGetDuration(t *testing.T) {
	cfg := newTestConfig()

	timeout, err := cfg.GetDuration("classifier.timeout")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, timeout)

	retention, err := cfg.GetDuration("store.retention")
	require.NoError(t, err)
	assert.Equal(t, 720*time.Hour, retention)

	_, err = cfg.GetDuration("server.listen_address")
	assert.Error(t, err)
}

func TestOverrides(t *testing.T) {
	v := NewEmptyViper()
	v.Set("classifier.provider", "bayes")
	v.Set("bayes.dataset_path", "/tmp/corpus.csv")
	cfg := NewFromViper(v)

	assert.Equal(t, "bayes", cfg.GetClassifier().Provider)
	assert.Equal(t, "/tmp/corpus.csv", cfg.GetBayes().DatasetPath)
}
