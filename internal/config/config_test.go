package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10, cfg.RetrainThreshold)
	assert.Equal(t, 10*time.Second, cfg.OSRMTimeout)
	assert.Equal(t, "data/app.db", cfg.DSN())
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://waste@localhost/waste")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("OSRM_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://waste@localhost/waste", cfg.DSN())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 3*time.Second, cfg.OSRMTimeout)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		desc string
		env  map[string]string
	}{
		{desc: "unknown driver", env: map[string]string{"DB_DRIVER": "mysql"}},
		{desc: "postgres without url", env: map[string]string{"DB_DRIVER": "postgres", "DATABASE_URL": ""}},
		{desc: "zero threshold", env: map[string]string{"DB_DRIVER": "sqlite", "RETRAIN_THRESHOLD": "0"}},
		{desc: "zero concurrency", env: map[string]string{"DB_DRIVER": "sqlite", "ROUTING_CONCURRENCY": "0"}},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
