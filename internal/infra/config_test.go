package infra

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "localhost", cfg.PGHost)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
}

func TestConfigDSN(t *testing.T) {
	t.Run("DATABASE_URL wins", func(t *testing.T) {
		cfg := &Config{DatabaseURL: "postgres://u:p@db:5432/app"}
		assert.Equal(t, "postgres://u:p@db:5432/app", cfg.DSN())
	})

	t.Run("assembled from parts", func(t *testing.T) {
		cfg := &Config{PGUser: "desk", PGPassword: "secret", PGHost: "db", PGPort: 5433, PGDatabase: "game"}
		assert.Equal(t, "postgres://desk:secret@db:5433/game?sslmode=disable", cfg.DSN())
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("default password rejected", func(t *testing.T) {
		cfg := &Config{PGPassword: "supportdesk", SecureCookies: true}
		assert.Error(t, cfg.Validate())
	})

	t.Run("insecure cookies rejected", func(t *testing.T) {
		cfg := &Config{PGPassword: "real-secret", SecureCookies: false}
		assert.Error(t, cfg.Validate())
	})

	t.Run("dev bypass", func(t *testing.T) {
		cfg := &Config{PGPassword: "supportdesk", AllowInsecureDefaults: true}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("production settings pass", func(t *testing.T) {
		cfg := &Config{PGPassword: "real-secret", SecureCookies: true}
		assert.NoError(t, cfg.Validate())
	})
}
