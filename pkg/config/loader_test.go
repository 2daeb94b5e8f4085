package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminkit/adminkit/pkg/config"
)

type testConfig struct {
	Host string `env:"TEST_CFG_HOST" envDefault:"localhost"`
	Port int    `env:"TEST_CFG_PORT" envDefault:"5432"`
}

type requiredConfig struct {
	Secret string `env:"TEST_CFG_MISSING_SECRET,required"`
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults when env vars absent", func(t *testing.T) {
		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, 5432, cfg.Port)
	})

	t.Run("reads values from environment", func(t *testing.T) {
		t.Setenv("TEST_CFG_OVERRIDE_NAME", "acme")

		type overrideConfig struct {
			Name string `env:"TEST_CFG_OVERRIDE_NAME" envDefault:"fallback"`
		}

		var cfg overrideConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "acme", cfg.Name)
	})

	t.Run("returns cached value on repeated load", func(t *testing.T) {
		var first testConfig
		require.NoError(t, config.Load(&first))

		// Changing the environment after the first load must not change
		// the cached result.
		t.Setenv("TEST_CFG_HOST", "changed")

		var second testConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, first, second)
	})

	t.Run("fails on missing required variable", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("rejects nil pointer", func(t *testing.T) {
		err := config.Load[testConfig](nil)
		assert.ErrorIs(t, err, config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on missing required variable", func(t *testing.T) {
		assert.Panics(t, func() {
			var cfg requiredConfig
			config.MustLoad(&cfg)
		})
	})
}
