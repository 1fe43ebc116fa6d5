package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekgrid/internal/common/errors"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_PATH", "MIN_HOUR", "MAX_HOUR", "VISIBLE_DAYS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./weekgrid.db", cfg.DatabasePath)
	assert.Equal(t, 0, cfg.MinHour)
	assert.Equal(t, 24, cfg.MaxHour)
	assert.Equal(t, 7, cfg.VisibleDays)
	assert.NoError(t, cfg.Validate())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MIN_HOUR", "7")
	t.Setenv("MAX_HOUR", "21")
	t.Setenv("VISIBLE_DAYS", "3")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 7, cfg.MinHour)
	assert.Equal(t, 21, cfg.MaxHour)
	assert.Equal(t, 3, cfg.VisibleDays)
}

func TestLoadIgnoresMalformedInt(t *testing.T) {
	t.Setenv("MIN_HOUR", "breakfast")

	cfg := Load()

	assert.Equal(t, 0, cfg.MinHour)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Port: "8080", MinHour: 0, MaxHour: 24, VisibleDays: 7}
	}

	t.Run("accepts sane config", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("rejects empty port", func(t *testing.T) {
		cfg := valid()
		cfg.Port = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects non-numeric port", func(t *testing.T) {
		cfg := valid()
		cfg.Port = "eighty"
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects inverted hour window", func(t *testing.T) {
		cfg := valid()
		cfg.MinHour, cfg.MaxHour = 21, 7
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects zero visible days", func(t *testing.T) {
		cfg := valid()
		cfg.VisibleDays = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestValidateHourRange(t *testing.T) {
	tests := []struct {
		name    string
		minHour int
		maxHour int
		wantErr bool
	}{
		{"full day", 0, 24, false},
		{"business hours", 7, 21, false},
		{"single hour", 11, 12, false},
		{"negative min", -1, 12, true},
		{"max beyond 24", 0, 25, true},
		{"zero max", 0, 0, true},
		{"equal bounds", 9, 9, true},
		{"inverted", 18, 9, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHourRange(tt.minHour, tt.maxHour)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
