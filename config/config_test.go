package config

import (
	"testing"

	v "github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func reset(t *testing.T) {
	t.Helper()
	v.Reset()
	Defaults()
	v.Set("jwt.secret", "secret")
	v.Set("storage.bucket", "estate")
}

func TestValidateDefaults(t *testing.T) {
	reset(t)

	assert.NoError(t, Validate())
	assert.Equal(t, int64(25<<20), MaxUploadSize())
	assert.Equal(t, "@every 15m", v.GetString("cleanup.schedule"))
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"log level", "app.log_level", "chatty"},
		{"port", "host.port", 0},
		{"driver", "db.driver", "mysql"},
		{"jwt ttl", "jwt.ttl", "-1h"},
		{"upload size", "upload.max_size", 0},
		{"storage type", "storage.type", "ftp"},
		{"bucket", "storage.bucket", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reset(t)
			v.Set(tt.key, tt.value)

			assert.Error(t, Validate())
		})
	}
}

func TestValidateR2NeedsCredentials(t *testing.T) {
	reset(t)
	v.Set("storage.type", "r2")
	assert.Error(t, Validate())

	v.Set("storage.account_id", "acc")
	v.Set("storage.access_key_id", "key")
	v.Set("storage.secret_access_key", "secret")
	assert.NoError(t, Validate())
}

func TestValidateSplitsOrigins(t *testing.T) {
	reset(t)
	v.Set("host.cors_origins", "https://a.example,https://b.example")

	assert.NoError(t, Validate())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, v.GetStringSlice("host.cors_origins"))
}
