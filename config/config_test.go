package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("RATE_LIMIT_BURST", "")
	t.Setenv("TRUST_PROXY", "")

	LoadConfig()

	assert.Equal(t, "8080", Port)
	assert.Equal(t, "gemini-2.0-flash", GeminiModel)
	assert.Equal(t, "*", AllowedOrigin)
	assert.Equal(t, 5, RateLimitBurst)
	assert.InDelta(t, 2.0, RateLimitRPS, 0.0001)
	assert.False(t, TrustProxy)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("SPOTIFY_CLIENT_ID", "client-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "client-secret")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("TRUST_PROXY", "true")

	LoadConfig()

	assert.Equal(t, "9090", Port)
	assert.Equal(t, "client-id", SpotifyClientID)
	assert.Equal(t, "client-secret", SpotifyClientSecret)
	assert.Equal(t, "json", LogFormat)
	assert.InDelta(t, 0.5, RateLimitRPS, 0.0001)
	assert.True(t, TrustProxy)
}

// chdir mirrors testing.T.Chdir (Go 1.24+): it switches the working
// directory for the duration of the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
