package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookwhim/auth"
)

func TestStaticConfigDefaults(t *testing.T) {
	cfg := &auth.StaticConfig{SigningKey: "key"}

	assert.Equal(t, "key", cfg.GetSigningKey())
	assert.Equal(t, auth.DefaultSessionTTLSeconds, cfg.GetTokenExpiration())
	assert.Equal(t, auth.DefaultBcryptCost, cfg.GetBcryptCost())
	assert.Equal(t, auth.DefaultCookieName, cfg.GetCookieName())
}

func TestStaticConfigOverrides(t *testing.T) {
	cfg := &auth.StaticConfig{
		SigningKey:      "key",
		TokenExpiration: 3600,
		BcryptCost:      10,
		CookieName:      "session",
		BaseURL:         "https://bookwhim.example.com",
	}

	assert.Equal(t, 3600, cfg.GetTokenExpiration())
	assert.Equal(t, 10, cfg.GetBcryptCost())
	assert.Equal(t, "session", cfg.GetCookieName())
	assert.Equal(t, "https://bookwhim.example.com", cfg.GetBaseURL())
}
