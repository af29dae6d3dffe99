package auth

// StaticConfig is a plain-values Config, convenient for tests and for
// binaries that hydrate configuration before constructing the service.
type StaticConfig struct {
	SigningKey      string `json:"signing_key" koanf:"signing_key"`
	TokenExpiration int    `json:"token_expiration" koanf:"token_expiration"`
	BcryptCost      int    `json:"bcrypt_cost" koanf:"bcrypt_cost"`
	CookieName      string `json:"cookie_name" koanf:"cookie_name"`
	BaseURL         string `json:"base_url" koanf:"base_url"`
}

var _ Config = (*StaticConfig)(nil)

func (c *StaticConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c *StaticConfig) GetTokenExpiration() int {
	if c.TokenExpiration <= 0 {
		return DefaultSessionTTLSeconds
	}
	return c.TokenExpiration
}

func (c *StaticConfig) GetBcryptCost() int {
	if c.BcryptCost <= 0 {
		return DefaultBcryptCost
	}
	return c.BcryptCost
}

func (c *StaticConfig) GetCookieName() string {
	if c.CookieName == "" {
		return DefaultCookieName
	}
	return c.CookieName
}

func (c *StaticConfig) GetBaseURL() string {
	return c.BaseURL
}
