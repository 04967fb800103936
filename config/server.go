package config

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// Addr is the listen address for the dashboard API.
	Addr string `json:"addr"`
	// Token, when set, protects the history endpoint with bearer auth.
	Token string `json:"token"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8058"
	}
}
