package config

import "fmt"

// HTTPConfig defines the control API listener.
type HTTPConfig struct {
	// Address is the listen address. "off" disables the API.
	Address string `json:"address"`
	// AuthToken protects /api/assignments when set.
	AuthToken string `json:"auth_token"`
	// AllowedOrigins lists the origins allowed by CORS. "*" allows any.
	AllowedOrigins []string `json:"allowed_origins"`
	// ShutdownTimeoutSeconds bounds graceful shutdown.
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *HTTPConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.ShutdownTimeoutSeconds == 0 {
		c.ShutdownTimeoutSeconds = 5
	}
}

// Enabled reports whether the API should be served.
func (c HTTPConfig) Enabled() bool { return c.Address != "" && c.Address != "off" }

// Validate checks mandatory fields.
func (c HTTPConfig) Validate() error {
	if c.ShutdownTimeoutSeconds < 0 {
		return fmt.Errorf("http: shutdown_timeout_seconds must not be negative")
	}
	for _, o := range c.AllowedOrigins {
		if o == "" {
			return fmt.Errorf("http: empty allowed origin")
		}
	}
	return nil
}
