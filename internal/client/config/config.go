// Package config holds runtime settings shared by the kiosk and dashboard
// binaries.
package config

// Config holds runtime settings for the client binaries.
//
// Fields:
//   - ServerURL: base URL of the photo server (http or https).
//   - OutputDir: directory where exported PDFs are written.
//   - Mobile: kiosk only; switches capture to the outward camera profile.
type Config struct {
	ServerURL string
	OutputDir string
	Mobile    bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.OutputDir = "."
	c.Mobile = false
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
