package config

import (
	"fmt"
	"strings"

	"partsmcp/internal/model"
)

// Validate checks required fields and enum constraints. Every failure is a
// *model.ConfigurationError so the CLI can exit 2.
func Validate(cfg *Config) error {
	if cfg == nil {
		return &model.ConfigurationError{Message: "nil config"}
	}
	if strings.TrimSpace(cfg.Catalog.Path) == "" {
		return &model.ConfigurationError{
			Key: "catalog.path",
			Message: "Missing catalog path\n" +
				"Set env: " + EnvCatalogPath + "=/path/to/cache.sqlite3\n" +
				"Or pass: partsmcp serve --db /path/to/cache.sqlite3",
		}
	}
	if err := enum("server.transport", cfg.Server.Transport, Transports); err != nil {
		return err
	}
	if err := enum("log.level", cfg.Log.Level, LogLevels); err != nil {
		return err
	}
	if err := enum("log.format", cfg.Log.Format, LogFormats); err != nil {
		return err
	}
	if cfg.Server.Transport == TransportHTTP {
		if strings.TrimSpace(cfg.Server.Listen) == "" {
			return &model.ConfigurationError{Key: "server.listen", Message: "server.listen is required for the http transport"}
		}
		if !strings.HasPrefix(cfg.Server.MCPPath, "/") {
			return &model.ConfigurationError{Key: "server.mcp_path", Message: fmt.Sprintf("server.mcp_path=%q must start with /", cfg.Server.MCPPath)}
		}
	}
	if cfg.Server.RateLimitRPS < 0 || cfg.Server.RateLimitBurst < 0 {
		return &model.ConfigurationError{Key: "server.rate_limit_rps", Message: "server rate limits must be >= 0"}
	}
	if cfg.Media.TimeoutSeconds < 0 {
		return &model.ConfigurationError{Key: "media.timeout_seconds", Message: "media.timeout_seconds must be >= 0"}
	}
	return nil
}

func enum(key, value string, allowed []string) error {
	if stringIn(value, allowed) {
		return nil
	}
	return &model.ConfigurationError{
		Key:     key,
		Message: fmt.Sprintf("%s=%q; allowed: %s", key, value, strings.Join(allowed, ", ")),
	}
}
