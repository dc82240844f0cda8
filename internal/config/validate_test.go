package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partsmcp/internal/model"
)

// TestValidate_MissingCatalogYieldsActionableOutput verifies a missing
// catalog path is a ConfigurationError naming the env variable.
func TestValidate_MissingCatalogYieldsActionableOutput(t *testing.T) {
	cfg := Default()

	err := Validate(&cfg)
	var cfgErr *model.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "catalog.path", cfgErr.Key)
	assert.Contains(t, err.Error(), "CONFIG_INVALID")
	assert.Contains(t, err.Error(), EnvCatalogPath)
}

func TestValidate_Enums(t *testing.T) {
	cases := map[string]func(*Config){
		"server.transport": func(c *Config) { c.Server.Transport = "grpc" },
		"log.level":        func(c *Config) { c.Log.Level = "trace" },
		"log.format":       func(c *Config) { c.Log.Format = "xml" },
	}
	for key, mutate := range cases {
		t.Run(key, func(t *testing.T) {
			cfg := Default()
			cfg.Catalog.Path = "/tmp/catalog.sqlite3"
			mutate(&cfg)

			var cfgErr *model.ConfigurationError
			require.True(t, errors.As(Validate(&cfg), &cfgErr))
			assert.Equal(t, key, cfgErr.Key)
		})
	}
}

func TestValidate_HTTPRequiresPath(t *testing.T) {
	cfg := Default()
	cfg.Catalog.Path = "/tmp/catalog.sqlite3"
	cfg.Server.Transport = TransportHTTP
	require.NoError(t, Validate(&cfg))

	cfg.Server.MCPPath = "mcp"
	assert.Error(t, Validate(&cfg))
}
