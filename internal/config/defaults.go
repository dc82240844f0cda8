package config

import "partsmcp/internal/protocol"

const DefaultConfigFile = ".partsmcp.yaml"

// Default returns a config with every optional key filled in. Catalog.Path
// has no default.
func Default() Config {
	return Config{
		Version: 1,
		Server: Server{
			Transport: TransportStdio,
			Listen:    protocol.DefaultListenAddr,
			MCPPath:   protocol.DefaultMCPPath,
		},
		Media: Media{
			UserAgent:      "partsmcp",
			TimeoutSeconds: 0,
		},
		Log: Log{
			Level:  "info",
			Format: "json",
		},
	}
}
