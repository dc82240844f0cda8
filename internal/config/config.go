package config

// Config is the effective server configuration. Keys mirror .partsmcp.yaml.
type Config struct {
	Version int     `yaml:"version" toml:"version"`
	Catalog Catalog `yaml:"catalog" toml:"catalog"`
	Server  Server  `yaml:"server" toml:"server"`
	Media   Media   `yaml:"media" toml:"media"`
	Log     Log     `yaml:"log" toml:"log"`
}

type Catalog struct {
	// Path to the jlcparts SQLite file. Required.
	Path string `yaml:"path" toml:"path"`
}

type Server struct {
	Transport string `yaml:"transport" toml:"transport"`
	Listen    string `yaml:"listen" toml:"listen"`
	MCPPath   string `yaml:"mcp_path" toml:"mcp_path"`
	// RateLimitRPS and RateLimitBurst define per-IP token bucket limits on
	// the http transport. Zero disables limiting.
	RateLimitRPS   float64 `yaml:"rate_limit_rps" toml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst" toml:"rate_limit_burst"`
}

type Media struct {
	UserAgent      string `yaml:"user_agent" toml:"user_agent"`
	TimeoutSeconds int    `yaml:"timeout_seconds" toml:"timeout_seconds"`
}

type Log struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Allowed enum values.
var (
	Transports = []string{TransportStdio, TransportHTTP}
	LogLevels  = []string{"debug", "info", "warn", "error"}
	LogFormats = []string{"json", "console"}
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

const (
	EnvCatalogPath = "JLCPCB_DB_PATH"
	EnvListen      = "PARTSMCP_LISTEN"
	EnvLogLevel    = "PARTSMCP_LOG_LEVEL"
)

func stringIn(s string, allowed []string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}
