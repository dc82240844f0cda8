package config

// DefaultYAML is the template written by "partsmcp config init".
const DefaultYAML = `version: 1

catalog:
  # jlcparts cache.sqlite3; JLCPCB_DB_PATH overrides this
  path: ""

server:
  transport: stdio # stdio | http
  listen: 127.0.0.1:8090
  mcp_path: /mcp
  rate_limit_rps: 0 # per client IP, http only; 0 disables
  rate_limit_burst: 0

media:
  user_agent: partsmcp
  timeout_seconds: 0 # seconds per image fetch; 0 means no timeout

log:
  level: info # debug | info | warn | error
  format: json # json | console
`
