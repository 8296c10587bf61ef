package config

// DefaultConfigYAML is written by `hookcfg init`-style bootstrapping and
// documents every option.
const DefaultConfigYAML = `# hookcfg configuration

log:
  level: info     # debug, info, warn, error
  format: auto    # auto, text, json

# Where hook models and integrations come from. Set one of path, db_path, url.
catalog:
  path: .hookcfg/catalog.yaml
  # db_path: .hookcfg/catalog.db
  # url: http://localhost:8090
  watch: false
  timeout: 10s

server:
  host: localhost
  port: 8090
  enable_cors: false
  cors_origins: []
  read_timeout: 15s
  write_timeout: 30s
  shutdown_timeout: 10s

editor:
  readonly: false
`
