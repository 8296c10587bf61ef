package config

// Config holds all application configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Server  ServerConfig  `mapstructure:"server"`
	Editor  EditorConfig  `mapstructure:"editor"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CatalogConfig selects where hook models and integrations come from.
// Exactly one of Path, DBPath or URL is used, in that order of preference
// when several are set.
type CatalogConfig struct {
	Path    string `mapstructure:"path"`
	DBPath  string `mapstructure:"db_path"`
	URL     string `mapstructure:"url"`
	Watch   bool   `mapstructure:"watch"`
	Timeout string `mapstructure:"timeout"`
}

// Source reports which catalog backend the config selects.
func (c CatalogConfig) Source() string {
	switch {
	case c.Path != "":
		return "file"
	case c.DBPath != "":
		return "sqlite"
	case c.URL != "":
		return "http"
	default:
		return ""
	}
}

// ServerConfig configures the catalog API server.
type ServerConfig struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	EnableCORS      bool     `mapstructure:"enable_cors"`
	CORSOrigins     []string `mapstructure:"cors_origins"`
	ReadTimeout     string   `mapstructure:"read_timeout"`
	WriteTimeout    string   `mapstructure:"write_timeout"`
	ShutdownTimeout string   `mapstructure:"shutdown_timeout"`
}

// EditorConfig configures hook editing sessions.
type EditorConfig struct {
	Readonly bool `mapstructure:"readonly"`
}
