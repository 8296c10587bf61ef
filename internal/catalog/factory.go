package catalog

import (
	"github.com/hugo-lorenzo-mato/hookcfg/internal/config"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/core"
)

// Open creates the catalog source selected by cfg.
func Open(cfg config.CatalogConfig) (Source, error) {
	switch cfg.Source() {
	case "file":
		p, err := NewFileProvider(cfg.Path)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "sqlite":
		s, err := NewSQLiteStore(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "http":
		return NewHTTPProvider(cfg.URL, WithTimeout(config.ParseDurationOr(cfg.Timeout, DefaultHTTPTimeout))), nil
	default:
		return nil, core.ErrValidation("NO_CATALOG", "no catalog configured: set catalog.path, catalog.db_path or catalog.url")
	}
}

// Closeable is implemented by sources holding resources.
type Closeable interface {
	Close() error
}

// Close releases src if it holds resources.
func Close(src Source) error {
	if c, ok := src.(Closeable); ok {
		return c.Close()
	}
	return nil
}
