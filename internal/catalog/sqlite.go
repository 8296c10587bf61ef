package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/core"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore persists a catalog in a SQLite database. Integrations stored
// with an empty project key are shared by every project.
type SQLiteStore struct {
	dbPath string
	db     *sql.DB
	mu     sync.RWMutex
}

// NewSQLiteStore opens (creating if needed) the catalog database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{dbPath: dbPath, db: db}
	if err := s.migrate(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("running migrations: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) migrate() error {
	var version int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version); err != nil {
		version = 0
	}
	if version < 1 {
		if _, err := s.db.Exec(schemaSQL); err != nil {
			return fmt.Errorf("applying migration v1: %w", err)
		}
	}
	return nil
}

// Import replaces the stored models and shared integrations with c.
// Project-scoped integrations are kept.
func (s *SQLiteStore) Import(ctx context.Context, c *Catalog) error {
	if err := c.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM hook_models"); err != nil {
		return fmt.Errorf("clearing hook models: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM integrations WHERE project_key = ''"); err != nil {
		return fmt.Errorf("clearing integrations: %w", err)
	}

	for _, m := range c.Models {
		cfg, err := json.Marshal(m.DefaultConfig)
		if err != nil {
			return fmt.Errorf("marshaling default config of %s: %w", m.Name, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO hook_models (id, name, type, description, icon, author, disabled, requires_repository, default_config)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.Name, m.Type, m.Description, m.Icon, m.Author, m.Disabled, m.RequiresRepository, string(cfg),
		)
		if err != nil {
			return fmt.Errorf("inserting hook model %s: %w", m.Name, err)
		}
	}

	for _, in := range c.Integrations {
		if err := insertIntegration(ctx, tx, "", in); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing catalog: %w", err)
	}
	return nil
}

// SaveIntegration stores an integration for one project, replacing any
// integration of the same name.
func (s *SQLiteStore) SaveIntegration(ctx context.Context, projectKey string, in core.Integration) error {
	if in.Name == "" {
		return core.ErrValidation("INVALID_INTEGRATION", "integration name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM integrations WHERE project_key = ? AND name = ?", projectKey, in.Name); err != nil {
		return fmt.Errorf("replacing integration %s: %w", in.Name, err)
	}
	if err := insertIntegration(ctx, tx, projectKey, in); err != nil {
		return err
	}
	return tx.Commit()
}

func insertIntegration(ctx context.Context, tx *sql.Tx, projectKey string, in core.Integration) error {
	cfg, err := json.Marshal(in.Config)
	if err != nil {
		return fmt.Errorf("marshaling config of %s: %w", in.Name, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO integrations (project_key, name, model_name, hook, config)
		VALUES (?, ?, ?, ?, ?)`,
		projectKey, in.Name, in.Model.Name, in.Model.Hook, string(cfg),
	)
	if err != nil {
		return fmt.Errorf("inserting integration %s: %w", in.Name, err)
	}
	return nil
}

// FetchModels returns the models offered for hc.
func (s *SQLiteStore) FetchModels(ctx context.Context, hc core.HookContext) ([]core.HookModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, description, icon, author, disabled, requires_repository, default_config
		FROM hook_models ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying hook models: %w", err)
	}
	defer rows.Close()

	var models []core.HookModel
	for rows.Next() {
		var m core.HookModel
		var cfg string
		if err := rows.Scan(&m.ID, &m.Name, &m.Type, &m.Description, &m.Icon, &m.Author,
			&m.Disabled, &m.RequiresRepository, &cfg); err != nil {
			return nil, fmt.Errorf("scanning hook model: %w", err)
		}
		if err := json.Unmarshal([]byte(cfg), &m.DefaultConfig); err != nil {
			return nil, fmt.Errorf("decoding default config of %s: %w", m.Name, err)
		}
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hook models: %w", err)
	}
	return Offered(models, hc), nil
}

// Integrations returns the shared integrations plus those of projectKey.
// A project integration shadows a shared one of the same name.
func (s *SQLiteStore) Integrations(ctx context.Context, projectKey string) ([]core.Integration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_key, name, model_name, hook, config
		FROM integrations
		WHERE project_key = '' OR project_key = ?
		ORDER BY name, project_key DESC`, projectKey)
	if err != nil {
		return nil, fmt.Errorf("querying integrations: %w", err)
	}
	defer rows.Close()

	var out []core.Integration
	seen := make(map[string]bool)
	for rows.Next() {
		var in core.Integration
		var project, cfg string
		if err := rows.Scan(&in.ID, &project, &in.Name, &in.Model.Name, &in.Model.Hook, &cfg); err != nil {
			return nil, fmt.Errorf("scanning integration: %w", err)
		}
		if seen[in.Name] {
			continue
		}
		seen[in.Name] = true
		if err := json.Unmarshal([]byte(cfg), &in.Config); err != nil {
			return nil, fmt.Errorf("decoding config of %s: %w", in.Name, err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating integrations: %w", err)
	}
	return out, nil
}
