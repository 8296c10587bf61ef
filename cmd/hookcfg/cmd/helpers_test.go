package cmd

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/config"
)

// writeStarterCatalog writes the init catalog into dir and returns a config
// pointing at it.
func writeStarterCatalog(t *testing.T, dir string) *config.Config {
	t.Helper()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(starterCatalog), 0o600))
	return &config.Config{Catalog: config.CatalogConfig{Path: path}}
}

// captureStdout runs fn with os.Stdout redirected and returns the output.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}
