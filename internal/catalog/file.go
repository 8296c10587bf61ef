package catalog

import (
	"context"
	"sync"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/core"
)

// FileProvider serves a catalog read from a YAML file. Reload swaps the
// catalog in place; a failed reload keeps the previous one.
type FileProvider struct {
	path string

	mu      sync.RWMutex
	catalog *Catalog
}

// NewFileProvider loads the catalog at path.
func NewFileProvider(path string) (*FileProvider, error) {
	p := &FileProvider{path: path}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Path returns the catalog file path.
func (p *FileProvider) Path() string {
	return p.path
}

// Reload re-reads the catalog file.
func (p *FileProvider) Reload() error {
	c, err := Load(p.path)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.catalog = c
	p.mu.Unlock()
	return nil
}

// FetchModels returns the models offered for hc.
func (p *FileProvider) FetchModels(ctx context.Context, hc core.HookContext) ([]core.HookModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Offered(p.catalog.Models, hc), nil
}

// Integrations returns every integration of the catalog. File catalogs are
// not partitioned by project.
func (p *FileProvider) Integrations(ctx context.Context, _ string) ([]core.Integration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return cloneIntegrations(p.catalog.Integrations), nil
}

// Catalog returns a copy of the loaded catalog.
func (p *FileProvider) Catalog() *Catalog {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c := &Catalog{
		Models:       make([]core.HookModel, len(p.catalog.Models)),
		Integrations: cloneIntegrations(p.catalog.Integrations),
	}
	for i, m := range p.catalog.Models {
		c.Models[i] = m.Clone()
	}
	return c
}
