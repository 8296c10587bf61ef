// Package catalog supplies hook models and project integrations to editing
// sessions. Catalogs live in a YAML file, a SQLite database or behind the
// hookcfg HTTP API.
package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/core"
)

// Source provides hook models and integrations. Every implementation also
// satisfies editor.ModelProvider.
type Source interface {
	FetchModels(ctx context.Context, hc core.HookContext) ([]core.HookModel, error)
	Integrations(ctx context.Context, projectKey string) ([]core.Integration, error)
}

// Catalog is the document listing every known hook model and integration.
type Catalog struct {
	Models       []core.HookModel   `yaml:"models" json:"models"`
	Integrations []core.Integration `yaml:"integrations" json:"integrations"`
}

// Parse decodes a catalog document. JSON documents are accepted too.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data)
}

// Validate checks that models and integrations are uniquely identified.
func (c *Catalog) Validate() error {
	ids := make(map[int64]bool, len(c.Models))
	names := make(map[string]bool, len(c.Models))
	for i, m := range c.Models {
		if m.ID <= 0 {
			return core.ErrValidation("INVALID_CATALOG", fmt.Sprintf("models[%d]: id must be positive", i))
		}
		if m.Name == "" {
			return core.ErrValidation("INVALID_CATALOG", fmt.Sprintf("models[%d]: name is required", i))
		}
		if ids[m.ID] {
			return core.ErrValidation("INVALID_CATALOG", fmt.Sprintf("duplicate model id %d", m.ID))
		}
		if names[m.Name] {
			return core.ErrValidation("INVALID_CATALOG", fmt.Sprintf("duplicate model name %q", m.Name))
		}
		ids[m.ID] = true
		names[m.Name] = true
	}

	seen := make(map[string]bool, len(c.Integrations))
	for i, in := range c.Integrations {
		if in.Name == "" {
			return core.ErrValidation("INVALID_CATALOG", fmt.Sprintf("integrations[%d]: name is required", i))
		}
		if seen[in.Name] {
			return core.ErrValidation("INVALID_CATALOG", fmt.Sprintf("duplicate integration %q", in.Name))
		}
		seen[in.Name] = true
	}
	return nil
}

// Offered returns copies of the models usable on the node described by hc.
// Disabled models are never offered; repository-bound models need a node
// with a repository.
func Offered(models []core.HookModel, hc core.HookContext) []core.HookModel {
	out := make([]core.HookModel, 0, len(models))
	for _, m := range models {
		if m.Disabled {
			continue
		}
		if m.RequiresRepository && hc.Repository == "" {
			continue
		}
		out = append(out, m.Clone())
	}
	return out
}

// Context builds the hook context of a node, attaching the catalog
// integrations of the project.
func Context(ctx context.Context, src Source, hc core.HookContext) (core.HookContext, error) {
	integrations, err := src.Integrations(ctx, hc.ProjectKey)
	if err != nil {
		return hc, err
	}
	hc.Integrations = integrations
	return hc, nil
}

func cloneIntegrations(in []core.Integration) []core.Integration {
	out := make([]core.Integration, len(in))
	for i, v := range in {
		out[i] = v.Clone()
	}
	return out
}
