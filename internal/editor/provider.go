package editor

import (
	"context"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/core"
)

// ModelProvider returns the hook models offered for a hook context.
type ModelProvider interface {
	FetchModels(ctx context.Context, hc core.HookContext) ([]core.HookModel, error)
}

// ModelProviderFunc adapts a function to ModelProvider.
type ModelProviderFunc func(ctx context.Context, hc core.HookContext) ([]core.HookModel, error)

// FetchModels calls f.
func (f ModelProviderFunc) FetchModels(ctx context.Context, hc core.HookContext) ([]core.HookModel, error) {
	return f(ctx, hc)
}

// StaticProvider serves a fixed model list regardless of context.
type StaticProvider []core.HookModel

// FetchModels returns deep copies of the models.
func (p StaticProvider) FetchModels(_ context.Context, _ core.HookContext) ([]core.HookModel, error) {
	out := make([]core.HookModel, len(p))
	for i, m := range p {
		out[i] = m.Clone()
	}
	return out, nil
}
