package editor

import (
	"github.com/hugo-lorenzo-mato/hookcfg/internal/core"
)

// WarnSchemaMismatch flags an existing hook whose model, matched by id or by
// name when the hook has no id, was not among the models returned by the
// provider.
const WarnSchemaMismatch = "SCHEMA_MISMATCH"

// Warning is a non-fatal diagnostic recorded during an editing session.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// State is a deep snapshot of an editing session.
type State struct {
	ActiveConfig          core.HookConfig    `json:"active_config"`
	ActiveModel           *core.HookModel    `json:"active_model,omitempty"`
	ActiveIntegration     *core.Integration  `json:"active_integration,omitempty"`
	Models                []core.HookModel   `json:"models"`
	AvailableIntegrations []core.Integration `json:"available_integrations"`
	IsExistingEntry       bool               `json:"is_existing_entry"`
	ShowConfigSection     bool               `json:"show_config_section"`
	JSONIsInvalid         bool               `json:"json_is_invalid"`
	SchemasLoading        bool               `json:"schemas_loading"`
	Readonly              bool               `json:"readonly"`
	Warnings              []Warning          `json:"warnings,omitempty"`
}

// ValidationResult reports the outcome of a raw-text check.
type ValidationResult struct {
	Invalid bool `json:"invalid"`
}
