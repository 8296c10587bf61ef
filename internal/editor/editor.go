// Package editor implements the hook configuration editing session: model
// selection, multi-choice aggregation, integration presets and raw JSON
// validation. It performs no I/O besides the model fetch it delegates to a
// ModelProvider.
package editor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/core"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/events"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/logging"
)

// Editor holds the state of one hook editing session. The state is guarded
// by a mutex so a host may run LoadSchemas on another goroutine.
type Editor struct {
	mu       sync.RWMutex
	provider ModelProvider
	logger   *logging.Logger
	bus      *events.EventBus

	hook         core.Hook
	hc           core.HookContext
	config       core.HookConfig
	models       []core.HookModel
	model        *core.HookModel
	integrations []core.Integration
	integration  *core.Integration
	warnings     []Warning

	existing    bool
	showConfig  bool
	jsonInvalid bool
	loading     bool
	fetched     bool
	closed      bool

	// gen identifies the current session; fetches started by an earlier
	// session are dropped.
	gen uint64
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithEventBus publishes session events to bus.
func WithEventBus(bus *events.EventBus) Option {
	return func(e *Editor) {
		e.bus = bus
	}
}

// New creates an editor backed by provider. The editor starts empty with its
// model fetch pending.
func New(provider ModelProvider, opts ...Option) *Editor {
	e := &Editor{
		provider: provider,
		config:   core.HookConfig{},
		loading:  true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	return e
}

// Initialize starts a session. A non-nil seed is deep-copied and marks the
// session as an update of an existing hook.
func (e *Editor) Initialize(seed *core.Hook, hc core.HookContext) State {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.gen++
	e.hook = core.Hook{}
	e.config = core.HookConfig{}
	e.existing = false
	if seed != nil {
		e.hook = seed.Clone()
		if e.hook.Config != nil {
			e.config = e.hook.Config
		}
		e.existing = true
		hc = hc.ResolveNode(seed.NodeID)
	}
	e.hook.Config = nil
	e.hc = hc
	e.showConfig = len(e.config) != 0

	e.models = nil
	e.model = nil
	e.warnings = nil
	e.jsonInvalid = false
	e.loading = true
	e.fetched = false

	e.integrations = core.HookIntegrations(hc.Integrations)
	e.integration = nil
	if f, ok := e.config[core.IntegrationFieldKey]; ok {
		if i, found := findIntegration(hc.Integrations, f.Value()); found {
			e.integration = &i
		}
	}

	e.logger.WithProject(hc.ProjectKey).Debug("hook editor initialized",
		"existing", e.existing,
		"fields", len(e.config),
		"integrations", len(e.integrations),
	)
	return e.snapshot()
}

// LoadSchemas performs the one-shot model fetch. Only the first call per
// session reaches the provider. The loading flag is cleared however the fetch
// ends, unless the session was re-initialized meanwhile. Provider failures are returned but leave the editor usable without
// models.
func (e *Editor) LoadSchemas(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return core.ErrInternal(core.CodeEditorClosed, "editor is closed")
	}
	if e.fetched {
		e.mu.Unlock()
		return nil
	}
	e.fetched = true
	e.loading = true
	hc := e.hc
	gen := e.gen
	e.mu.Unlock()

	defer e.finishLoading(gen)

	models, err := e.provider.FetchModels(ctx, hc)
	if err != nil {
		e.logger.WithProject(hc.ProjectKey).Warn("fetching hook models failed", "error", err)
		e.publish(events.NewSchemasLoadedEvent(hc.ProjectKey, 0, err))
		return core.ErrNetwork(core.CodeModelFetchFailed, "fetching hook models").WithCause(err)
	}

	e.applyModels(gen, models)
	return nil
}

func (e *Editor) finishLoading(gen uint64) {
	e.mu.Lock()
	if gen == e.gen {
		e.loading = false
	}
	e.mu.Unlock()
}

func (e *Editor) applyModels(gen uint64, models []core.HookModel) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || gen != e.gen {
		e.logger.WithProject(e.hc.ProjectKey).Debug("dropping hook models of a discarded session")
		return
	}

	e.models = make([]core.HookModel, len(models))
	for i, m := range models {
		e.models[i] = m.Clone()
	}
	e.publish(events.NewSchemasLoadedEvent(e.hc.ProjectKey, len(models), nil))

	if !e.existing || (e.hook.HookModelID == 0 && e.hook.HookModelName == "") {
		return
	}
	for i := range e.models {
		if e.matchesSeed(e.models[i]) {
			m := e.models[i].Clone()
			e.model = &m
			e.hook.HookModelID = m.ID
			e.hook.HookModelName = m.Name
			e.reconcileLocked()
			return
		}
	}

	ref := fmt.Sprint(e.hook.HookModelID)
	if e.hook.HookModelID == 0 {
		ref = fmt.Sprintf("%q", e.hook.HookModelName)
	}
	msg := fmt.Sprintf("hook model %s is not offered for this node", ref)
	e.warnings = append(e.warnings, Warning{Code: WarnSchemaMismatch, Message: msg})
	e.logger.WithProject(e.hc.ProjectKey).WithHook(e.hook.UUID).Warn("existing hook references unknown model",
		"model_id", e.hook.HookModelID,
		"offered", len(e.models),
	)
	if e.bus != nil {
		e.bus.PublishPriority(events.NewSchemaMismatchEvent(e.hc.ProjectKey, e.hook.UUID, e.hook.HookModelID, msg))
	}
}

// matchesSeed compares by id, or by name for hooks written without one.
func (e *Editor) matchesSeed(m core.HookModel) bool {
	if e.hook.HookModelID != 0 {
		return m.ID == e.hook.HookModelID
	}
	return m.Name == e.hook.HookModelName
}

// SelectSchema makes model the active one and resets the config to a copy
// of its defaults. Previous values are discarded.
func (e *Editor) SelectSchema(model core.HookModel) {
	e.mu.Lock()
	defer e.mu.Unlock()

	m := model.Clone()
	e.model = &m
	e.hook.HookModelID = m.ID
	e.hook.HookModelName = m.Name
	e.config = m.DefaultConfig.Clone()
	if e.config == nil {
		e.config = core.HookConfig{}
	}
	e.reconcileLocked()
	e.showConfig = len(e.config) != 0

	e.logger.WithProject(e.hc.ProjectKey).WithModel(m.ID, m.Name).Debug("hook model selected", "fields", len(e.config))
	e.publish(events.NewSchemaSelectedEvent(e.hc.ProjectKey, m.ID, m.Name, len(e.config)))
}

// SelectSchemaByID selects one of the loaded models.
func (e *Editor) SelectSchemaByID(id int64) error {
	e.mu.RLock()
	var found *core.HookModel
	for i := range e.models {
		if e.models[i].ID == id {
			m := e.models[i]
			found = &m
			break
		}
	}
	e.mu.RUnlock()

	if found == nil {
		return core.ErrNotFound("hook model", fmt.Sprint(id))
	}
	e.SelectSchema(*found)
	return nil
}

// SelectSchemaByName selects one of the loaded models by name.
func (e *Editor) SelectSchemaByName(name string) error {
	e.mu.RLock()
	id := int64(-1)
	for _, m := range e.models {
		if m.Name == name {
			id = m.ID
			break
		}
	}
	e.mu.RUnlock()

	if id < 0 {
		return core.ErrNotFound("hook model", name)
	}
	return e.SelectSchemaByID(id)
}

// ReconcileDerivedFields rebuilds every multi-choice field from its value,
// taking the allowed options from the active model.
func (e *Editor) ReconcileDerivedFields() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reconcileLocked()
}

func (e *Editor) reconcileLocked() {
	for name, f := range e.config {
		mc, ok := f.(*core.MultiChoiceField)
		if !ok {
			continue
		}
		options := mc.Options()
		if e.model != nil {
			options = nil
			if def, ok := e.model.DefaultConfig[name].(*core.MultiChoiceField); ok {
				options = def.Options()
			}
		}
		rebuilt := core.NewMultiChoiceField(mc.Value(), options)
		rebuilt.SetConfigurable(mc.IsConfigurable())
		e.config[name] = rebuilt
	}
}

// ToggleMultiChoice checks or unchecks a choice of a multi-choice field and
// re-derives the field value. A choice must be non-empty and must not
// contain the separator, or the value could not be split back into it.
func (e *Editor) ToggleMultiChoice(field, choice string, selected bool) error {
	if choice == "" || strings.Contains(choice, core.MultiChoiceSeparator) {
		return core.ErrValidation(core.CodeInvalidChoice,
			fmt.Sprintf("invalid choice %q for %s: must be non-empty without %q", choice, field, core.MultiChoiceSeparator))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	f, ok := e.config[field]
	if !ok {
		return core.ErrNotFound("config field", field)
	}
	mc, ok := f.(*core.MultiChoiceField)
	if !ok {
		return core.ErrValidation(core.CodeNotMultiChoice,
			fmt.Sprintf("field %s has type %s, not %s", field, f.Type(), core.FieldTypeMultiple))
	}
	mc.Toggle(choice, selected)
	return nil
}

// ApplyIntegration merges an integration preset into the config: the
// integration field takes the preset name, fields the preset defines are
// replaced by copies of the preset's, other fields are left alone.
func (e *Editor) ApplyIntegration(preset core.Integration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var replaced []string
	for name, f := range e.config {
		if name == core.IntegrationFieldKey {
			if tf, ok := f.(*core.TextField); ok {
				tf.Text = preset.Name
			} else {
				e.config[name] = core.NewTextField(core.FieldTypeIntegration, preset.Name)
			}
			continue
		}
		if pf, ok := preset.Config[name]; ok {
			e.config[name] = pf.Clone()
			replaced = append(replaced, name)
		}
	}
	sort.Strings(replaced)

	p := preset.Clone()
	e.integration = &p

	e.logger.WithProject(e.hc.ProjectKey).Debug("integration applied",
		"integration", preset.Name,
		"replaced", len(replaced),
	)
	e.publish(events.NewIntegrationAppliedEvent(e.hc.ProjectKey, preset.Name, replaced))
}

// ApplyIntegrationByName applies one of the hook-capable integrations.
func (e *Editor) ApplyIntegrationByName(name string) error {
	e.mu.RLock()
	preset, ok := findIntegration(e.integrations, name)
	e.mu.RUnlock()

	if !ok {
		return core.ErrNotFound("integration", name)
	}
	e.ApplyIntegration(preset)
	return nil
}

// ValidateRawText checks whether v is valid JSON text. Only string input is
// examined; anything else reports valid and leaves the invalid flag as is.
func (e *Editor) ValidateRawText(v any) ValidationResult {
	return e.validateRawText("", v)
}

// ValidateField validates the current text of a json field.
func (e *Editor) ValidateField(field string) (ValidationResult, error) {
	e.mu.RLock()
	f, ok := e.config[field]
	e.mu.RUnlock()

	if !ok {
		return ValidationResult{}, core.ErrNotFound("config field", field)
	}
	if f.Type() != core.FieldTypeJSON {
		return ValidationResult{}, core.ErrValidation("NOT_JSON_FIELD",
			fmt.Sprintf("field %s has type %s, not %s", field, f.Type(), core.FieldTypeJSON))
	}
	return e.validateRawText(field, f.Value()), nil
}

func (e *Editor) validateRawText(field string, v any) ValidationResult {
	text, ok := v.(string)
	if !ok {
		return ValidationResult{Invalid: false}
	}

	invalid := !gjson.Valid(text)

	e.mu.Lock()
	e.jsonInvalid = invalid
	e.publish(events.NewJSONValidatedEvent(e.hc.ProjectKey, field, invalid))
	e.mu.Unlock()

	return ValidationResult{Invalid: invalid}
}

// SetFieldValue edits a scalar field. JSON fields are validated after the
// edit and refused when the session is read-only.
func (e *Editor) SetFieldValue(field, text string) error {
	e.mu.Lock()
	f, ok := e.config[field]
	if !ok {
		e.mu.Unlock()
		return core.ErrNotFound("config field", field)
	}
	tf, ok := f.(*core.TextField)
	if !ok {
		e.mu.Unlock()
		return core.ErrValidation(core.CodeMultiChoiceScalar,
			fmt.Sprintf("field %s is a multi-choice field; toggle its choices instead", field))
	}
	if tf.Kind == core.FieldTypeJSON && e.hc.Readonly {
		e.mu.Unlock()
		return core.ErrReadonly(field)
	}
	tf.Text = text
	isJSON := tf.Kind == core.FieldTypeJSON
	e.mu.Unlock()

	if isJSON {
		e.validateRawText(field, text)
	}
	return nil
}

// Config returns a deep copy of the edited config for the host.
func (e *Editor) Config() core.HookConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.config.Clone()
}

// Hook returns the edited hook. New hooks get a UUID on first call.
func (e *Editor) Hook() core.Hook {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.hook.UUID == "" {
		e.hook.UUID = uuid.NewString()
	}
	if e.hook.NodeID == 0 {
		e.hook.NodeID = e.hc.NodeID
	}
	h := e.hook
	h.Config = e.config.Clone()
	return h
}

// State returns a deep snapshot of the session.
func (e *Editor) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot()
}

// Context returns the hook context of the session.
func (e *Editor) Context() core.HookContext {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hc
}

// Readonly reports whether raw-text editing is disabled.
func (e *Editor) Readonly() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hc.Readonly
}

// Warnings returns the diagnostics recorded so far.
func (e *Editor) Warnings() []Warning {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]Warning(nil), e.warnings...)
}

// Close discards the session. A model fetch still in flight is dropped.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}

func (e *Editor) snapshot() State {
	s := State{
		ActiveConfig:      e.config.Clone(),
		IsExistingEntry:   e.existing,
		ShowConfigSection: e.showConfig,
		JSONIsInvalid:     e.jsonInvalid,
		SchemasLoading:    e.loading,
		Readonly:          e.hc.Readonly,
		Warnings:          append([]Warning(nil), e.warnings...),
	}
	if e.model != nil {
		m := e.model.Clone()
		s.ActiveModel = &m
	}
	if e.integration != nil {
		i := e.integration.Clone()
		s.ActiveIntegration = &i
	}
	s.Models = make([]core.HookModel, len(e.models))
	for i, m := range e.models {
		s.Models[i] = m.Clone()
	}
	s.AvailableIntegrations = make([]core.Integration, len(e.integrations))
	for i, in := range e.integrations {
		s.AvailableIntegrations[i] = in.Clone()
	}
	return s
}

func (e *Editor) publish(ev events.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

func findIntegration(all []core.Integration, name string) (core.Integration, bool) {
	for _, i := range all {
		if i.Name == name {
			return i.Clone(), true
		}
	}
	return core.Integration{}, false
}
