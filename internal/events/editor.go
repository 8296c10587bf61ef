package events

// Event type constants for hook editing sessions.
const (
	TypeSchemasLoaded      = "schemas_loaded"
	TypeSchemaSelected     = "schema_selected"
	TypeSchemaMismatch     = "schema_mismatch"
	TypeIntegrationApplied = "integration_applied"
	TypeJSONValidated      = "json_validated"
)

// SchemasLoadedEvent is emitted when the model fetch completes.
type SchemasLoadedEvent struct {
	BaseEvent
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

// NewSchemasLoadedEvent creates a schemas_loaded event. A non-nil err marks a
// failed fetch.
func NewSchemasLoadedEvent(projectKey string, count int, err error) SchemasLoadedEvent {
	e := SchemasLoadedEvent{
		BaseEvent: NewBaseEvent(TypeSchemasLoaded, projectKey),
		Count:     count,
	}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// SchemaSelectedEvent is emitted when a hook model replaces the active one.
type SchemaSelectedEvent struct {
	BaseEvent
	ModelID   int64  `json:"model_id"`
	ModelName string `json:"model_name"`
	Fields    int    `json:"fields"`
}

// NewSchemaSelectedEvent creates a schema_selected event.
func NewSchemaSelectedEvent(projectKey string, modelID int64, modelName string, fields int) SchemaSelectedEvent {
	return SchemaSelectedEvent{
		BaseEvent: NewBaseEvent(TypeSchemaSelected, projectKey),
		ModelID:   modelID,
		ModelName: modelName,
		Fields:    fields,
	}
}

// SchemaMismatchEvent is emitted when an existing hook references a model id
// that the provider did not return.
type SchemaMismatchEvent struct {
	BaseEvent
	HookUUID string `json:"hook_uuid,omitempty"`
	ModelID  int64  `json:"model_id"`
	Message  string `json:"message"`
}

// NewSchemaMismatchEvent creates a schema_mismatch event.
func NewSchemaMismatchEvent(projectKey, hookUUID string, modelID int64, message string) SchemaMismatchEvent {
	return SchemaMismatchEvent{
		BaseEvent: NewBaseEvent(TypeSchemaMismatch, projectKey),
		HookUUID:  hookUUID,
		ModelID:   modelID,
		Message:   message,
	}
}

// IntegrationAppliedEvent is emitted when an integration preset is merged
// into the active config.
type IntegrationAppliedEvent struct {
	BaseEvent
	Integration string   `json:"integration"`
	Replaced    []string `json:"replaced,omitempty"`
}

// NewIntegrationAppliedEvent creates an integration_applied event.
func NewIntegrationAppliedEvent(projectKey, integration string, replaced []string) IntegrationAppliedEvent {
	return IntegrationAppliedEvent{
		BaseEvent:   NewBaseEvent(TypeIntegrationApplied, projectKey),
		Integration: integration,
		Replaced:    replaced,
	}
}

// JSONValidatedEvent is emitted after a raw-text field was checked.
type JSONValidatedEvent struct {
	BaseEvent
	Field   string `json:"field,omitempty"`
	Invalid bool   `json:"invalid"`
}

// NewJSONValidatedEvent creates a json_validated event.
func NewJSONValidatedEvent(projectKey, field string, invalid bool) JSONValidatedEvent {
	return JSONValidatedEvent{
		BaseEvent: NewBaseEvent(TypeJSONValidated, projectKey),
		Field:     field,
		Invalid:   invalid,
	}
}
