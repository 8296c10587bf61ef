package events_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/events"
)

func TestNewBaseEvent(t *testing.T) {
	e := events.NewBaseEvent("test_type", "PRJ")
	if e.EventType() != "test_type" {
		t.Errorf("got type %q, want %q", e.EventType(), "test_type")
	}
	if e.ProjectKey() != "PRJ" {
		t.Errorf("got project %q, want %q", e.ProjectKey(), "PRJ")
	}
	if e.Timestamp().IsZero() {
		t.Error("timestamp should not be zero")
	}
}

func TestNewSchemasLoadedEvent(t *testing.T) {
	ok := events.NewSchemasLoadedEvent("PRJ", 3, nil)
	if ok.EventType() != events.TypeSchemasLoaded {
		t.Errorf("got type %q, want %q", ok.EventType(), events.TypeSchemasLoaded)
	}
	if ok.Count != 3 || ok.Error != "" {
		t.Errorf("got %+v", ok)
	}

	failed := events.NewSchemasLoadedEvent("PRJ", 0, errors.New("offline"))
	if failed.Error != "offline" {
		t.Errorf("got error %q, want offline", failed.Error)
	}
}

func TestNewSchemaSelectedEvent(t *testing.T) {
	e := events.NewSchemaSelectedEvent("PRJ", 7, "Kafka", 3)
	if e.EventType() != events.TypeSchemaSelected {
		t.Errorf("got type %q", e.EventType())
	}
	if e.ModelID != 7 || e.ModelName != "Kafka" || e.Fields != 3 {
		t.Errorf("got %+v", e)
	}
}

func TestNewSchemaMismatchEvent(t *testing.T) {
	e := events.NewSchemaMismatchEvent("PRJ", "hook-1", 9, "hook model 9 is not offered")
	if e.EventType() != events.TypeSchemaMismatch {
		t.Errorf("got type %q", e.EventType())
	}
	if e.HookUUID != "hook-1" || e.ModelID != 9 {
		t.Errorf("got %+v", e)
	}
}

func TestNewIntegrationAppliedEvent(t *testing.T) {
	e := events.NewIntegrationAppliedEvent("PRJ", "my-kafka", []string{"topic"})
	if e.EventType() != events.TypeIntegrationApplied {
		t.Errorf("got type %q", e.EventType())
	}
	if e.Integration != "my-kafka" || len(e.Replaced) != 1 {
		t.Errorf("got %+v", e)
	}
}

func TestNewJSONValidatedEvent(t *testing.T) {
	e := events.NewJSONValidatedEvent("PRJ", "payload", true)
	if e.EventType() != events.TypeJSONValidated {
		t.Errorf("got type %q", e.EventType())
	}
	if e.Field != "payload" || !e.Invalid {
		t.Errorf("got %+v", e)
	}
}

func TestEventJSON(t *testing.T) {
	data, err := json.Marshal(events.NewSchemaSelectedEvent("PRJ", 1, "WebHook", 2))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for key, want := range map[string]interface{}{
		"type":        events.TypeSchemaSelected,
		"project_key": "PRJ",
		"model_name":  "WebHook",
	} {
		if decoded[key] != want {
			t.Errorf("%s = %v, want %v", key, decoded[key], want)
		}
	}
	if _, ok := decoded["timestamp"]; !ok {
		t.Error("timestamp missing")
	}
}
