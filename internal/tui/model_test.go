package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/core"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/editor"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/events"
)

func testModels() []core.HookModel {
	return []core.HookModel{
		{
			ID:   1,
			Name: "RepositoryWebHook",
			DefaultConfig: core.HookConfig{
				"env":      core.NewTextField(core.FieldTypeText, ""),
				"branches": core.NewMultiChoiceField("", []string{"main", "dev"}),
			},
		},
		{
			ID:   2,
			Name: "Kafka",
			DefaultConfig: core.HookConfig{
				core.IntegrationFieldKey: core.NewTextField(core.FieldTypeIntegration, ""),
				"topic":                  core.NewTextField(core.FieldTypeString, ""),
				"payload":                core.NewTextField(core.FieldTypeJSON, "{}"),
			},
		},
	}
}

func testContext() core.HookContext {
	return core.HookContext{
		ProjectKey:   "PRJ",
		WorkflowName: "build",
		NodeID:       10,
		Integrations: []core.Integration{
			{
				Name:   "kafka-a",
				Model:  core.IntegrationModel{Name: "Kafka", Hook: true},
				Config: core.HookConfig{"topic": core.NewTextField(core.FieldTypeString, "a")},
			},
			{
				Name:   "kafka-b",
				Model:  core.IntegrationModel{Name: "Kafka", Hook: true},
				Config: core.HookConfig{"topic": core.NewTextField(core.FieldTypeString, "b")},
			},
		},
	}
}

// loaded runs the model fetch synchronously and feeds the result to the TUI.
func loaded(t *testing.T, seed *core.Hook, save SaveFunc) (Model, *editor.Editor) {
	t.Helper()
	e := editor.New(editor.StaticProvider(testModels()))
	e.Initialize(seed, testContext())
	m := New(context.Background(), e, save)
	err := e.LoadSchemas(context.Background())
	next, _ := m.Update(SchemasLoadedMsg{Err: err})
	return next.(Model), e
}

func send(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModel_NewHookOpensPicker(t *testing.T) {
	m, _ := loaded(t, nil, nil)

	if m.mode != modePicker {
		t.Fatalf("mode = %v, want picker", m.mode)
	}
	if got := m.picker.Matches(); len(got) != 2 {
		t.Errorf("picker lists %v, want both models", got)
	}
}

func TestModel_ExistingHookShowsFields(t *testing.T) {
	seed := &core.Hook{
		UUID:        "h1",
		HookModelID: 1,
		Config: core.HookConfig{
			"env":      core.NewTextField(core.FieldTypeText, "prod"),
			"branches": core.NewMultiChoiceField("dev", nil),
		},
	}
	m, _ := loaded(t, seed, nil)

	if m.mode != modeFields {
		t.Fatalf("mode = %v, want fields", m.mode)
	}
	// branches: main, dev; env
	if len(m.rows) != 3 {
		t.Fatalf("rows = %+v, want 3", m.rows)
	}
	view := m.View()
	for _, want := range []string{"RepositoryWebHook", "prod", "[x] dev", "[ ] main"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestModel_PickAndToggle(t *testing.T) {
	m, e := loaded(t, nil, nil)

	for _, r := range "webhook" {
		m = send(m, string(r))
	}
	if got := m.picker.Matches(); len(got) != 1 || got[0] != "RepositoryWebHook" {
		t.Fatalf("Matches() = %v", got)
	}
	m = send(m, "enter")
	if m.mode != modeFields {
		t.Fatalf("mode = %v, want fields", m.mode)
	}
	if st := e.State(); st.ActiveModel == nil || st.ActiveModel.ID != 1 {
		t.Fatalf("active model = %+v", st.ActiveModel)
	}

	// rows: branches/main, branches/dev, env
	m = send(m, " ", "down", "enter")
	if got := e.Config()["branches"].Value(); got != "main;dev" {
		t.Errorf("branches = %q, want main;dev", got)
	}
	m = send(m, "up", "up", " ")
	if got := e.Config()["branches"].Value(); got != "dev" {
		t.Errorf("branches = %q, want dev", got)
	}
}

func TestModel_EditTextField(t *testing.T) {
	seed := &core.Hook{HookModelID: 1, Config: testModels()[0].DefaultConfig.Clone()}
	m, e := loaded(t, seed, nil)

	m = send(m, "down", "down", "enter")
	if m.mode != modeEdit || m.editing != "env" {
		t.Fatalf("mode = %v editing = %q", m.mode, m.editing)
	}
	m = send(m, "p", "r", "o", "d", "enter")
	if m.mode != modeFields {
		t.Fatalf("mode = %v, want fields", m.mode)
	}
	if got := e.Config()["env"].Value(); got != "prod" {
		t.Errorf("env = %q, want prod", got)
	}

	m = send(m, "enter", "x", "esc")
	if got := e.Config()["env"].Value(); got != "prod" {
		t.Errorf("env after cancel = %q, want prod", got)
	}
}

func TestModel_JSONValidationWhileTyping(t *testing.T) {
	seed := &core.Hook{HookModelID: 2, Config: testModels()[1].DefaultConfig.Clone()}
	m, e := loaded(t, seed, nil)

	// rows: integration, payload, topic
	m = send(m, "down", "enter")
	if m.editing != "payload" {
		t.Fatalf("editing = %q, want payload", m.editing)
	}
	m = send(m, "{")
	if !e.State().JSONIsInvalid {
		t.Error("JSONIsInvalid should be set while the text is not JSON")
	}
	if !strings.Contains(m.View(), "Invalid JSON") {
		t.Error("View() should show the invalid JSON banner")
	}

	m = send(m, "esc")
	if e.State().JSONIsInvalid {
		t.Error("cancel should restore the flag of the stored text")
	}
	_ = m
}

func TestModel_CancelEditOfRemovedField(t *testing.T) {
	seed := &core.Hook{HookModelID: 2, Config: testModels()[1].DefaultConfig.Clone()}
	m, e := loaded(t, seed, nil)

	m = send(m, "down", "enter")
	if m.editing != "payload" {
		t.Fatalf("editing = %q, want payload", m.editing)
	}
	// the session switches to a model without the field while it is edited
	e.SelectSchema(testModels()[0])

	m = send(m, "esc")
	if m.mode != modeFields {
		t.Errorf("mode = %v, want fields", m.mode)
	}
	if !m.statusErr || !strings.Contains(m.status, "payload") {
		t.Errorf("status = %q (err=%v), want the validation failure", m.status, m.statusErr)
	}
}

func TestModel_CycleIntegration(t *testing.T) {
	seed := &core.Hook{HookModelID: 2, Config: testModels()[1].DefaultConfig.Clone()}
	m, e := loaded(t, seed, nil)

	m = send(m, "i")
	if got := e.Config()["topic"].Value(); got != "a" {
		t.Errorf("topic = %q, want a", got)
	}
	m = send(m, "i")
	if got := e.Config()[core.IntegrationFieldKey].Value(); got != "kafka-b" {
		t.Errorf("integration = %q, want kafka-b", got)
	}
	m = send(m, "i")
	if got := e.Config()[core.IntegrationFieldKey].Value(); got != "kafka-a" {
		t.Errorf("integration = %q, want kafka-a after wrap", got)
	}
	_ = m
}

func TestModel_IntegrationWithoutField(t *testing.T) {
	seed := &core.Hook{HookModelID: 1, Config: testModels()[0].DefaultConfig.Clone()}
	m, _ := loaded(t, seed, nil)

	m = send(m, "i")
	if !m.statusErr {
		t.Errorf("status = %q, want an error", m.status)
	}
}

func TestModel_Save(t *testing.T) {
	var got core.Hook
	save := func(h core.Hook) (string, error) {
		got = h
		return "hook.json", nil
	}
	seed := &core.Hook{HookModelID: 1, Config: testModels()[0].DefaultConfig.Clone()}
	m, _ := loaded(t, seed, save)

	next, cmd := send(m, " ").Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("save should return a command")
	}
	next, quit := m.Update(cmd())
	m = next.(Model)

	if m.Saved() != "hook.json" {
		t.Errorf("Saved() = %q", m.Saved())
	}
	if quit == nil {
		t.Error("a successful save should quit")
	}
	if got.UUID == "" {
		t.Error("saved hook should carry a UUID")
	}
	if v := got.Config["branches"].Value(); v != "main" {
		t.Errorf("saved branches = %q, want main", v)
	}
}

func TestModel_SaveRefused(t *testing.T) {
	save := func(core.Hook) (string, error) { return "", errors.New("unexpected save") }

	m, _ := loaded(t, nil, save)
	m = send(m, "esc")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if cmd != nil {
		t.Error("saving without a model should be refused")
	}

	m, _ = loaded(t, nil, nil)
	m = send(m, "esc", "s")
	if !m.statusErr {
		t.Error("saving without a save func should report an error")
	}
}

func TestModel_SaveError(t *testing.T) {
	seed := &core.Hook{HookModelID: 1, Config: testModels()[0].DefaultConfig.Clone()}
	m, _ := loaded(t, seed, nil)

	next, cmd := m.Update(savedMsg{err: errors.New("disk full")})
	m = next.(Model)
	if cmd != nil {
		t.Error("a failed save should not quit")
	}
	if !m.statusErr || !strings.Contains(m.status, "disk full") {
		t.Errorf("status = %q", m.status)
	}
}

func TestModel_LoadFailure(t *testing.T) {
	e := editor.New(editor.ModelProviderFunc(func(context.Context, core.HookContext) ([]core.HookModel, error) {
		return nil, errors.New("offline")
	}))
	e.Initialize(nil, testContext())
	m := New(context.Background(), e, nil)
	if m.mode != modeLoading {
		t.Fatalf("mode = %v, want loading", m.mode)
	}

	next, _ := m.Update(SchemasLoadedMsg{Err: e.LoadSchemas(context.Background())})
	m = next.(Model)
	if m.mode != modeFields {
		t.Errorf("mode = %v, want fields", m.mode)
	}
	if !m.statusErr || !strings.Contains(m.status, "offline") {
		t.Errorf("status = %q", m.status)
	}
}

func TestModel_HelpToggle(t *testing.T) {
	seed := &core.Hook{HookModelID: 1, Config: testModels()[0].DefaultConfig.Clone()}
	m, _ := loaded(t, seed, nil)

	m = send(m, "?")
	if m.mode != modeHelp {
		t.Fatalf("mode = %v, want help", m.mode)
	}
	m = send(m, "?")
	if m.mode != modeFields {
		t.Errorf("mode = %v, want fields", m.mode)
	}
}

func TestModel_WarningMessage(t *testing.T) {
	m, _ := loaded(t, nil, nil)
	next, _ := m.Update(eventMsg{inner: WarningMsg{Text: "model 9 not found"}})
	m = next.(Model)

	if len(m.warnings) != 1 {
		t.Fatalf("warnings = %v", m.warnings)
	}
	if !strings.Contains(m.View(), "model 9 not found") {
		t.Error("View() should show the warning")
	}
}

func TestEventToMsg(t *testing.T) {
	tests := []struct {
		name  string
		event events.Event
		want  tea.Msg
	}{
		{
			name:  "mismatch",
			event: events.NewSchemaMismatchEvent("PRJ", "h1", 9, "model 9 not found"),
			want:  WarningMsg{Text: "model 9 not found"},
		},
		{
			name:  "selected",
			event: events.NewSchemaSelectedEvent("PRJ", 1, "Kafka", 3),
			want:  StatusMsg{Text: "model Kafka selected (3 fields)"},
		},
		{
			name:  "integration without fields",
			event: events.NewIntegrationAppliedEvent("PRJ", "kafka-a", nil),
			want:  StatusMsg{Text: "integration kafka-a applied"},
		},
		{
			name:  "integration with fields",
			event: events.NewIntegrationAppliedEvent("PRJ", "kafka-a", []string{"topic"}),
			want:  StatusMsg{Text: "integration kafka-a applied, 1 fields filled"},
		},
		{
			name:  "loaded",
			event: events.NewSchemasLoadedEvent("PRJ", 2, nil),
			want:  StatusMsg{Text: "2 hook models available"},
		},
		{
			name:  "load failed",
			event: events.NewSchemasLoadedEvent("PRJ", 0, errors.New("offline")),
			want:  nil,
		},
		{
			name:  "json validated",
			event: events.NewJSONValidatedEvent("PRJ", "payload", true),
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := eventToMsg(tt.event); got != tt.want {
				t.Errorf("eventToMsg() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestEventBusAdapter_Delivers(t *testing.T) {
	bus := events.New(10)
	a := NewEventBusAdapter(bus)
	defer a.Close()

	bus.PublishPriority(events.NewSchemaMismatchEvent("PRJ", "h1", 9, "gone"))

	msg := waitForEventBusUpdate(a)()
	em, ok := msg.(eventMsg)
	if !ok {
		t.Fatalf("msg = %#v, want eventMsg", msg)
	}
	// Delivered on both the regular and the priority channel; either is fine.
	if w, ok := em.inner.(WarningMsg); !ok || w.Text != "gone" {
		t.Errorf("inner = %#v", em.inner)
	}
}
