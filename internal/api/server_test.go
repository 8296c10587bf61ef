package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/catalog"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/core"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/editor"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/events"
)

type mockSource struct {
	models       []core.HookModel
	integrations []core.Integration
	modelsErr    error
	lastContext  core.HookContext
}

func (m *mockSource) FetchModels(_ context.Context, hc core.HookContext) ([]core.HookModel, error) {
	m.lastContext = hc
	if m.modelsErr != nil {
		return nil, m.modelsErr
	}
	return catalog.Offered(m.models, hc), nil
}

func (m *mockSource) Integrations(_ context.Context, _ string) ([]core.Integration, error) {
	out := make([]core.Integration, len(m.integrations))
	for i, in := range m.integrations {
		out[i] = in.Clone()
	}
	return out, nil
}

func newMockSource() *mockSource {
	return &mockSource{
		models: []core.HookModel{
			{
				ID:   1,
				Name: "Scheduler",
				DefaultConfig: core.HookConfig{
					"cron":    core.NewTextField(core.FieldTypeString, "0 * * * *"),
					"payload": core.NewTextField(core.FieldTypeJSON, "{}"),
				},
			},
			{
				ID:                 2,
				Name:               "RepositoryWebHook",
				RequiresRepository: true,
				DefaultConfig: core.HookConfig{
					"branches": core.NewMultiChoiceField("", []string{"main", "dev"}),
				},
			},
		},
		integrations: []core.Integration{
			{Name: "my-kafka", Model: core.IntegrationModel{Name: "Kafka", Hook: true}},
			{Name: "my-openstack", Model: core.IntegrationModel{Name: "Openstack"}},
		},
	}
}

func newTestServer(src catalog.Source, opts ...ServerOption) *Server {
	return NewServer(src, DefaultConfig(), opts...)
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(newMockSource())
	rec := doRequest(t, srv.Handler(), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestListModels(t *testing.T) {
	src := newMockSource()
	srv := newTestServer(src)

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/v1/projects/PRJ/workflows/build/nodes/7/hook/models", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var models []core.HookModel
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&models))
	require.Len(t, models, 1)
	assert.Equal(t, "Scheduler", models[0].Name)
	assert.Equal(t, core.FieldTypeJSON, models[0].DefaultConfig["payload"].Type())

	assert.Equal(t, "PRJ", src.lastContext.ProjectKey)
	assert.Equal(t, "build", src.lastContext.WorkflowName)
	assert.Equal(t, int64(7), src.lastContext.NodeID)

	rec = doRequest(t, srv.Handler(), http.MethodGet, "/api/v1/projects/PRJ/workflows/build/nodes/7/hook/models?repository=org/app", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&models))
	assert.Len(t, models, 2)
}

func TestListModels_Errors(t *testing.T) {
	src := newMockSource()
	srv := newTestServer(src)

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/v1/projects/PRJ/workflows/build/nodes/abc/hook/models", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	src.modelsErr = errors.New("database is locked")
	rec = doRequest(t, srv.Handler(), http.MethodGet, "/api/v1/projects/PRJ/workflows/build/nodes/1/hook/models", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "MODEL_FETCH_FAILED")

	src.models = nil
	src.modelsErr = nil
	rec = doRequest(t, srv.Handler(), http.MethodGet, "/api/v1/projects/PRJ/workflows/build/nodes/1/hook/models", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestListIntegrations(t *testing.T) {
	srv := newTestServer(newMockSource())

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/v1/projects/PRJ/integrations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []core.Integration
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&all))
	assert.Len(t, all, 2)

	rec = doRequest(t, srv.Handler(), http.MethodGet, "/api/v1/projects/PRJ/integrations?hook=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var hookOnly []core.Integration
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&hookOnly))
	require.Len(t, hookOnly, 1)
	assert.Equal(t, "my-kafka", hookOnly[0].Name)
}

func TestValidateHook(t *testing.T) {
	srv := newTestServer(newMockSource())

	req := ValidateRequest{
		Context: core.HookContext{ProjectKey: "PRJ", WorkflowName: "build", NodeID: 3},
		Hook: core.Hook{
			HookModelID: 1,
			Config: core.HookConfig{
				"cron":    core.NewTextField(core.FieldTypeString, "@daily"),
				"payload": core.NewTextField(core.FieldTypeJSON, `{a:1}`),
			},
		},
	}
	rec := doRequest(t, srv.Handler(), http.MethodPost, "/api/v1/hooks/validate", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ValidateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Valid)
	assert.Equal(t, []string{"payload"}, resp.InvalidFields)
	assert.Equal(t, "Scheduler", resp.Model)
	assert.Empty(t, resp.Warnings)
	assert.NotEmpty(t, resp.Hook.UUID)
	assert.Equal(t, int64(3), resp.Hook.NodeID)
	assert.Equal(t, "@daily", resp.Hook.Config["cron"].Value())
}

func TestValidateHook_ReconcilesAndWarns(t *testing.T) {
	srv := newTestServer(newMockSource())

	req := ValidateRequest{
		Context: core.HookContext{ProjectKey: "PRJ", Repository: "org/app"},
		Hook: core.Hook{
			UUID:        "existing",
			HookModelID: 2,
			Config: core.HookConfig{
				"branches": core.NewMultiChoiceField("dev", nil),
			},
		},
	}
	rec := doRequest(t, srv.Handler(), http.MethodPost, "/api/v1/hooks/validate", req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ValidateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Valid)
	assert.Equal(t, "existing", resp.Hook.UUID)
	branches, ok := resp.Hook.Config["branches"].(*core.MultiChoiceField)
	require.True(t, ok)
	assert.Equal(t, []string{"main", "dev"}, branches.Options())
	assert.True(t, branches.Selected("dev"))

	// no repository: the model is not offered
	req.Context.Repository = ""
	rec = doRequest(t, srv.Handler(), http.MethodPost, "/api/v1/hooks/validate", req)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = ValidateResponse{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, editor.WarnSchemaMismatch, resp.Warnings[0].Code)
	assert.Empty(t, resp.Model)
}

func TestValidateHook_BadRequests(t *testing.T) {
	src := newMockSource()
	srv := newTestServer(src)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/hooks/validate", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, srv.Handler(), http.MethodPost, "/api/v1/hooks/validate", ValidateRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := `{"context":{"project_key":"PRJ"},"hook":{"config":{"x":{"type":"number","value":"1"}}}}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/hooks/validate", strings.NewReader(body))
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	src.modelsErr = errors.New("unreachable")
	rec = doRequest(t, srv.Handler(), http.MethodPost, "/api/v1/hooks/validate",
		ValidateRequest{Context: core.HookContext{ProjectKey: "PRJ"}})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), core.CodeModelFetchFailed)
}

func TestCORS(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableCORS = true
	cfg.CORSOrigins = []string{"http://localhost:5173"}
	srv := NewServer(newMockSource(), cfg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	plain := newTestServer(newMockSource())
	rec = httptest.NewRecorder()
	plain.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSSE_StreamsEditorEvents(t *testing.T) {
	bus := events.New(10)
	defer bus.Close()
	srv := newTestServer(newMockSource(), WithEventBus(bus))

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/events?project=PRJ", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "event: connected\n", line)

	bus.Publish(events.NewJSONValidatedEvent("OTHER", "payload", true))
	bus.Publish(events.NewJSONValidatedEvent("PRJ", "payload", true))

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: ") && line != "event: connected\n" {
			break
		}
	}
	assert.Equal(t, "event: "+events.TypeJSONValidated+"\n", line)
	data, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, data, `"project_key":"PRJ"`)
}

func TestSSE_DisabledWithoutBus(t *testing.T) {
	srv := newTestServer(newMockSource())
	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/v1/events", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListenAndServe_Shutdown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	cfg.ShutdownTimeout = time.Second
	srv := NewServer(newMockSource(), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
