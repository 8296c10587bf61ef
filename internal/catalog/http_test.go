package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/core"
)

func TestHTTPProvider_FetchModels(t *testing.T) {
	c, _ := Parse([]byte(sampleCatalog))

	var gotPath, gotRepo string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotRepo = r.URL.Query().Get("repository")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(c.Models[:2])
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL + "/")
	models, err := p.FetchModels(context.Background(), core.HookContext{
		ProjectKey:   "PRJ",
		WorkflowName: "build all",
		NodeID:       4,
		Repository:   "org/app",
	})
	if err != nil {
		t.Fatalf("FetchModels() error = %v", err)
	}

	if gotPath != "/api/v1/projects/PRJ/workflows/build%20all/nodes/4/hook/models" {
		t.Errorf("path = %s", gotPath)
	}
	if gotRepo != "org/app" {
		t.Errorf("repository query = %q", gotRepo)
	}
	if len(models) != 2 {
		t.Fatalf("models = %d", len(models))
	}
	if _, ok := models[0].DefaultConfig["branches"].(*core.MultiChoiceField); !ok {
		t.Errorf("branches type = %T", models[0].DefaultConfig["branches"])
	}
}

func TestHTTPProvider_Integrations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/projects/PRJ/integrations" || r.URL.Query().Get("hook") != "true" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`[{"name":"my-kafka","model":{"name":"Kafka","hook":true},"config":{"topic":{"type":"string","value":"events"}}}]`))
	}))
	defer srv.Close()

	got, err := NewHTTPProvider(srv.URL).Integrations(context.Background(), "PRJ")
	if err != nil {
		t.Fatalf("Integrations() error = %v", err)
	}
	if len(got) != 1 || got[0].Config["topic"].Value() != "events" {
		t.Errorf("integrations = %+v", got)
	}
}

func TestHTTPProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   core.ErrorCategory
	}{
		{"not found", http.StatusNotFound, `{"error":"unknown node"}`, core.ErrCatNotFound},
		{"bad request", http.StatusBadRequest, `{"error":"bad node id","code":"INVALID_NODE"}`, core.ErrCatValidation},
		{"server error", http.StatusInternalServerError, `boom`, core.ErrCatNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPProvider(srv.URL).FetchModels(context.Background(), core.HookContext{ProjectKey: "PRJ"})
			if !core.IsCategory(err, tt.want) {
				t.Errorf("error = %v, want category %s", err, tt.want)
			}
		})
	}
}

func TestHTTPProvider_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	p := NewHTTPProvider(srv.URL, WithTimeout(50*time.Millisecond))
	if _, err := p.FetchModels(context.Background(), core.HookContext{}); err == nil {
		t.Error("expected timeout error")
	}
}
