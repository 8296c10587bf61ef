package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/catalog"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/core"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/editor"
)

// ValidateRequest is the body of POST /api/v1/hooks/validate.
type ValidateRequest struct {
	Context core.HookContext `json:"context"`
	Hook    core.Hook        `json:"hook"`
}

// ValidateResponse reports the outcome of a hook validation.
type ValidateResponse struct {
	Hook          core.Hook        `json:"hook"`
	Model         string           `json:"model,omitempty"`
	Valid         bool             `json:"valid"`
	InvalidFields []string         `json:"invalid_fields,omitempty"`
	Warnings      []editor.Warning `json:"warnings,omitempty"`
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	nodeID, err := strconv.ParseInt(chi.URLParam(r, "nodeID"), 10, 64)
	if err != nil || nodeID < 0 {
		respondError(w, http.StatusBadRequest, "invalid node id")
		return
	}

	hc := core.HookContext{
		ProjectKey:   chi.URLParam(r, "projectKey"),
		WorkflowName: chi.URLParam(r, "workflow"),
		NodeID:       nodeID,
		Repository:   r.URL.Query().Get("repository"),
	}

	models, err := s.source.FetchModels(r.Context(), hc)
	if err != nil {
		s.respondDomainError(w, asNetworkError("MODEL_FETCH_FAILED", err))
		return
	}
	if models == nil {
		models = []core.HookModel{}
	}
	respondJSON(w, http.StatusOK, models)
}

func (s *Server) handleListIntegrations(w http.ResponseWriter, r *http.Request) {
	projectKey := chi.URLParam(r, "projectKey")

	integrations, err := s.source.Integrations(r.Context(), projectKey)
	if err != nil {
		s.respondDomainError(w, asNetworkError("INTEGRATIONS_FETCH_FAILED", err))
		return
	}
	if hookOnly, _ := strconv.ParseBool(r.URL.Query().Get("hook")); hookOnly {
		integrations = core.HookIntegrations(integrations)
	}
	if integrations == nil {
		integrations = []core.Integration{}
	}
	respondJSON(w, http.StatusOK, integrations)
}

// handleValidateHook runs an editor session over the submitted hook: the
// model is attached, multi-choice fields reconciled and json fields checked.
func (s *Server) handleValidateHook(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Context.ProjectKey == "" {
		respondError(w, http.StatusBadRequest, "context.project_key is required")
		return
	}

	ctx := r.Context()
	hc := req.Context
	if len(hc.Integrations) == 0 {
		var err error
		hc, err = catalog.Context(ctx, s.source, hc)
		if err != nil {
			s.respondDomainError(w, asNetworkError("INTEGRATIONS_FETCH_FAILED", err))
			return
		}
	}

	opts := []editor.Option{editor.WithLogger(s.logger)}
	if s.eventBus != nil {
		opts = append(opts, editor.WithEventBus(s.eventBus))
	}
	e := editor.New(s.source, opts...)
	defer e.Close()

	e.Initialize(&req.Hook, hc)
	if err := e.LoadSchemas(ctx); err != nil {
		s.respondDomainError(w, err)
		return
	}

	resp := ValidateResponse{Valid: true}
	cfg := e.Config()
	for _, name := range cfg.Keys() {
		if cfg[name].Type() != core.FieldTypeJSON {
			continue
		}
		res, err := e.ValidateField(name)
		if err != nil {
			s.respondDomainError(w, err)
			return
		}
		if res.Invalid {
			resp.Valid = false
			resp.InvalidFields = append(resp.InvalidFields, name)
		}
	}

	state := e.State()
	if state.ActiveModel != nil {
		resp.Model = state.ActiveModel.Name
	}
	resp.Warnings = state.Warnings
	resp.Hook = e.Hook()

	respondJSON(w, http.StatusOK, resp)
}

func asNetworkError(code string, err error) error {
	var domErr *core.DomainError
	if errors.As(err, &domErr) {
		return err
	}
	return core.ErrNetwork(code, "catalog source unavailable").WithCause(err)
}
