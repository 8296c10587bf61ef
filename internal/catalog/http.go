package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/core"
)

// DefaultHTTPTimeout bounds a single catalog request.
const DefaultHTTPTimeout = 10 * time.Second

// HTTPProvider reads the catalog from a hookcfg API server.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// HTTPOption configures an HTTPProvider.
type HTTPOption func(*HTTPProvider)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(p *HTTPProvider) {
		p.client = c
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(p *HTTPProvider) {
		if d > 0 {
			p.client.Timeout = d
		}
	}
}

// NewHTTPProvider creates a provider for the server at baseURL.
func NewHTTPProvider(baseURL string, opts ...HTTPOption) *HTTPProvider {
	p := &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ModelsPath returns the API path listing the models of a node.
func ModelsPath(projectKey, workflow string, nodeID int64) string {
	return fmt.Sprintf("/api/v1/projects/%s/workflows/%s/nodes/%d/hook/models",
		url.PathEscape(projectKey), url.PathEscape(workflow), nodeID)
}

// IntegrationsPath returns the API path listing the hook integrations of a
// project.
func IntegrationsPath(projectKey string) string {
	return fmt.Sprintf("/api/v1/projects/%s/integrations", url.PathEscape(projectKey))
}

// FetchModels requests the models offered for hc.
func (p *HTTPProvider) FetchModels(ctx context.Context, hc core.HookContext) ([]core.HookModel, error) {
	q := url.Values{}
	if hc.Repository != "" {
		q.Set("repository", hc.Repository)
	}
	var models []core.HookModel
	if err := p.get(ctx, ModelsPath(hc.ProjectKey, hc.WorkflowName, hc.NodeID), q, &models); err != nil {
		return nil, err
	}
	return models, nil
}

// Integrations requests the hook-capable integrations of projectKey.
func (p *HTTPProvider) Integrations(ctx context.Context, projectKey string) ([]core.Integration, error) {
	q := url.Values{"hook": []string{strconv.FormatBool(true)}}
	var integrations []core.Integration
	if err := p.get(ctx, IntegrationsPath(projectKey), q, &integrations); err != nil {
		return nil, err
	}
	return integrations, nil
}

func (p *HTTPProvider) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	u := p.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apiError(resp.StatusCode, path, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// apiError maps an error response of the hookcfg API back to a domain error.
func apiError(status int, path string, body []byte) error {
	var payload struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}

	switch status {
	case http.StatusNotFound:
		return core.ErrNotFound("catalog resource", path).WithDetail("message", msg)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		code := payload.Code
		if code == "" {
			code = "BAD_REQUEST"
		}
		return core.ErrValidation(code, msg)
	default:
		return core.ErrNetwork("HTTP_STATUS", fmt.Sprintf("%s returned %d: %s", path, status, msg))
	}
}
