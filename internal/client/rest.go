package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Veraticus/calcman/internal/model"
)

// REST talks to the calculator REST API.
type REST struct {
	opts    options
	baseURL string
}

// NewREST creates a client for the API rooted at baseURL, for example
// "https://calc.example.com".
func NewREST(baseURL string, opts ...Option) (*REST, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q", baseURL)
	}
	return &REST{
		baseURL: strings.TrimRight(baseURL, "/"),
		opts:    buildOptions(opts),
	}, nil
}

// Create posts a new definition and returns the stored version.
func (c *REST) Create(ctx context.Context, def model.Definition) (model.Definition, error) {
	var created model.Definition
	err := c.do(ctx, "create calculator", http.MethodPost, "/api/calculators", def, &created)
	return created, err
}

// Update applies patch to the remote definition id.
func (c *REST) Update(ctx context.Context, id string, patch model.DefinitionPatch) (model.Definition, error) {
	var updated model.Definition
	err := c.do(ctx, "update calculator", http.MethodPut, "/api/calculators/"+url.PathEscape(id), patch, &updated)
	return updated, err
}

// UpdateGlobalSEO replaces the remote global formulas.
func (c *REST) UpdateGlobalSEO(ctx context.Context, formulas model.GlobalFormulas) error {
	return c.do(ctx, "update global SEO", http.MethodPut, "/api/seo/global", formulas, nil)
}

// List returns every remote definition.
func (c *REST) List(ctx context.Context) ([]model.Definition, error) {
	var defs []model.Definition
	if err := c.do(ctx, "list calculators", http.MethodGet, "/api/calculators", nil, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

func (c *REST) do(ctx context.Context, op, method, path string, in, out any) error {
	endpoint := c.baseURL + path

	var body *bytes.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return transportError(op, endpoint, 0, "failed to encode request", err)
		}
		body = bytes.NewReader(data)
	}

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, nil)
	}
	if err != nil {
		return transportError(op, endpoint, 0, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.opts.logger.Debug("REST request", "op", op, "method", method, "url", endpoint)

	resp, err := c.opts.httpClient.Do(req)
	if err != nil {
		return transportError(op, endpoint, 0, "", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return transportError(op, endpoint, resp.StatusCode, remoteMessage(resp.Body), nil)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return transportError(op, endpoint, resp.StatusCode, "failed to decode response", err)
	}
	return nil
}
