package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/Veraticus/calcman/internal/model"
)

// CMS admin-ajax actions and form fields.
const (
	actionAddCalculator     = "add_calculator"
	actionUpdateSEOFormulas = "update_seo_formulas"

	fieldAction         = "action"
	fieldCalculatorData = "calculator_data"
	fieldFormulas       = "formulas"
)

// CMS posts to a WordPress-style admin-ajax endpoint.
type CMS struct {
	opts    options
	ajaxURL string
}

// NewCMS creates a client for the endpoint at ajaxURL, usually
// ".../wp-admin/admin-ajax.php".
func NewCMS(ajaxURL string, opts ...Option) (*CMS, error) {
	u, err := url.Parse(ajaxURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid ajax URL %q", ajaxURL)
	}
	return &CMS{ajaxURL: ajaxURL, opts: buildOptions(opts)}, nil
}

// AddCalculator registers def with the CMS.
func (c *CMS) AddCalculator(ctx context.Context, def model.Definition) error {
	return c.post(ctx, actionAddCalculator, fieldCalculatorData, def)
}

// UpdateSEOFormulas replaces the CMS's global formulas.
func (c *CMS) UpdateSEOFormulas(ctx context.Context, formulas model.GlobalFormulas) error {
	return c.post(ctx, actionUpdateSEOFormulas, fieldFormulas, formulas)
}

func (c *CMS) post(ctx context.Context, action, field string, payload any) error {
	op := "cms " + action

	data, err := json.Marshal(payload)
	if err != nil {
		return transportError(op, c.ajaxURL, 0, "failed to encode payload", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField(fieldAction, action); err != nil {
		return transportError(op, c.ajaxURL, 0, "failed to build form", err)
	}
	if err := mw.WriteField(field, string(data)); err != nil {
		return transportError(op, c.ajaxURL, 0, "failed to build form", err)
	}
	if err := mw.Close(); err != nil {
		return transportError(op, c.ajaxURL, 0, "failed to build form", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ajaxURL, &buf)
	if err != nil {
		return transportError(op, c.ajaxURL, 0, "failed to create request", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	c.opts.logger.Debug("CMS request", "action", action, "url", c.ajaxURL)

	resp, err := c.opts.httpClient.Do(req)
	if err != nil {
		return transportError(op, c.ajaxURL, 0, "", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return transportError(op, c.ajaxURL, resp.StatusCode, remoteMessage(resp.Body), nil)
	}

	var reply struct {
		Data    json.RawMessage `json:"data"`
		Success bool            `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return transportError(op, c.ajaxURL, resp.StatusCode, "failed to decode response", err)
	}
	if !reply.Success {
		return transportError(op, c.ajaxURL, resp.StatusCode, remoteMessage(bytes.NewReader(reply.Data)), nil)
	}
	return nil
}
