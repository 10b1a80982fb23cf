// ABOUTME: HTTP client for the pypiserver capacity planner API
// ABOUTME: Wraps API calls with proper error handling for CLI usage

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/markalston/pypiserver-capacity/backend/models"
)

// Client is the API client for the capacity planner backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client with the given base URL
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx answer from the backend. Kind and Field are set
// for planner configuration errors.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
	Kind       string
	Field      string
}

func (e *APIError) Error() string {
	msg := "backend error: " + e.Message
	if e.Field != "" {
		msg += fmt.Sprintf(" (%s %s)", e.Kind, e.Field)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

// IsConfigError reports whether the backend rejected the planner input
func (e *APIError) IsConfigError() bool {
	return e.StatusCode == http.StatusUnprocessableEntity
}

// AsAPIError unwraps err into an *APIError if it carries one
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Health calls GET /api/v1/health
func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	var health models.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Plan calls POST /api/v1/plan
func (c *Client) Plan(ctx context.Context, input *models.PlanRequest) (*models.PlanResponse, error) {
	var plan models.PlanResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/plan", input, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Compare calls POST /api/v1/compare
func (c *Client) Compare(ctx context.Context, input *models.CompareRequest) (*models.CompareResult, error) {
	var result models.CompareResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/compare", input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// InstanceTypes calls GET /api/v1/instance-types
func (c *Client) InstanceTypes(ctx context.Context) (*models.InstanceTypeList, error) {
	var list models.InstanceTypeList
	if err := c.do(ctx, http.MethodGet, "/api/v1/instance-types", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// InstanceType calls GET /api/v1/instance-types/{name}
func (c *Client) InstanceType(ctx context.Context, name string) (*models.InstanceType, error) {
	var it models.InstanceType
	if err := c.do(ctx, http.MethodGet, "/api/v1/instance-types/"+url.PathEscape(name), nil, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

func (c *Client) do(ctx context.Context, method, path string, input, out any) error {
	var body io.Reader
	if input != nil {
		data, err := json.Marshal(input)
		if err != nil {
			return fmt.Errorf("failed to marshal input: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if input != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.handleErrorResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if ctx.Err() == context.Canceled {
		return fmt.Errorf("request canceled")
	}
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("request timed out")
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	var errResp models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Error == "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("status %d", resp.StatusCode),
		}
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    errResp.Error,
		Details:    errResp.Details,
		Kind:       errResp.Kind,
		Field:      errResp.Field,
	}
}
