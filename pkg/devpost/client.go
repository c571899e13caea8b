package devpost

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"scoreahack/pkg/config"
	"scoreahack/pkg/errors"
	"scoreahack/pkg/logger"
	"scoreahack/pkg/models"
)

// maxBodySize bounds how much of a page or search response is read.
const maxBodySize = 10 << 20

// Client fetches project pages and search results from Devpost
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	search     config.SearchConfig
	text       *TextConverter
	logger     logger.Logger
}

// NewClient creates a Devpost client from configuration
func NewClient(cfg config.DevpostConfig, search config.SearchConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultConfig().Devpost.UserAgent
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		headers: map[string]string{
			"User-Agent":      userAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
			"Cache-Control":   "no-cache",
		},
		baseURL: baseURL,
		search:  search,
		text:    NewTextConverter(),
		logger:  log.WithField("component", "devpost"),
	}
}

// BaseURL returns the root all requests are made against
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetHTTPClient replaces the underlying transport, mainly for tests
func (c *Client) SetHTTPClient(h *http.Client) {
	c.httpClient = h
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, value)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.Wrap(errors.ErrorTypeNetwork, err, fmt.Sprintf("network error: %v", err))
	}

	logger.LogRequest(c.logger, req.Method, req.URL.String(), resp.StatusCode, duration)
	return resp, nil
}

// get performs a GET and returns the body of a 2xx response
func (c *Client) get(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeUnknown, err, fmt.Sprintf("failed to create request: %v", err))
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResponseStatus(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
			Err:     err,
		}
	}
	return body, nil
}

// GetJSON performs a GET request and decodes the JSON response
func (c *Client) GetJSON(ctx context.Context, url string, target interface{}) error {
	body, err := c.get(ctx, url, "application/json")
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return errors.Wrap(errors.ErrorTypeParsing, err, fmt.Sprintf("failed to parse JSON: %v", err))
	}
	return nil
}

// checkResponseStatus maps non-2xx responses to typed errors
func checkResponseStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return errors.FromStatus(resp.StatusCode, fmt.Sprintf("%s %s", resp.Request.URL.Path, http.StatusText(resp.StatusCode)))
}

// FetchProject downloads and parses a project page
func (c *Client) FetchProject(ctx context.Context, id string) (*models.Project, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &errors.Error{Type: errors.ErrorTypeValidation, Message: "project id is required"}
	}

	pageURL := ProjectURL(c.baseURL, id)
	body, err := c.get(ctx, pageURL, "")
	if err != nil {
		return nil, err
	}

	project, err := ParseProject(id, body, c.text, c.baseURL, c.logger.WithField("project_id", id))
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeParsing, err, "failed to parse project page")
	}
	return project, nil
}

// GetProject is the soft variant of FetchProject: any failure is logged and
// reported as nil.
func (c *Client) GetProject(ctx context.Context, id string) *models.Project {
	project, err := c.FetchProject(ctx, id)
	if err != nil {
		c.logger.WithError(err).WarnWithFields("failed to fetch project", map[string]interface{}{
			"project_id": id,
		})
		return nil
	}
	return project
}
