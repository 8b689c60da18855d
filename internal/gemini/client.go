// Package gemini implements a minimal Google Gemini API client for
// non-streaming content generation.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/revmux/revmux/internal/config"
	"github.com/revmux/revmux/internal/loggy"
)

// Client represents a Google Gemini API client
type Client struct {
	apiKey         string
	baseURL        string
	apiVersion     string
	defaultModel   string
	httpClient     *http.Client
	maxRetries     int
	retryBaseDelay time.Duration
	maxTokens      int
}

// NewClient creates a new Gemini client from config
func NewClient(cfg config.GeminiConfig) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")

	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = "v1beta"
	}

	defaultModel := cfg.Model
	if defaultModel == "" {
		defaultModel = "gemini-2.5-pro"
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}

	return &Client{
		apiKey:         cfg.APIKey,
		baseURL:        baseURL,
		apiVersion:     apiVersion,
		defaultModel:   defaultModel,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
		maxTokens:      maxTokens,
	}
}

// GenerateContent sends a content generation request to Gemini
func (c *Client) GenerateContent(ctx context.Context, model string, req GenerateRequest) (*GenerateResponse, error) {
	if model == "" {
		model = c.defaultModel
	}

	if req.GenerationConfig == nil {
		req.GenerationConfig = &GenerationConfig{MaxOutputTokens: c.maxTokens}
	} else if req.GenerationConfig.MaxOutputTokens <= 0 {
		req.GenerationConfig.MaxOutputTokens = c.maxTokens
	}

	path := fmt.Sprintf("/%s/models/%s:generateContent", c.apiVersion, model)

	var resp GenerateResponse
	if err := c.makeRequest(ctx, path, req, &resp); err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	return &resp, nil
}

// makeRequest makes an HTTP request with exponential backoff retries
func (c *Client) makeRequest(ctx context.Context, path string, body interface{}, response interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request body: %w", err)
	}

	url := fmt.Sprintf("%s%s?key=%s", c.baseURL, path, c.apiKey)

	var lastErr error
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("sending request: %w", err)
			return backoff.Permanent(lastErr)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			lastErr = fmt.Errorf("reading response body: %w", err)
			return lastErr
		}

		loggy.Debug("Gemini API response",
			"status", resp.Status,
			"content_length", len(respBody))

		if resp.StatusCode != http.StatusOK {
			lastErr = c.handleErrorResponse(resp, respBody)
			// Only rate limiting is worth retrying; everything else is terminal
			if resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(lastErr)
			}
			return lastErr
		}

		if err := json.Unmarshal(respBody, response); err != nil {
			lastErr = fmt.Errorf("decoding response: %w", err)
			return backoff.Permanent(lastErr)
		}

		return nil
	}

	bo := backoff.NewExponentialBackOff()
	if c.retryBaseDelay > 0 {
		bo.InitialInterval = c.retryBaseDelay
	}

	err = backoff.Retry(operation,
		backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxRetries)), ctx))
	if err != nil {
		if lastErr != nil {
			return lastErr
		}
		return err
	}

	return nil
}

// handleErrorResponse processes error responses from the API
func (c *Client) handleErrorResponse(resp *http.Response, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.ErrorDetail == nil {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	apiErr.StatusCode = resp.StatusCode
	return &apiErr
}
