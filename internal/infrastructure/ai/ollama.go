// Package ai talks to an Ollama-compatible inference server.
//
// The generate endpoint is called in one of two modes:
//   - blocking: "stream": false, the body is a single JSON object
//   - streaming: "stream": true, the body is newline-delimited JSON where each
//     line may carry a "response" token fragment and a "done" marker
//
// Streaming is exposed as a pull sequence (TokenStream.Tokens) so callers
// decide how tokens reach the user; Infer adapts that sequence to a callback.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/doeshing/gitscribe-go/internal/domain"
	"github.com/doeshing/gitscribe-go/internal/ports"
)

// maxErrorBody caps how much of a failed response is buffered for diagnostics.
const maxErrorBody = 64 << 10

// OllamaClient implements ports.InferenceClient and ports.ModelLister.
type OllamaClient struct {
	httpClient *http.Client
	logger     ports.Logger
}

// NewOllamaClient builds a client with the inference timeout applied.
func NewOllamaClient(logger ports.Logger) *OllamaClient {
	return NewOllamaClientWithHTTP(&http.Client{Timeout: domain.InferenceTimeout}, logger)
}

// NewOllamaClientWithHTTP lets callers supply the transport.
func NewOllamaClientWithHTTP(client *http.Client, logger ports.Logger) *OllamaClient {
	return &OllamaClient{httpClient: client, logger: logger}
}

// Infer runs req in blocking mode when onToken is nil and in streaming mode
// otherwise. In streaming mode onToken is called synchronously, in arrival
// order, once per non-empty token; on a mid-stream failure the text received
// so far is returned together with the error.
func (c *OllamaClient) Infer(ctx context.Context, req domain.InferenceRequest, onToken func(string)) (string, error) {
	if onToken == nil {
		req.Stream = false
		return c.Generate(ctx, req)
	}

	req.Stream = true
	stream, err := c.Stream(ctx, req)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	for token := range stream.Tokens() {
		onToken(token)
	}
	return stream.Text(), stream.Err()
}

// Generate performs a blocking call and returns the "response" field.
func (c *OllamaClient) Generate(ctx context.Context, req domain.InferenceRequest) (string, error) {
	req.Stream = false
	resp, err := c.post(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.InferenceTransportError{Endpoint: req.Endpoint, Err: err}
	}

	var decoded struct {
		Response *string `json:"response"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", &domain.InferenceProtocolError{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body)),
			Reason:     fmt.Sprintf("decode response: %v", err),
		}
	}
	if decoded.Response == nil {
		return "", &domain.InferenceProtocolError{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body)),
			Reason:     "response missing 'response' field",
		}
	}
	return *decoded.Response, nil
}

// Stream sends req with streaming enabled and returns once the status line
// has been checked. The caller must Close the stream.
func (c *OllamaClient) Stream(ctx context.Context, req domain.InferenceRequest) (*TokenStream, error) {
	req.Stream = true
	resp, err := c.post(ctx, req)
	if err != nil {
		return nil, err
	}
	return newTokenStream(resp.Body, req.Endpoint, c.logger), nil
}

// post sends the request and maps transport failures and non-2xx statuses to
// typed errors. On success the caller owns resp.Body.
func (c *OllamaClient) post(ctx context.Context, req domain.InferenceRequest) (*http.Response, error) {
	payload := map[string]interface{}{
		"model":  req.Model,
		"stream": req.Stream,
		"prompt": req.Prompt,
	}
	if req.System != "" {
		payload["system"] = req.System
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal inference payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &domain.InferenceTransportError{Endpoint: req.Endpoint, Err: err}
	}
	httpReq.Header.Set("content-type", "application/json")

	c.logger.Info("calling inference server", map[string]interface{}{
		"endpoint": req.Endpoint,
		"model":    req.Model,
		"stream":   req.Stream,
	})

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &domain.InferenceTransportError{Endpoint: req.Endpoint, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.InferenceProtocolError{StatusCode: resp.StatusCode, Body: string(errBody)}
	}
	return resp, nil
}

// Models lists installed models via GET <baseURL>/api/tags.
func (c *OllamaClient) Models(ctx context.Context, baseURL string) ([]domain.ModelInfo, error) {
	apiURL := strings.TrimSuffix(baseURL, "/") + "/api/tags"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.InferenceTransportError{Endpoint: apiURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.InferenceProtocolError{StatusCode: resp.StatusCode, Body: string(errBody)}
	}

	var decoded struct {
		Models []struct {
			Name string `json:"name"`
			Size int64  `json:"size"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &domain.InferenceProtocolError{StatusCode: resp.StatusCode, Reason: fmt.Sprintf("decode model list: %v", err)}
	}

	models := make([]domain.ModelInfo, 0, len(decoded.Models))
	for _, m := range decoded.Models {
		models = append(models, domain.ModelInfo{Name: m.Name, Size: m.Size})
	}
	return models, nil
}

func truncate(s string) string {
	if len(s) > maxErrorBody {
		return s[:maxErrorBody]
	}
	return s
}

var (
	_ ports.InferenceClient = (*OllamaClient)(nil)
	_ ports.ModelLister     = (*OllamaClient)(nil)
)
