package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/gitscribe-go/internal/domain"
	"github.com/doeshing/gitscribe-go/internal/pkg/logger"
)

func newTestOllama(srv *httptest.Server) *OllamaClient {
	return NewOllamaClientWithHTTP(srv.Client(), logger.NewNop())
}

func decodePayload(t *testing.T, r *http.Request) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
	return payload
}

func TestInferBlockingReturnsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		payload := decodePayload(t, r)
		assert.Equal(t, "llama3", payload["model"])
		assert.Equal(t, false, payload["stream"])
		assert.Equal(t, "context doc", payload["prompt"])
		assert.Equal(t, "be brief", payload["system"])
		fmt.Fprint(w, `{"response":"ok","done":true}`)
	}))
	defer srv.Close()

	got, err := newTestOllama(srv).Infer(context.Background(), domain.InferenceRequest{
		Model:    "llama3",
		Endpoint: srv.URL,
		Prompt:   "context doc",
		System:   "be brief",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestInferOmitsEmptySystemPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := decodePayload(t, r)
		_, present := payload["system"]
		assert.False(t, present)
		fmt.Fprint(w, `{"response":""}`)
	}))
	defer srv.Close()

	got, err := newTestOllama(srv).Infer(context.Background(), domain.InferenceRequest{Model: "m", Endpoint: srv.URL, Prompt: "p"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestInferBlockingServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestOllama(srv).Infer(context.Background(), domain.InferenceRequest{Model: "m", Endpoint: srv.URL}, nil)
	var protoErr *domain.InferenceProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, http.StatusInternalServerError, protoErr.StatusCode)
	assert.Contains(t, protoErr.Body, "model exploded")
}

func TestInferBlockingMissingResponseField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"done":true}`)
	}))
	defer srv.Close()

	_, err := newTestOllama(srv).Infer(context.Background(), domain.InferenceRequest{Model: "m", Endpoint: srv.URL}, nil)
	var protoErr *domain.InferenceProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Contains(t, protoErr.Reason, "missing")
}

func TestInferTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client := newTestOllama(srv)
	srv.Close()

	_, err := client.Infer(context.Background(), domain.InferenceRequest{Model: "m", Endpoint: srv.URL}, nil)
	var transportErr *domain.InferenceTransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestInferTimeoutIsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, `{"response":"late"}`)
	}))
	defer srv.Close()

	httpClient := srv.Client()
	httpClient.Timeout = 20 * time.Millisecond
	client := NewOllamaClientWithHTTP(httpClient, logger.NewNop())

	_, err := client.Infer(context.Background(), domain.InferenceRequest{Model: "m", Endpoint: srv.URL}, nil)
	var transportErr *domain.InferenceTransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestInferStreamingDeliversTokensInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := decodePayload(t, r)
		assert.Equal(t, true, payload["stream"])
		w.Header().Set("Content-Type", "application/x-ndjson")
		flusher := w.(http.Flusher)
		for _, part := range []string{
			`{"response":"Rel`,
			`ease","done":false}` + "\n" + `{"response":" notes"`,
			`,"done":false}` + "\n" + `{"response":"!","done":true}` + "\n",
		} {
			fmt.Fprint(w, part)
			flusher.Flush()
			time.Sleep(5 * time.Millisecond)
		}
	}))
	defer srv.Close()

	var tokens []string
	got, err := newTestOllama(srv).Infer(context.Background(), domain.InferenceRequest{Model: "m", Endpoint: srv.URL, Prompt: "p"}, func(tok string) {
		tokens = append(tokens, tok)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Release", " notes", "!"}, tokens)
	assert.Equal(t, "Release notes!", got)
}

func TestStreamRejectsNon2xxBeforeDraining(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"model 'nope' not found"}`)
	}))
	defer srv.Close()

	called := false
	_, err := newTestOllama(srv).Infer(context.Background(), domain.InferenceRequest{Model: "nope", Endpoint: srv.URL}, func(string) { called = true })
	var protoErr *domain.InferenceProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, http.StatusNotFound, protoErr.StatusCode)
	assert.Contains(t, protoErr.Body, "not found")
	assert.False(t, called)
}

func TestModelsListsInstalledModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		fmt.Fprint(w, `{"models":[{"name":"llama3:8b","size":4661224676},{"name":"mistral:latest","size":4109865159}]}`)
	}))
	defer srv.Close()

	models, err := newTestOllama(srv).Models(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "llama3:8b", models[0].Name)
	assert.Equal(t, int64(4109865159), models[1].Size)
}

func TestModelsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestOllama(srv).Models(context.Background(), srv.URL)
	var protoErr *domain.InferenceProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, http.StatusBadGateway, protoErr.StatusCode)
}
