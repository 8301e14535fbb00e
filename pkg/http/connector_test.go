package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type echoPayload struct {
	Value string `json:"value"`
}

func TestConnector_DoRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/echo", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "yes", r.Header.Get("X-Per-Request"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		var in echoPayload
		assert.NoError(t, json.Unmarshal(body, &in))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(echoPayload{Value: in.Value + "!"})
	}))
	defer server.Close()

	conn := NewConnector(
		&ConnectorConfig{BaseURL: server.URL, Logger: zap.NewNop()},
		WithRequestLogging(),
		WithHeader("X-Api-Key", "secret"),
	)

	var out echoPayload
	err := conn.DoRequest(context.Background(), http.MethodPost, "/v1/echo",
		echoPayload{Value: "hi"}, &out, WithRequestHeader("X-Per-Request", "yes"))

	require.NoError(t, err)
	assert.Equal(t, "hi!", out.Value)
}

func TestConnector_DoRequest_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"slow down"}`))
	}))
	defer server.Close()

	conn := NewConnector(&ConnectorConfig{BaseURL: server.URL, Logger: zap.NewNop()})

	err := conn.DoRequest(context.Background(), http.MethodGet, "/", nil, nil)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
	assert.JSONEq(t, `{"error":"slow down"}`, string(httpErr.Body))
}

func TestConnector_DoRequest_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	conn := NewConnector(&ConnectorConfig{BaseURL: url, Logger: zap.NewNop()})

	err := conn.DoRequest(context.Background(), http.MethodGet, "/", nil, nil)

	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestHeaderTransport_SkipsEmptyValues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header["Authorization"]
		assert.False(t, present)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	conn := NewConnector(&ConnectorConfig{BaseURL: server.URL, Logger: zap.NewNop()}, WithAuthToken(""))

	require.NoError(t, conn.DoRequest(context.Background(), http.MethodGet, "/", nil, nil))
}

func TestConnector_Download(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("0123456789"))
	}))
	defer server.Close()

	conn := NewConnector(&ConnectorConfig{Logger: zap.NewNop()})

	data, contentType, err := conn.Download(context.Background(), server.URL, 100)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(data))
	assert.Equal(t, "image/jpeg", contentType)

	data, _, err = conn.Download(context.Background(), server.URL, 4)
	require.NoError(t, err)
	assert.Len(t, data, 5)
}

func TestConnector_Download_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	conn := NewConnector(&ConnectorConfig{Logger: zap.NewNop()})

	_, _, err := conn.Download(context.Background(), server.URL, 100)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}
