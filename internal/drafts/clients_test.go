package drafts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowClient(t *testing.T) {
	var got flowRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"projectDescription":"A bright, open family home."}`))
	}))
	defer srv.Close()

	c := NewFlowClient(srv.URL, 5*time.Second)
	text, err := c.Generate(context.Background(), Input{Image: []byte("hi"), MIMEType: "image/jpeg", Notes: "three bedrooms, timber"})
	require.NoError(t, err)
	assert.Equal(t, "A bright, open family home.", text)
	assert.Equal(t, "data:image/jpeg;base64,aGk=", got.ImageDataURI)
	assert.Equal(t, "three bedrooms, timber", got.ConstructionData)
}

func TestFlowClient_ErrorVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewFlowClient(srv.URL, time.Second).Generate(context.Background(), Input{Image: []byte("x"), MIMEType: "image/png", Notes: "n"})
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusServiceUnavailable, ue.Status)
	assert.Equal(t, "model overloaded", err.Error())
}

func TestGeminiClient(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"A warehouse "},{"text":"built to last."}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	c, err := NewGeminiClient(context.Background(), "gemini-2.0-flash", "test-key", 5*time.Second)
	require.NoError(t, err)
	c.Endpoint = srv.URL

	text, err := c.Generate(context.Background(), Input{Image: []byte("hi"), MIMEType: "image/webp", Notes: "clear span steel"})
	require.NoError(t, err)
	assert.Equal(t, "A warehouse built to last.", text)

	require.Len(t, got.Contents, 1)
	parts := got.Contents[0].Parts
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0].Text, "Construction Data: clear span steel")
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/webp", parts[1].InlineData.MimeType)
	assert.Equal(t, "aGk=", parts[1].InlineData.Data)
}

func TestGeminiClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	c, err := NewGeminiClient(context.Background(), "gemini-2.0-flash", "bad", time.Second)
	require.NoError(t, err)
	c.Endpoint = srv.URL

	_, err = c.Generate(context.Background(), Input{Image: []byte("x"), MIMEType: "image/png", Notes: "n"})
	require.Error(t, err)
	assert.Equal(t, "API key not valid. Please pass a valid API key.", err.Error())
}

func TestGeminiClient_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c, err := NewGeminiClient(context.Background(), "m", "k", time.Second)
	require.NoError(t, err)
	c.Endpoint = srv.URL

	_, err = c.Generate(context.Background(), Input{Image: []byte("x"), MIMEType: "image/png", Notes: "n"})
	assert.ErrorIs(t, err, ErrEmptyDraft)
}
