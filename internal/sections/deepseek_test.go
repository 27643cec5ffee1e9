// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sections

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paperminer/internal/httputil"
	"github.com/pdiddy/paperminer/pkg/types"
)

func TestMain(m *testing.M) {
	// Keep transport retries fast in tests.
	httputil.RetryBaseDelay = time.Millisecond
	os.Exit(m.Run())
}

func deepseekTestClient(url string) *DeepseekClient {
	return NewDeepseekClient(types.SectionsConfig{
		APIKey:   "sk_test",
		Endpoint: url,
	})
}

func TestDeepseekComplete(t *testing.T) {
	var gotReq chatRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"Abstract\":\"body\"}"}}]}`))
	}))
	defer ts.Close()

	reply, err := deepseekTestClient(ts.URL).Complete(context.Background(), "extract the sections")
	require.NoError(t, err)
	assert.Equal(t, `{"Abstract":"body"}`, reply)

	assert.Equal(t, "deepseek-chat", gotReq.Model)
	assert.Equal(t, 0.1, gotReq.Temperature)
	assert.Equal(t, 16000, gotReq.MaxTokens)
	require.NotNil(t, gotReq.ResponseFormat)
	assert.Equal(t, "json_object", gotReq.ResponseFormat.Type)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "extract the sections", gotReq.Messages[0].Content)
}

func TestDeepseekCompleteNoKey(t *testing.T) {
	c := NewDeepseekClient(types.SectionsConfig{})
	_, err := c.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestDeepseekCompleteHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer ts.Close()

	_, err := deepseekTestClient(ts.URL).Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestDeepseekCompleteRetriesServerError(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer ts.Close()

	reply, err := deepseekTestClient(ts.URL).Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	assert.Equal(t, 2, calls)
}

func TestDeepseekCompleteEmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer ts.Close()

	_, err := deepseekTestClient(ts.URL).Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no content")
}
