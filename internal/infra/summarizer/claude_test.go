package summarizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const claudeReply = `{
	"id": "msg_01",
	"type": "message",
	"role": "assistant",
	"model": "claude-sonnet-4-5-20250929",
	"content": [{"type": "text", "text": "  Europe faces record heat.  "}],
	"stop_reason": "end_turn",
	"stop_sequence": null,
	"usage": {"input_tokens": 120, "output_tokens": 8}
}`

func newTestClaude(t *testing.T, h http.HandlerFunc) (*Claude, *fakeRecorder) {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	cfg := DefaultConfig(TypeClaude)
	cfg.APIKey = "sk-ant-test"
	cfg.BaseURL = server.URL
	c := NewClaude(cfg)
	c.retry = fastRetry()
	m := &fakeRecorder{}
	c.metrics = m
	return c, m
}

func TestClaude_Summarize(t *testing.T) {
	var body map[string]any
	c, m := newTestClaude(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(claudeReply))
	})

	got, err := c.Summarize(context.Background(), "Temperatures climbed above forty degrees.")
	require.NoError(t, err)
	assert.Equal(t, "Europe faces record heat.", got)

	assert.Equal(t, c.config.Model, body["model"])
	msgs, _ := json.Marshal(body["messages"])
	assert.Contains(t, string(msgs), "forty degrees")
	assert.Contains(t, string(msgs), "900 characters")

	require.Len(t, m.obs, 1)
	assert.Equal(t, 25, m.obs[0].Length)
	assert.True(t, m.obs[0].WithinLimit())
}

func TestClaude_ServerErrorRetried(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClaude(t, func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(claudeReply))
	})

	got, err := c.Summarize(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "Europe faces record heat.", got)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClaude_ClientErrorNotRetried(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClaude(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	})

	_, err := c.Summarize(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 401")
	assert.Equal(t, int32(1), hits.Load())
}

func TestClaude_EmptyResponse(t *testing.T) {
	c, _ := newTestClaude(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(strings.Replace(claudeReply,
			`[{"type": "text", "text": "  Europe faces record heat.  "}]`, `[]`, 1)))
	})

	_, err := c.Summarize(context.Background(), "text")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
