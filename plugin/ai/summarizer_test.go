package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"

	"github.com/omar251/CinemaTec-sub001/plugin/cache"
)

func newChatStub(t *testing.T, calls *atomic.Int64, failFirst bool) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if failFirst && n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "a generated synopsis"}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSummarize(t *testing.T) {
	var calls atomic.Int64
	server := newChatStub(t, &calls, false)

	summarizer := NewSummarizer(&Config{BaseURL: server.URL, APIKey: "test", MaxRetries: 1}, nil)
	text, err := summarizer.Summarize(context.Background(), "summarize The Matrix")
	require.NoError(t, err)
	require.Equal(t, "a generated synopsis", text)
	require.Equal(t, int64(1), calls.Load())
}

func TestSummarizeCachesByPrompt(t *testing.T) {
	var calls atomic.Int64
	server := newChatStub(t, &calls, false)

	textCache := cache.New[string](cache.Config{DefaultTTL: time.Minute})
	t.Cleanup(textCache.Close)

	summarizer := NewSummarizer(&Config{BaseURL: server.URL, APIKey: "test", MaxRetries: 1}, textCache)
	for i := 0; i < 3; i++ {
		text, err := summarizer.Summarize(context.Background(), "summarize The Matrix")
		require.NoError(t, err)
		require.Equal(t, "a generated synopsis", text)
	}
	require.Equal(t, int64(1), calls.Load())

	// A different prompt misses the cache.
	_, err := summarizer.Summarize(context.Background(), "summarize Dark City")
	require.NoError(t, err)
	require.Equal(t, int64(2), calls.Load())
}

func TestSummarizeRetries(t *testing.T) {
	var calls atomic.Int64
	server := newChatStub(t, &calls, true)

	summarizer := NewSummarizer(&Config{BaseURL: server.URL, APIKey: "test", MaxRetries: 2}, nil)
	text, err := summarizer.Summarize(context.Background(), "summarize The Matrix")
	require.NoError(t, err)
	require.Equal(t, "a generated synopsis", text)
	require.Equal(t, int64(2), calls.Load())
}
