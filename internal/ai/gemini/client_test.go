package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"docqa/pkg/aiinterface"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&aiinterface.ClientConfig{
		APIKey:  "g-test",
		BaseURL: server.URL,
		Model:   "gemini-2.5-flash",
	})
	require.NoError(t, err)
	return client
}

func TestGenerate_SingleCandidate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models/gemini-2.5-flash:generateContent", r.URL.Path)
		require.Equal(t, "g-test", r.URL.Query().Get("key"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{
					"role":  "model",
					"parts": []map[string]string{{"text": "因为瑞利散射"}},
				}},
			},
		})
	})

	answer, err := client.Generate(context.Background(), "天空为什么是蓝色的?")
	require.NoError(t, err)
	require.Equal(t, "因为瑞利散射", answer)
}

func TestEmbed_PerTextCallsKeepOrder(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models/gemini-2.5-flash:embedContent", r.URL.Path)
		calls++
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embedding": map[string]any{"values": []float32{float32(calls)}},
		})
	})

	vectors, err := client.Embed(context.Background(), []string{"第一条", "第二条"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	require.Equal(t, 2, calls)
	if vectors[0][0] != 1 || vectors[1][0] != 2 {
		t.Fatalf("向量应保持输入顺序: %v", vectors)
	}
}

func TestGenerate_MissingKeyDeferredAuthError(t *testing.T) {
	client, err := NewClient(&aiinterface.ClientConfig{Model: "gemini-2.5-flash"})
	require.NoError(t, err, "缺少密钥不应阻止构造")

	_, err = client.Generate(context.Background(), "问题")
	var clientErr *aiinterface.ClientError
	require.ErrorAs(t, err, &clientErr)
	require.Equal(t, aiinterface.ErrorTypeAuth, clientErr.Type)

	_, err = client.Embed(context.Background(), []string{"文本"})
	require.ErrorAs(t, err, &clientErr)
	require.Equal(t, aiinterface.ErrorTypeAuth, clientErr.Type)
}

func TestGenerate_AuthErrorFromAPI(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid key"}`, http.StatusForbidden)
	})

	_, err := client.Generate(context.Background(), "问题")
	var clientErr *aiinterface.ClientError
	require.ErrorAs(t, err, &clientErr)
	require.Equal(t, aiinterface.ErrorTypeAuth, clientErr.Type)
	if clientErr.IsRetryable() {
		t.Fatalf("认证错误不应标记为可重试")
	}
}

func TestGenerate_RetriesOn5xx(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": "ok"}}}},
			},
		})
	})

	answer, err := client.Generate(context.Background(), "问题")
	require.NoError(t, err)
	require.Equal(t, "ok", answer)
	require.Equal(t, 3, calls)
}

func TestGenerate_NoRetryOn4xx(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	_, err := client.Generate(context.Background(), "问题")
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestGenerate_EmptyCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})

	_, err := client.Generate(context.Background(), "问题")
	var clientErr *aiinterface.ClientError
	require.ErrorAs(t, err, &clientErr)
	require.Equal(t, aiinterface.ErrorTypeServerError, clientErr.Type)
}
