package ollama

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
		BaseURL: server.URL,
		Model:   "tinyllama",
	})
	require.NoError(t, err)
	return client
}

func TestGenerate_NonStreaming(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req["stream"] != false {
			t.Fatalf("必须请求非流式生成: %v", req["stream"])
		}
		require.Equal(t, "tinyllama", req["model"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "因为瑞利散射"},
			"done":    true,
		})
	})

	answer, err := client.Generate(context.Background(), "天空为什么是蓝色的?")
	require.NoError(t, err)
	require.Equal(t, "因为瑞利散射", answer)
}

func TestEmbed_PerTextCallsKeepOrder(t *testing.T) {
	var received []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embeddings", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		text := req["prompt"].(string)
		received = append(received, text)

		// 向量首分量编码调用顺序
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embedding": []float32{float32(len(received)), 0.5},
		})
	})

	vectors, err := client.Embed(context.Background(), []string{"第一条", "第二条", "第三条"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	require.Equal(t, []string{"第一条", "第二条", "第三条"}, received)
	for i, vec := range vectors {
		if vec[0] != float32(i+1) {
			t.Fatalf("向量应保持输入顺序, 位置 %d 实际 %v", i, vec)
		}
	}
}

func TestGenerate_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	})

	_, err := client.Generate(context.Background(), "问题")
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
}

func TestGenerate_NetworkError(t *testing.T) {
	client, err := NewClient(&aiinterface.ClientConfig{
		BaseURL: "http://127.0.0.1:1",
		Model:   "tinyllama",
	})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "问题")
	var clientErr *aiinterface.ClientError
	require.ErrorAs(t, err, &clientErr)
	require.Equal(t, aiinterface.ErrorTypeNetwork, clientErr.Type)
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	client, err := NewClient(&aiinterface.ClientConfig{Model: "tinyllama"})
	require.NoError(t, err)
	require.Equal(t, "http://localhost:11434", client.baseURL)
}
