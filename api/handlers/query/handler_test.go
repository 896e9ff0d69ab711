package query

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"docqa/internal/logger"
	"docqa/internal/rag"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type fakeAnswerService struct {
	lastReq *rag.QueryRequest
	reply   *rag.Answer
	err     error
}

func (f *fakeAnswerService) Answer(ctx context.Context, req *rag.QueryRequest) (*rag.Answer, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func setupRouter(service AnswerService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/query", NewHandler(service).Answer)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestMain(m *testing.M) {
	_ = logger.Init("error", "console", "stdout")
	m.Run()
}

func TestAnswer_Success(t *testing.T) {
	service := &fakeAnswerService{reply: &rag.Answer{
		Answer: "因为瑞利散射",
		Sources: []*rag.RetrievedChunk{
			{Content: "天空因瑞利散射而呈蓝色", Metadata: map[string]string{"source": "sky.pdf"}, Similarity: 0.92},
		},
	}}
	router := setupRouter(service)

	recorder := postJSON(t, router, `{"question": "天空为什么是蓝色的?"}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp QueryResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.Equal(t, "因为瑞利散射", resp.Answer)
	require.Len(t, resp.Sources, 1)
	if resp.Sources[0].Metadata["source"] != "sky.pdf" {
		t.Fatalf("响应应包含检索来源元数据: %+v", resp.Sources[0])
	}
}

func TestAnswer_EmptyQuestionRejected(t *testing.T) {
	service := &fakeAnswerService{}
	router := setupRouter(service)

	for _, body := range []string{`{}`, `{"question": ""}`, `{"question": "   "}`} {
		recorder := postJSON(t, router, body)
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("空问题 %q 应返回 400, 实际 %d", body, recorder.Code)
		}
	}
	if service.lastReq != nil {
		t.Fatalf("校验失败时不应调用问答服务")
	}
}

func TestAnswer_MalformedJSONRejected(t *testing.T) {
	router := setupRouter(&fakeAnswerService{})

	recorder := postJSON(t, router, `{"question": `)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestAnswer_ContextForwarded(t *testing.T) {
	service := &fakeAnswerService{reply: &rag.Answer{Answer: "ok", Sources: []*rag.RetrievedChunk{}}}
	router := setupRouter(service)

	recorder := postJSON(t, router, `{"question": "问题", "context": {"audience": "beginner"}}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	require.NotNil(t, service.lastReq)
	ctxMap, ok := service.lastReq.Context.(map[string]any)
	if !ok || ctxMap["audience"] != "beginner" {
		t.Fatalf("结构化上下文应原样传递给问答服务: %+v", service.lastReq.Context)
	}
}

func TestAnswer_ServiceErrorMapsTo500(t *testing.T) {
	service := &fakeAnswerService{err: fmt.Errorf("生成失败: 服务不可用")}
	router := setupRouter(service)

	recorder := postJSON(t, router, `{"question": "问题"}`)
	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	require.Contains(t, recorder.Body.String(), "问答处理失败")
}
