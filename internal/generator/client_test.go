package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momomo623/smart-word-completion/internal/config"
	"github.com/momomo623/smart-word-completion/internal/domain"
)

func testConfig(baseURL string) config.LLMConfig {
	return config.LLMConfig{
		APIKey:         "test-key",
		BaseURL:        baseURL,
		ModelName:      "qwen-max",
		MaxTokens:      100,
		Temperature:    0.7,
		TimeoutSeconds: 5,
		PromptTemplate: "行：%[1]s 前：%[2]s 后：%[3]s",
	}
}

func chatReply(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(body)
}

func TestClient_NeutralTerm(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte(chatReply("```yaml\nneutral_term: 甲方名称\n```")))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	term, err := c.NeutralTerm(context.Background(), domain.TermRequest{
		LineText:   "甲方：_____",
		BeforeText: "甲方：",
	})

	require.NoError(t, err)
	assert.Equal(t, "甲方名称", term)
	assert.Equal(t, "qwen-max", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Contains(t, gotReq.Messages[1].Content, "甲方：_____")
}

// TestClient_RetryOnServerError 5xx错误重试，第二次成功
func TestClient_RetryOnServerError(t *testing.T) {
	if testing.Short() {
		t.Skip("重试退避耗时，短测试跳过")
	}

	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(chatReply("结论####签署日期")))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	term, err := c.NeutralTerm(context.Background(), domain.TermRequest{LineText: "日期："})

	require.NoError(t, err)
	assert.Equal(t, "签署日期", term)
	assert.Equal(t, 2, attempts)
}

func TestClient_BadStatusNotRetried(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "invalid key"}}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.NeutralTerm(context.Background(), domain.TermRequest{LineText: "x"})
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestClient_DetectPlaceholders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)
		_, _ = w.Write([]byte(chatReply(`{"placeholders": [{"description": "姓名", "before_text": "姓名："}]}`)))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	hits, err := c.DetectPlaceholders(context.Background(), "姓名：_____")

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "姓名", hits[0].Description)
	assert.Equal(t, "姓名：", hits[0].Before)
}

func TestClient_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.NeutralTerm(context.Background(), domain.TermRequest{LineText: "x"})
	assert.Error(t, err)
}
