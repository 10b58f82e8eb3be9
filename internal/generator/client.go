// Package generator 外部生成协作方：调用 OpenAI 兼容接口生成中性词，
// 以及为大模型检测器提供结构化分析。
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/momomo623/smart-word-completion/internal/config"
	"github.com/momomo623/smart-word-completion/internal/detector"
	"github.com/momomo623/smart-word-completion/internal/domain"
)

const (
	systemPromptTerm   = "你是一个专业的内容分析助手，擅长根据上下文生成精准的描述词。"
	systemPromptDetect = "你是一个专业的文档分析助手，能够识别文档中需要填写的占位符位置。请确保返回有效的JSON数据。"
	maxRetries         = 3
)

// errRetryable 限流和服务端错误可以退避后重试，其余错误直接失败。
var errRetryable = errors.New("可重试错误")

// Client OpenAI 兼容的大模型客户端。
type Client struct {
	cfg        config.LLMConfig
	httpClient *http.Client
}

// NewClient 创建大模型客户端。
func NewClient(cfg config.LLMConfig) *Client {
	if cfg.APIKey == "" {
		log.Warn().Msg("未设置API密钥，请设置 DASHSCOPE_API_KEY 或 OPENAI_API_KEY")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// --- OpenAI 兼容接口请求/响应结构 ---

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NeutralTerm 实现 domain.Generator：根据上下文生成中性词。
// 请求失败或结果不可解析时返回错误，调用方将对应占位符标记为未解决。
func (c *Client) NeutralTerm(ctx context.Context, req domain.TermRequest) (string, error) {
	prompt := fmt.Sprintf(c.cfg.PromptTemplate, req.LineText, req.BeforeText, req.AfterText)

	resp, err := c.chatCompletion(ctx, chatRequest{
		Model: c.cfg.ModelName,
		Messages: []chatMessage{
			{Role: "system", Content: systemPromptTerm},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("中性词生成失败: %w", err)
	}

	term, err := ParseNeutralTerm(resp)
	if err != nil {
		return "", fmt.Errorf("解析中性词失败: %w", err)
	}
	log.Info().Str("term", term).Msg("获取到中性词")
	return term, nil
}

// DetectPlaceholders 实现 detector.ModelAnalyzer：让大模型分析文本片段中的占位符位置。
func (c *Client) DetectPlaceholders(ctx context.Context, sectionText string) ([]detector.ModelHit, error) {
	prompt := fmt.Sprintf(`分析以下文档片段，找出所有可能需要填写的占位符位置。
占位符可能是空白、下划线或其他明显需要填写的位置。

文档片段：
%s

请返回JSON对象，字段 placeholders 为数组，每个元素包含：
{"description": "位置描述", "before_text": "占位符前的内容（最多50个字符）", "after_text": "占位符后的内容（最多50个字符）"}

如果没有找到占位符，placeholders 为空数组。`, sectionText)

	resp, err := c.chatCompletion(ctx, chatRequest{
		Model: c.cfg.ModelName,
		Messages: []chatMessage{
			{Role: "system", Content: systemPromptDetect},
			{Role: "user", Content: prompt},
		},
		MaxTokens:      1024,
		Temperature:    0.2,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("大模型占位符分析请求失败: %w", err)
	}
	return ParseModelHits(resp)
}

// chatCompletion 发送聊天补全请求，对可重试错误做有限次退避重试。
func (c *Client) chatCompletion(ctx context.Context, reqBody chatRequest) (string, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("序列化请求失败: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*2) * time.Second
			log.Warn().Int("attempt", attempt+1).Dur("backoff", backoff).Msg("重试大模型请求")
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		result, err := c.doRequest(ctx, bodyBytes)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !errors.Is(err, errRetryable) {
			return "", err
		}
	}
	return "", fmt.Errorf("大模型请求在 %d 次重试后仍失败: %w", maxRetries, lastErr)
}

func (c *Client) doRequest(ctx context.Context, bodyBytes []byte) (string, error) {
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: 调用大模型接口失败: %v", errRetryable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", fmt.Errorf("%w (状态码 %d): %s", errRetryable, resp.StatusCode, string(respBody))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("接口错误 (状态码 %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp chatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("反序列化响应失败: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("接口错误 [%s]: %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("空响应: 没有候选结果")
	}
	return strings.TrimSpace(apiResp.Choices[0].Message.Content), nil
}
