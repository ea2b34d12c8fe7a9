package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bitfantasy/kosu/internal/config"
	"go.uber.org/zap"
)

// ErrAssistDisabled 未配置生成接口
var ErrAssistDisabled = errors.New("assist endpoint not configured")

// AssistService 描述生成代理。对第三方生成文本API做一层不透明转发：
// {prompt} 进、{text} 出，无重试、无流式。
type AssistService struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewAssistService(cfg config.AssistConfig, logger *zap.Logger) *AssistService {
	return &AssistService{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type assistRequest struct {
	Prompt string `json:"prompt"`
}

type assistResponse struct {
	Text string `json:"text"`
}

// Generate 请求一段生成文本
func (s *AssistService) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", &ValidationError{Field: "prompt", Reason: "required"}
	}
	if s.endpoint == "" {
		return "", ErrAssistDisabled
	}

	bodyBytes, _ := json.Marshal(assistRequest{Prompt: prompt})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", backendErr("build assist request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", backendErr("call assist endpoint", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", backendErr("read assist response", err)
	}
	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("assist endpoint returned non-200",
			zap.Int("status", resp.StatusCode),
		)
		return "", backendErr("assist endpoint", fmt.Errorf("status %d", resp.StatusCode))
	}

	var parsed assistResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", backendErr("decode assist response", err)
	}
	return parsed.Text, nil
}
