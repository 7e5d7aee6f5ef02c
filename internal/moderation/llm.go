package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"kutechnest/backend/config"
)

// LLMModerator 通过 OpenAI 兼容接口（默认 Groq）调用大模型审核
type LLMModerator struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	limiter     *rate.Limiter
	logger      *zap.Logger
}

// NewLLMModerator 创建 LLM 审核器
func NewLLMModerator(cfg *config.ModerationConfig, logger *zap.Logger) *LLMModerator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout + 5*time.Second}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 30
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &LLMModerator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     timeout,
		limiter:     rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm),
		logger:      logger,
	}
}

func (m *LLMModerator) ReviewPost(ctx context.Context, draft PostDraft) Verdict {
	return m.review(ctx, SubjectPost, postSystemPrompt, postUserPrompt(draft))
}

func (m *LLMModerator) ReviewCompany(ctx context.Context, draft CompanyDraft) Verdict {
	return m.review(ctx, SubjectCompany, companySystemPrompt, companyUserPrompt(draft))
}

func (m *LLMModerator) review(ctx context.Context, subject, system, user string) Verdict {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	verdict, err := m.complete(ctx, system, user)
	if err != nil {
		m.logger.Warn("内容审核调用失败，按拒绝处理",
			zap.String("subject", subject),
			zap.Error(err),
		)
		return FailureVerdict(err)
	}
	return verdict
}

func (m *LLMModerator) complete(ctx context.Context, system, user string) (Verdict, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return Verdict{}, fmt.Errorf("等待审核配额: %w", err)
	}

	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.model,
		Temperature: m.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return Verdict{}, err
	}
	if len(resp.Choices) == 0 {
		return Verdict{}, errors.New("empty completion")
	}
	return parseVerdict(resp.Choices[0].Message.Content)
}

// rawVerdict 用指针区分缺失字段与零值
type rawVerdict struct {
	IsValid         *bool    `json:"is_valid"`
	ConfidenceScore *float64 `json:"confidence_score"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
	Reason          string   `json:"reason"`
}

func parseVerdict(content string) (Verdict, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var raw rawVerdict
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &raw); err != nil {
		return Verdict{}, fmt.Errorf("malformed verdict: %w", err)
	}
	if raw.IsValid == nil || raw.ConfidenceScore == nil {
		return Verdict{}, errors.New("malformed verdict: missing is_valid or confidence_score")
	}
	if *raw.ConfidenceScore < 0 || *raw.ConfidenceScore > 1 {
		return Verdict{}, fmt.Errorf("malformed verdict: confidence_score %v out of range", *raw.ConfidenceScore)
	}

	v := Verdict{
		IsValid:         *raw.IsValid,
		ConfidenceScore: *raw.ConfidenceScore,
		Issues:          raw.Issues,
		Recommendations: raw.Recommendations,
		Reason:          raw.Reason,
	}
	if v.Issues == nil {
		v.Issues = []string{}
	}
	if v.Recommendations == nil {
		v.Recommendations = []string{}
	}
	return v, nil
}
