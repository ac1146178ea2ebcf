package service

import (
	"context"
	"fmt"

	"roleplay/config"

	"github.com/sashabaranov/go-openai"
)

// OpenAICompleter OpenAI 兼容接口（七牛云、DeepSeek 等）
type OpenAICompleter struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	cfg         config.LLMConfig
}

// NewOpenAICompleter 创建 OpenAI 兼容客户端，base_url 为空时使用官方地址
func NewOpenAICompleter(cfg config.LLMConfig) *OpenAICompleter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAICompleter{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.ChatModel,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		cfg:         cfg,
	}
}

func (o *OpenAICompleter) Complete(ctx context.Context, turns []Turn) Completion {
	if timeout := o.cfg.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openAIRole(turn.Role),
			Content: turn.Content,
		})
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
	})
	if err != nil {
		return completionFailed(err)
	}
	if len(resp.Choices) == 0 {
		return completionEmpty(fmt.Errorf("响应中没有 choices"))
	}
	return completionOK(resp.Choices[0].Message.Content)
}

func openAIRole(role string) string {
	switch role {
	case TurnSystem:
		return openai.ChatMessageRoleSystem
	case TurnAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}
