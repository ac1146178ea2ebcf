package service

import (
	"context"
	"fmt"
	"strings"

	"roleplay/config"
	"roleplay/metrics"

	"github.com/rs/zerolog/log"
)

// CompletionStatus 大模型调用结果分类
type CompletionStatus string

const (
	// CompletionOK 正常返回文本
	CompletionOK CompletionStatus = "ok"
	// CompletionEmpty 调用成功但返回体中没有可用内容
	CompletionEmpty CompletionStatus = "empty"
	// CompletionFailed 网络错误、超时、非 2xx 等
	CompletionFailed CompletionStatus = "failed"
)

// Completion 一次对话补全的结果
type Completion struct {
	Status CompletionStatus
	Text   string
	Err    error
}

func completionOK(text string) Completion {
	if strings.TrimSpace(text) == "" {
		return Completion{Status: CompletionEmpty, Err: fmt.Errorf("模型返回内容为空")}
	}
	return Completion{Status: CompletionOK, Text: text}
}

func completionEmpty(err error) Completion {
	return Completion{Status: CompletionEmpty, Err: err}
}

func completionFailed(err error) Completion {
	return Completion{Status: CompletionFailed, Err: err}
}

// ChatCompleter 对话补全提供方
type ChatCompleter interface {
	Complete(ctx context.Context, turns []Turn) Completion
}

// ChatGateway 把补全结果收敛为一段回复：任何失败都退化为固定兜底文案
type ChatGateway struct {
	completer ChatCompleter
	fallback  string
}

// NewChatGateway 创建对话网关
func NewChatGateway(completer ChatCompleter, fallback string) *ChatGateway {
	if fallback == "" {
		fallback = "Sorry, I am unable to respond at the moment."
	}
	return &ChatGateway{completer: completer, fallback: fallback}
}

// Reply 返回模型回复或兜底文案，同时返回原始结果供调用方区分
func (g *ChatGateway) Reply(ctx context.Context, turns []Turn) (string, Completion) {
	res := g.completer.Complete(ctx, turns)
	metrics.ObserveCompletion(string(res.Status))
	if res.Status == CompletionOK {
		return res.Text, res
	}
	log.Warn().Err(res.Err).Str("status", string(res.Status)).Int("turns", len(turns)).Msg("大模型调用失败，使用兜底回复")
	return g.fallback, res
}

// Fallback 兜底文案
func (g *ChatGateway) Fallback() string {
	return g.fallback
}

// NewChatCompleter 按配置选择补全提供方
func NewChatCompleter(ctx context.Context, cfg config.LLMConfig) (ChatCompleter, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAICompleter(cfg), nil
	case "gemini":
		return NewGeminiCompleter(ctx, cfg)
	default:
		return nil, fmt.Errorf("不支持的大模型提供方: %s", cfg.Provider)
	}
}
