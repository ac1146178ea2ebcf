package service

import (
	"context"
	"fmt"
	"strings"

	"roleplay/config"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiCompleter Google Gemini 提供方
type GeminiCompleter struct {
	client *genai.Client
	cfg    config.LLMConfig
}

// NewGeminiCompleter 创建 Gemini 客户端
func NewGeminiCompleter(ctx context.Context, cfg config.LLMConfig) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("创建 Gemini 客户端失败: %w", err)
	}
	return &GeminiCompleter{client: client, cfg: cfg}, nil
}

// Close 关闭底层连接
func (g *GeminiCompleter) Close() error {
	return g.client.Close()
}

func (g *GeminiCompleter) Complete(ctx context.Context, turns []Turn) Completion {
	system, history, last, err := geminiContents(turns)
	if err != nil {
		return completionFailed(err)
	}

	if timeout := g.cfg.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	model := g.client.GenerativeModel(g.cfg.ChatModel)
	model.SetTemperature(g.cfg.Temperature)
	if g.cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(g.cfg.MaxTokens))
	}
	if system != nil {
		model.SystemInstruction = system
	}

	cs := model.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return completionFailed(fmt.Errorf("gemini SendMessage 失败: %w", err))
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return completionEmpty(fmt.Errorf("gemini 响应没有候选结果"))
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return completionOK(sb.String())
}

// geminiContents 拆分为系统指令、历史和最后一条用户输入。
// Gemini 要求 user/model 交替，相邻的同角色内容合并为一条
func geminiContents(turns []Turn) (*genai.Content, []*genai.Content, *genai.Content, error) {
	if len(turns) == 0 || turns[len(turns)-1].Role != TurnUser {
		return nil, nil, nil, fmt.Errorf("最后一条上下文必须是用户输入")
	}

	var system *genai.Content
	var history []*genai.Content
	for _, turn := range turns[:len(turns)-1] {
		if turn.Role == TurnSystem {
			if system == nil {
				system = &genai.Content{}
			}
			system.Parts = append(system.Parts, genai.Text(turn.Content))
			continue
		}
		role := "user"
		if turn.Role == TurnAssistant {
			role = "model"
		}
		if n := len(history); n > 0 && history[n-1].Role == role {
			history[n-1].Parts = append(history[n-1].Parts, genai.Text(turn.Content))
			continue
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(turn.Content)}})
	}

	// 首条历史必须是 user，开头的 model 内容（开场白）并入系统指令
	for len(history) > 0 && history[0].Role == "model" {
		if system == nil {
			system = &genai.Content{}
		}
		system.Parts = append(system.Parts, history[0].Parts...)
		history = history[1:]
	}

	last := &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(turns[len(turns)-1].Content)}}
	// 历史以 user 结尾时把它并入本次发送
	if n := len(history); n > 0 && history[n-1].Role == "user" {
		last.Parts = append(history[n-1].Parts, last.Parts...)
		history = history[:n-1]
	}
	return system, history, last, nil
}
