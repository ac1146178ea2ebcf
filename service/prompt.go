package service

import "roleplay/models"

const (
	TurnSystem    = "system"
	TurnUser      = "user"
	TurnAssistant = "assistant"
)

// Turn 发送给大模型的一条带角色标记的上下文
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AssembleTurns 按固定顺序拼装上下文：
// 系统提示 → 示例对话（缺失的一侧跳过）→ 按 position 排序的历史消息 → 本次用户输入。
// 不做截断，历史全部重发。
func AssembleTurns(systemPrompt string, examples []models.FewShotExample, history []models.Message, userText string) []Turn {
	turns := make([]Turn, 0, 2+2*len(examples)+len(history))
	turns = append(turns, Turn{Role: TurnSystem, Content: systemPrompt})

	for _, ex := range examples {
		if ex.User != "" {
			turns = append(turns, Turn{Role: TurnUser, Content: ex.User})
		}
		if ex.AI != "" {
			turns = append(turns, Turn{Role: TurnAssistant, Content: ex.AI})
		}
	}

	for _, msg := range history {
		role := TurnUser
		if msg.SenderType == models.SenderAI {
			role = TurnAssistant
		}
		turns = append(turns, Turn{Role: role, Content: msg.Content})
	}

	return append(turns, Turn{Role: TurnUser, Content: userText})
}
