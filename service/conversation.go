package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roleplay/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const appendAttempts = 3

// ConversationService 会话与消息编排。
// 消息 position 在同一会话内从 0 连续递增，0 号始终是开场白
type ConversationService struct {
	db      *gorm.DB
	gateway *ChatGateway
	locker  ChatLocker
}

// NewConversationService 创建会话服务
func NewConversationService(db *gorm.DB, gateway *ChatGateway, locker ChatLocker) *ConversationService {
	if locker == nil {
		locker = NewMemoryLocker()
	}
	return &ConversationService{db: db, gateway: gateway, locker: locker}
}

// CreateChat 在同一事务中创建会话和 position 0 的开场白
func (s *ConversationService) CreateChat(ctx context.Context, userID, roleID, title string) (*models.Chat, *models.Message, error) {
	var chat models.Chat
	var greeting models.Message

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role, err := activeRole(tx, roleID)
		if err != nil {
			return err
		}
		if title == "" {
			title = role.DefaultChatTitle()
		}

		chat = models.Chat{UserID: userID, RoleID: role.ID, Title: title}
		if err := tx.Create(&chat).Error; err != nil {
			return err
		}

		greeting = models.Message{
			ChatID:     chat.ID,
			SenderType: models.SenderAI,
			Content:    role.Greeting(),
			Position:   0,
		}
		return tx.Create(&greeting).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &chat, &greeting, nil
}

// ListChats 当前用户的会话，最新的在前
func (s *ConversationService) ListChats(ctx context.Context, userID string) ([]models.Chat, error) {
	chats := []models.Chat{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&chats).Error
	return chats, err
}

// ownedChat 会话必须属于 userID，否则返回 ErrChatNotFound
func ownedChat(db *gorm.DB, userID, chatID string) (*models.Chat, error) {
	var chat models.Chat
	err := db.Where("id = ? AND user_id = ?", chatID, userID).First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func chatMessages(db *gorm.DB, chatID string) ([]models.Message, error) {
	messages := []models.Message{}
	err := db.Where("chat_id = ?", chatID).Order("position ASC").Find(&messages).Error
	return messages, err
}

// ListMessages 按 position 返回会话全部消息
func (s *ConversationService) ListMessages(ctx context.Context, userID, chatID string) ([]models.Message, error) {
	db := s.db.WithContext(ctx)
	if _, err := ownedChat(db, userID, chatID); err != nil {
		return nil, err
	}
	return chatMessages(db, chatID)
}

// SendMessage 一轮对话：先落库用户消息，再调用模型，最后落库 AI 回复。
// 同一会话的发送由 locker 串行化；模型失败时回复兜底文案，请求仍然成功
func (s *ConversationService) SendMessage(ctx context.Context, userID, chatID, content string) (*models.Message, error) {
	unlock, err := s.locker.Lock(ctx, chatID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	db := s.db.WithContext(ctx)
	chat, err := ownedChat(db, userID, chatID)
	if err != nil {
		return nil, err
	}

	var role models.Role
	if err := db.Where("id = ?", chat.RoleID).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleMissing
		}
		return nil, err
	}

	// 历史在写入本条用户消息之前读取，本条只作为最后一轮出现一次
	history, err := chatMessages(db, chatID)
	if err != nil {
		return nil, err
	}

	if _, err := s.appendMessage(ctx, chatID, models.SenderUser, content); err != nil {
		return nil, fmt.Errorf("保存用户消息失败: %w", err)
	}

	turns := AssembleTurns(role.SystemPrompt, role.FewShotExamples, history, content)
	reply, res := s.gateway.Reply(ctx, turns)

	// 模型调用可能耗尽请求 ctx，回复仍需落库
	aiMsg, err := s.appendMessage(context.WithoutCancel(ctx), chatID, models.SenderAI, reply)
	if err != nil {
		return nil, fmt.Errorf("保存 AI 回复失败: %w", err)
	}

	log.Debug().
		Str("chat_id", chatID).
		Int("position", aiMsg.Position).
		Str("completion", string(res.Status)).
		Msg("对话完成")
	return aiMsg, nil
}

// appendMessage 在事务内取 MAX(position)+1 写入；唯一索引冲突时重试
func (s *ConversationService) appendMessage(ctx context.Context, chatID, sender, content string) (*models.Message, error) {
	var lastErr error
	for attempt := 0; attempt < appendAttempts; attempt++ {
		msg := models.Message{ChatID: chatID, SenderType: sender, Content: content}
		lastErr = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var next int
			if err := tx.Model(&models.Message{}).
				Select("COALESCE(MAX(position), -1) + 1").
				Where("chat_id = ?", chatID).
				Scan(&next).Error; err != nil {
				return err
			}
			msg.Position = next
			if err := tx.Create(&msg).Error; err != nil {
				return err
			}
			return tx.Model(&models.Chat{}).Where("id = ?", chatID).Update("updated_at", time.Now()).Error
		})
		if lastErr == nil {
			return &msg, nil
		}
		if !isDuplicateKey(lastErr) {
			return nil, lastErr
		}
		log.Warn().Str("chat_id", chatID).Int("attempt", attempt+1).Msg("消息位置冲突，重试")
	}
	return nil, lastErr
}

// DeleteChats 只删除 ids 中属于 userID 的会话及其消息，返回删除的会话数
func (s *ConversationService) DeleteChats(ctx context.Context, userID string, ids []string) (int, error) {
	var owned []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Chat{}).
			Where("user_id = ? AND id IN ?", userID, ids).
			Pluck("id", &owned).Error; err != nil {
			return err
		}
		if len(owned) == 0 {
			return ErrNoChatsDeleted
		}
		if err := tx.Where("chat_id IN ?", owned).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", owned).Delete(&models.Chat{}).Error
	})
	if err != nil {
		return 0, err
	}
	return len(owned), nil
}
