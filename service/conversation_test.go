package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"roleplay/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFallback = "Sorry, I am unable to respond at the moment."

func newTestConversation(t *testing.T, completer ChatCompleter) (*ConversationService, *models.User) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	return NewConversationService(db, NewChatGateway(completer, testFallback), NewMemoryLocker()), user
}

func TestCreateChat_SeedsGreeting(t *testing.T) {
	svc, user := newTestConversation(t, &stubCompleter{})
	role := roleByName(t, svc.db, "Spider-Man")

	chat, greeting, err := svc.CreateChat(context.Background(), user.ID, role.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Chat with Spider-Man", chat.Title)
	assert.Equal(t, 0, greeting.Position)
	assert.Equal(t, models.SenderAI, greeting.SenderType)
	assert.Contains(t, greeting.Content, "Spider-Man")

	msgs := assertGapless(t, svc.db, chat.ID)
	assert.Len(t, msgs, 1)

	// 指定标题
	chat2, _, err := svc.CreateChat(context.Background(), user.ID, role.ID, "夜巡")
	require.NoError(t, err)
	assert.Equal(t, "夜巡", chat2.Title)
}

func TestCreateChat_InactiveOrUnknownRole(t *testing.T) {
	svc, user := newTestConversation(t, &stubCompleter{})
	role := roleByName(t, svc.db, "Spider-Man")
	require.NoError(t, svc.db.Model(role).Update("is_active", false).Error)

	_, _, err := svc.CreateChat(context.Background(), user.ID, role.ID, "")
	assert.ErrorIs(t, err, ErrRoleNotFound)
	_, _, err = svc.CreateChat(context.Background(), user.ID, "no-such-role", "")
	assert.ErrorIs(t, err, ErrRoleNotFound)

	var count int64
	svc.db.Model(&models.Chat{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreateChat_GreetingFailureRollsBackChat(t *testing.T) {
	svc, user := newTestConversation(t, &stubCompleter{})
	role := roleByName(t, svc.db, "Spider-Man")
	require.NoError(t, svc.db.Exec(`CREATE TRIGGER reject_messages BEFORE INSERT ON messages
BEGIN
	SELECT RAISE(ABORT, 'boom');
END`).Error)

	chat, greeting, err := svc.CreateChat(context.Background(), user.ID, role.ID, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Nil(t, chat)
	assert.Nil(t, greeting)

	var count int64
	svc.db.Model(&models.Chat{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestListChats_NewestFirst(t *testing.T) {
	svc, user := newTestConversation(t, &stubCompleter{})
	other := createTestUser(t, svc.db, "bob")
	role := roleByName(t, svc.db, "Spider-Man")

	base := time.Now().Add(-time.Hour)
	for i, title := range []string{"old", "mid", "new"} {
		chat := models.Chat{UserID: user.ID, RoleID: role.ID, Title: title, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, svc.db.Create(&chat).Error)
	}
	require.NoError(t, svc.db.Create(&models.Chat{UserID: other.ID, RoleID: role.ID, Title: "bob's"}).Error)

	chats, err := svc.ListChats(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, chats, 3)
	assert.Equal(t, "new", chats[0].Title)
	assert.Equal(t, "mid", chats[1].Title)
	assert.Equal(t, "old", chats[2].Title)

	empty, err := svc.ListChats(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestSendMessage_PersistsTurnAndReply(t *testing.T) {
	completer := &stubCompleter{result: Completion{Status: CompletionOK, Text: "Thwip!"}}
	svc, user := newTestConversation(t, completer)
	role := roleByName(t, svc.db, "Spider-Man")
	chat, greeting, err := svc.CreateChat(context.Background(), user.ID, role.ID, "")
	require.NoError(t, err)

	reply, err := svc.SendMessage(context.Background(), user.ID, chat.ID, "hi")
	require.NoError(t, err)
	assert.Equal(t, "Thwip!", reply.Content)
	assert.Equal(t, 2, reply.Position)
	assert.Equal(t, models.SenderAI, reply.SenderType)

	msgs := assertGapless(t, svc.db, chat.ID)
	require.Len(t, msgs, 3)
	assert.Equal(t, models.SenderUser, msgs[1].SenderType)
	assert.Equal(t, "hi", msgs[1].Content)

	// 上下文：system + 2 组示例 + 开场白 + 本次输入，本次输入只出现一次
	turns := completer.turns
	require.Len(t, turns, 1+4+1+1)
	assert.Equal(t, Turn{Role: TurnSystem, Content: role.SystemPrompt}, turns[0])
	assert.Equal(t, Turn{Role: TurnAssistant, Content: greeting.Content}, turns[5])
	assert.Equal(t, Turn{Role: TurnUser, Content: "hi"}, turns[6])

	// 第二轮带上完整历史
	_, err = svc.SendMessage(context.Background(), user.ID, chat.ID, "again")
	require.NoError(t, err)
	require.Len(t, completer.turns, 1+4+3+1)
	assert.Equal(t, Turn{Role: TurnUser, Content: "hi"}, completer.turns[6])
	assert.Equal(t, Turn{Role: TurnAssistant, Content: "Thwip!"}, completer.turns[7])
	assertGapless(t, svc.db, chat.ID)
}

func TestSendMessage_FallbackPersistedAtCount(t *testing.T) {
	svc, user := newTestConversation(t, &stubCompleter{result: completionFailed(errors.New("connection refused"))})
	role := roleByName(t, svc.db, "Girlfriend Trainer")
	chat, _, err := svc.CreateChat(context.Background(), user.ID, role.ID, "")
	require.NoError(t, err)

	reply, err := svc.SendMessage(context.Background(), user.ID, chat.ID, "她生气了")
	require.NoError(t, err)
	assert.Equal(t, testFallback, reply.Content)
	assert.Equal(t, 2, reply.Position)

	msgs := assertGapless(t, svc.db, chat.ID)
	assert.Len(t, msgs, 3)
	assert.Equal(t, testFallback, msgs[2].Content)
}

func TestSendMessage_NotOwnedWritesNothing(t *testing.T) {
	completer := &stubCompleter{result: Completion{Status: CompletionOK, Text: "x"}}
	svc, user := newTestConversation(t, completer)
	other := createTestUser(t, svc.db, "mallory")
	role := roleByName(t, svc.db, "Spider-Man")
	chat, _, err := svc.CreateChat(context.Background(), user.ID, role.ID, "")
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), other.ID, chat.ID, "hijack")
	assert.ErrorIs(t, err, ErrChatNotFound)
	_, err = svc.SendMessage(context.Background(), user.ID, "missing-chat", "hi")
	assert.ErrorIs(t, err, ErrChatNotFound)

	assert.Equal(t, 0, completer.calls)
	msgs := assertGapless(t, svc.db, chat.ID)
	assert.Len(t, msgs, 1)

	_, err = svc.ListMessages(context.Background(), other.ID, chat.ID)
	assert.ErrorIs(t, err, ErrChatNotFound)
}

func TestSendMessage_RoleMissingWritesNothing(t *testing.T) {
	svc, user := newTestConversation(t, &stubCompleter{})
	role := roleByName(t, svc.db, "Spider-Man")
	chat, _, err := svc.CreateChat(context.Background(), user.ID, role.ID, "")
	require.NoError(t, err)
	require.NoError(t, svc.db.Delete(role).Error)

	_, err = svc.SendMessage(context.Background(), user.ID, chat.ID, "hi")
	assert.ErrorIs(t, err, ErrRoleMissing)
	assert.Len(t, assertGapless(t, svc.db, chat.ID), 1)
}

func TestSendMessage_ConcurrentStaysGapless(t *testing.T) {
	svc, user := newTestConversation(t, &stubCompleter{result: Completion{Status: CompletionOK, Text: "ok"}})
	role := roleByName(t, svc.db, "Spider-Man")
	chat, _, err := svc.CreateChat(context.Background(), user.ID, role.ID, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SendMessage(context.Background(), user.ID, chat.ID, "ping")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	msgs := assertGapless(t, svc.db, chat.ID)
	require.Len(t, msgs, 1+8*2)
	// 串行化后用户消息与回复严格交替
	for i := 1; i < len(msgs); i += 2 {
		assert.Equal(t, models.SenderUser, msgs[i].SenderType)
		assert.Equal(t, models.SenderAI, msgs[i+1].SenderType)
	}
}

func TestAppendMessage_ComputesNextPosition(t *testing.T) {
	svc, user := newTestConversation(t, &stubCompleter{})
	role := roleByName(t, svc.db, "Spider-Man")
	chat, _, err := svc.CreateChat(context.Background(), user.ID, role.ID, "")
	require.NoError(t, err)

	m1, err := svc.appendMessage(context.Background(), chat.ID, models.SenderUser, "a")
	require.NoError(t, err)
	m2, err := svc.appendMessage(context.Background(), chat.ID, models.SenderUser, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, m1.Position)
	assert.Equal(t, 2, m2.Position)

	// 唯一索引拒绝重复位置
	dup := models.Message{ChatID: chat.ID, SenderType: models.SenderUser, Content: "dup", Position: 1}
	err = svc.db.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, isDuplicateKey(err))
}

func TestDeleteChats_OnlyOwned(t *testing.T) {
	svc, user := newTestConversation(t, &stubCompleter{result: Completion{Status: CompletionOK, Text: "ok"}})
	other := createTestUser(t, svc.db, "bob")
	role := roleByName(t, svc.db, "Spider-Man")

	chatA, _, err := svc.CreateChat(context.Background(), user.ID, role.ID, "A")
	require.NoError(t, err)
	_, err = svc.SendMessage(context.Background(), user.ID, chatA.ID, "hi")
	require.NoError(t, err)
	chatB, _, err := svc.CreateChat(context.Background(), other.ID, role.ID, "B")
	require.NoError(t, err)

	n, err := svc.DeleteChats(context.Background(), user.ID, []string{chatA.ID, chatB.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var count int64
	svc.db.Model(&models.Chat{}).Where("id = ?", chatA.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	svc.db.Model(&models.Message{}).Where("chat_id = ?", chatA.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	svc.db.Model(&models.Chat{}).Where("id = ?", chatB.ID).Count(&count)
	assert.Equal(t, int64(1), count)
	svc.db.Model(&models.Message{}).Where("chat_id = ?", chatB.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDeleteChats_NoneOwned(t *testing.T) {
	svc, user := newTestConversation(t, &stubCompleter{})
	other := createTestUser(t, svc.db, "bob")
	role := roleByName(t, svc.db, "Spider-Man")
	chatB, _, err := svc.CreateChat(context.Background(), other.ID, role.ID, "B")
	require.NoError(t, err)

	_, err = svc.DeleteChats(context.Background(), user.ID, []string{chatB.ID, "missing"})
	assert.ErrorIs(t, err, ErrNoChatsDeleted)
	assertGapless(t, svc.db, chatB.ID)
}
