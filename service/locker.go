package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrLockTimeout 等待会话锁超时
var ErrLockTimeout = errors.New("会话正忙，请稍后重试")

// ChatLocker 同一会话的发送操作串行执行
type ChatLocker interface {
	// Lock 获取 chatID 的锁，返回释放函数
	Lock(ctx context.Context, chatID string) (func(), error)
}

// MemoryLocker 单进程内按会话加锁
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*chatLock
}

type chatLock struct {
	ch   chan struct{}
	refs int
}

// NewMemoryLocker 创建进程内锁
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*chatLock)}
}

func (m *MemoryLocker) Lock(ctx context.Context, chatID string) (func(), error) {
	m.mu.Lock()
	l, ok := m.locks[chatID]
	if !ok {
		l = &chatLock{ch: make(chan struct{}, 1)}
		m.locks[chatID] = l
	}
	l.refs++
	m.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		m.release(chatID, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.ch
			m.release(chatID, l)
		})
	}, nil
}

// release 没有等待者时回收条目
func (m *MemoryLocker) release(chatID string, l *chatLock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, chatID)
	}
}

func (m *MemoryLocker) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

// 只删除自己持有的锁
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// 只续期自己持有的锁
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLocker 多实例部署时基于 redis SET NX PX 的会话锁。
// 持有期间每 ttl/3 续期一次，模型调用超过 ttl 也不会丢锁
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
	wait   time.Duration
	renew  time.Duration
}

// NewRedisLocker ttl 为单次续期的有效期，同时也是等待锁的上限
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		retry:  50 * time.Millisecond,
		wait:   ttl,
		renew:  ttl / 3,
	}
}

func lockKey(chatID string) string {
	return "roleplay:chat-lock:" + chatID
}

func (r *RedisLocker) Lock(ctx context.Context, chatID string) (func(), error) {
	key := lockKey(chatID)
	token := uuid.NewString()
	deadline := time.Now().Add(r.wait)

	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("获取会话锁失败: %w", err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}
		select {
		case <-time.After(r.retry):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go r.keepAlive(key, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			// 请求 ctx 可能已取消，释放使用独立的短超时
			releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = unlockScript.Run(releaseCtx, r.client, []string{key}, token).Err()
		})
	}, nil
}

// keepAlive 定期续期，锁已不属于 token 时退出
func (r *RedisLocker) keepAlive(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	if r.renew <= 0 {
		return
	}
	ticker := time.NewTicker(r.renew)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), r.renew)
			n, err := renewScript.Run(ctx, r.client, []string{key}, token, r.ttl.Milliseconds()).Int()
			cancel()
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("会话锁续期失败")
				continue
			}
			if n == 0 {
				log.Warn().Str("key", key).Msg("会话锁已被他人持有，停止续期")
				return
			}
		}
	}
}

// NewRedisClient 解析 URL 并 ping
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	c := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return c, nil
}
