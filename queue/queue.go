package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

const (
	// TypeWelcomeEmail 注册欢迎邮件
	TypeWelcomeEmail = "email:welcome"
	// QueueMail 邮件队列
	QueueMail = "mail"

	welcomeMaxRetry = 5
)

// WelcomePayload 欢迎邮件任务参数
type WelcomePayload struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Mailer 实际发送邮件的一方
type Mailer interface {
	SendWelcomeEmail(toEmail, username string) error
}

// Notifier 注册成功后的通知投递
type Notifier interface {
	NotifyWelcome(ctx context.Context, email, username string) error
}

// NewWelcomeTask 构造欢迎邮件任务
func NewWelcomeTask(email, username string) (*asynq.Task, error) {
	if email == "" {
		return nil, errors.New("邮箱为空")
	}
	payload, err := json.Marshal(WelcomePayload{Email: email, Username: username})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeWelcomeEmail, payload), nil
}

// Client asynq 任务投递
type Client struct {
	client *asynq.Client
}

// NewClient 使用 redis URL 创建客户端
func NewClient(redisURL string) (*Client, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("asynq: parse redis url: %w", err)
	}
	return &Client{client: asynq.NewClient(opt)}, nil
}

// NotifyWelcome 投递到 mail 队列，失败最多重试 5 次
func (c *Client) NotifyWelcome(ctx context.Context, email, username string) error {
	task, err := NewWelcomeTask(email, username)
	if err != nil {
		return err
	}
	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueMail),
		asynq.MaxRetry(welcomeMaxRetry),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		return fmt.Errorf("投递欢迎邮件任务失败: %w", err)
	}
	log.Debug().Str("task_id", info.ID).Str("email", email).Msg("欢迎邮件任务已入队")
	return nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	return c.client.Close()
}

// InlineNotifier 未启用 redis 时在后台 goroutine 中直接发送
type InlineNotifier struct {
	mailer Mailer
}

// NewInlineNotifier 创建进程内通知
func NewInlineNotifier(mailer Mailer) *InlineNotifier {
	return &InlineNotifier{mailer: mailer}
}

func (n *InlineNotifier) NotifyWelcome(_ context.Context, email, username string) error {
	if email == "" {
		return errors.New("邮箱为空")
	}
	go func() {
		if err := n.mailer.SendWelcomeEmail(email, username); err != nil {
			log.Warn().Err(err).Str("email", email).Msg("发送欢迎邮件失败")
		}
	}()
	return nil
}

// HandleWelcomeEmail 消费欢迎邮件任务
func HandleWelcomeEmail(mailer Mailer) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p WelcomePayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			// 载荷损坏重试无意义
			return fmt.Errorf("解析任务参数失败: %v: %w", err, asynq.SkipRetry)
		}
		if err := mailer.SendWelcomeEmail(p.Email, p.Username); err != nil {
			return err
		}
		log.Info().Str("email", p.Email).Msg("欢迎邮件已发送")
		return nil
	}
}

// Worker asynq 消费端
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewWorker 创建消费端，只监听 mail 队列
func NewWorker(redisURL string, mailer Mailer) (*Worker, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("asynq: parse redis url: %w", err)
	}
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: 2,
		Queues:      map[string]int{QueueMail: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error().Err(err).Str("type", task.Type()).Msg("异步任务执行失败")
		}),
	})
	mux := asynq.NewServeMux()
	mux.Handle(TypeWelcomeEmail, HandleWelcomeEmail(mailer))
	return &Worker{server: srv, mux: mux}, nil
}

// Start 非阻塞启动
func (w *Worker) Start() error {
	return w.server.Start(w.mux)
}

// Shutdown 等待进行中的任务完成后退出
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}
