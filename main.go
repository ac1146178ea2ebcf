package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"roleplay/config"
	"roleplay/database"
	"roleplay/logger"
	"roleplay/middleware"
	"roleplay/queue"
	"roleplay/router"
	"roleplay/service"

	"github.com/rs/zerolog/log"
)

// @title 角色扮演对话 API
// @version 1.0
// @description 与 AI 角色进行多轮对话的后端，支持注册登录、角色管理、会话与消息、语音识别与合成
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const version = "v1.0.0"

var (
	configFile  string
	port        string
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "外部配置文件路径（可选）")
	flag.StringVar(&configFile, "c", "", "外部配置文件路径（简写）")
	flag.StringVar(&port, "port", "", "监听端口，如: 8080 或 :8080")
	flag.StringVar(&port, "p", "", "监听端口（简写）")
	flag.BoolVar(&showVersion, "version", false, "显示版本信息")
	flag.BoolVar(&showVersion, "v", false, "显示版本信息（简写）")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println("roleplay", version)
		return
	}

	// 加载配置（内置配置 + 可选的外部配置覆盖）
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("加载配置失败")
	}
	logger.Init(cfg.Server.Mode, cfg.Log.Level, cfg.Log.Format)

	// 命令行参数覆盖端口配置
	if port != "" {
		// 自动添加冒号前缀
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
		log.Info().Str("port", port).Msg("命令行指定端口")
	}

	// 打印配置信息
	config.PrintConfig()

	// 初始化数据库
	if err := database.Init(cfg); err != nil {
		log.Fatal().Err(err).Msg("数据库初始化失败")
	}

	// 初始化 JWT
	middleware.InitJWT(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	completer, err := service.NewChatCompleter(ctx, cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("初始化大模型客户端失败")
	}
	store, err := service.NewObjectStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("初始化对象存储失败")
	}

	var (
		locker   service.ChatLocker
		notifier queue.Notifier
		worker   *queue.Worker
	)
	mailer := service.NewEmailService(&cfg.Email)

	if cfg.Redis.Enabled {
		redisClient, err := service.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("连接 Redis 失败")
		}
		defer redisClient.Close()
		locker = service.NewRedisLocker(redisClient, 2*time.Minute)

		if mailer.Enabled() {
			client, err := queue.NewClient(cfg.Redis.URL)
			if err != nil {
				log.Fatal().Err(err).Msg("初始化任务队列失败")
			}
			defer client.Close()
			notifier = client

			worker, err = queue.NewWorker(cfg.Redis.URL, mailer)
			if err != nil {
				log.Fatal().Err(err).Msg("初始化任务消费者失败")
			}
			if err := worker.Start(); err != nil {
				log.Fatal().Err(err).Msg("启动任务消费者失败")
			}
		}
	} else {
		locker = service.NewMemoryLocker()
		if mailer.Enabled() {
			notifier = queue.NewInlineNotifier(mailer)
		}
	}

	gateway := service.NewChatGateway(completer, cfg.LLM.FallbackReply)
	deps := router.Deps{
		Conversations: service.NewConversationService(database.DB, gateway, locker),
		Voice:         service.NewVoiceService(cfg.LLM, cfg.Voice, store),
		Notifier:      notifier,
	}

	// 设置路由
	r := router.SetupRouter(cfg, deps)
	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("swagger", fmt.Sprintf("http://localhost%s/swagger/index.html", cfg.Server.Port)).
			Str("api", fmt.Sprintf("http://localhost%s/api/v1/", cfg.Server.Port)).
			Msg("角色扮演对话服务已启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("服务器启动失败")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("正在关闭服务...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("服务关闭异常")
	}
	if worker != nil {
		worker.Shutdown()
	}
	if closer, ok := completer.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}
