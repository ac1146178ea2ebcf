package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Voice     VoiceConfig     `mapstructure:"voice"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Email     EmailConfig     `mapstructure:"email"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        string   `mapstructure:"port"`
	Mode        string   `mapstructure:"mode"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // mysql | postgres | sqlite
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"` // sqlite 文件路径
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret        string        `mapstructure:"secret"`
	ExpireMinutes int           `mapstructure:"expire_minutes"`
	ExpireTime    time.Duration `mapstructure:"-"`
}

// LLMConfig 大模型配置（OpenAI 兼容接口或 Gemini）
type LLMConfig struct {
	Provider       string  `mapstructure:"provider"` // openai | gemini
	BaseURL        string  `mapstructure:"base_url"`
	APIKey         string  `mapstructure:"api_key"`
	ChatModel      string  `mapstructure:"chat_model"`
	Temperature    float32 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	FallbackReply  string  `mapstructure:"fallback_reply"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// Timeout 请求超时，未配置时为 0（不设超时）
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// VoiceConfig 语音识别/合成配置
type VoiceConfig struct {
	ASREncoding string  `mapstructure:"asr_encoding"`
	ASRLanguage string  `mapstructure:"asr_language"`
	TTSVoice    string  `mapstructure:"tts_voice"`
	TTSEncoding string  `mapstructure:"tts_encoding"`
	TTSSpeed    float64 `mapstructure:"tts_speed"`
}

// StorageConfig 对象存储配置
type StorageConfig struct {
	Provider      string `mapstructure:"provider"` // qiniu | s3
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	Bucket        string `mapstructure:"bucket"`
	Domain        string `mapstructure:"domain"`
	Region        string `mapstructure:"region"`
	Endpoint      string `mapstructure:"endpoint"`
	UploadExpires uint64 `mapstructure:"upload_expires"`
}

// RedisConfig Redis 配置（聊天锁 + 异步任务）
type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// EmailConfig 邮件配置
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	LoginAttempts      int     `mapstructure:"login_attempts"`
	LoginWindowSeconds int     `mapstructure:"login_window_seconds"`
	InferenceRPS       float64 `mapstructure:"inference_rps"`
	InferenceBurst     int     `mapstructure:"inference_burst"`
}

var (
	// GlobalConfig 全局配置实例
	GlobalConfig *Config
)

// LoadConfig 加载配置
// 优先级: 环境变量 > .env > 外部配置文件 > 嵌入的默认配置
// configPath: 可选的外部配置文件路径
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// 1. 首先加载嵌入的默认配置
	if err := v.ReadConfig(bytes.NewReader(DefaultConfigYAML)); err != nil {
		return nil, fmt.Errorf("读取内置配置失败: %w", err)
	}

	// 2. 尝试加载外部配置文件（可选，用于覆盖默认配置）
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.MergeInConfig(); err != nil {
			log.Warn().Err(err).Str("path", configPath).Msg("无法读取指定配置文件")
		} else {
			log.Info().Str("path", configPath).Msg("已合并外部配置文件")
		}
	} else {
		externalViper := viper.New()
		externalViper.SetConfigName("config")
		externalViper.SetConfigType("yaml")
		externalViper.AddConfigPath(".")
		externalViper.AddConfigPath("./config")
		externalViper.AddConfigPath("/etc/roleplay")
		externalViper.AddConfigPath("$HOME/.roleplay")

		if err := externalViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(externalViper.AllSettings()); err != nil {
				log.Warn().Err(err).Msg("合并外部配置失败")
			} else {
				log.Info().Str("path", externalViper.ConfigFileUsed()).Msg("已合并外部配置文件")
			}
		}
	}

	// 3. .env 文件（不覆盖已存在的环境变量）
	if err := godotenv.Load(); err == nil {
		log.Info().Msg("已加载 .env 文件")
	}

	// 4. 环境变量覆盖，如 ROLEPLAY_LLM_API_KEY
	v.SetEnvPrefix("ROLEPLAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if cfg.JWT.ExpireMinutes <= 0 {
		cfg.JWT.ExpireMinutes = 30
	}
	cfg.JWT.ExpireTime = time.Duration(cfg.JWT.ExpireMinutes) * time.Minute

	if cfg.Storage.UploadExpires == 0 {
		cfg.Storage.UploadExpires = 3600
	}

	GlobalConfig = &cfg

	return &cfg, nil
}

// MustLoadConfig 加载配置，失败则 panic
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("加载配置失败: %v", err))
	}
	return cfg
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	if GlobalConfig == nil {
		panic("配置未初始化，请先调用 LoadConfig")
	}
	return GlobalConfig
}

// SafeErrorMessage 生产环境下不向客户端暴露内部错误详情
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if GlobalConfig != nil && GlobalConfig.Server.Mode == "release" {
		return fallback
	}
	return err.Error()
}

// PrintConfig 打印当前配置（隐藏敏感信息）
func PrintConfig() {
	if GlobalConfig == nil {
		return
	}
	log.Info().
		Str("port", GlobalConfig.Server.Port).
		Str("mode", GlobalConfig.Server.Mode).
		Str("db_driver", GlobalConfig.Database.Driver).
		Str("db_name", GlobalConfig.Database.DBName).
		Str("llm_provider", GlobalConfig.LLM.Provider).
		Str("llm_model", GlobalConfig.LLM.ChatModel).
		Str("storage", GlobalConfig.Storage.Provider).
		Bool("redis", GlobalConfig.Redis.Enabled).
		Bool("email", GlobalConfig.Email.Enabled).
		Msg("当前配置")
}
