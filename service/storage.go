package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"roleplay/config"
)

// ObjectStore 对象存储：上传后返回可公网访问的 URL
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte) (string, error)
}

// NewObjectStore 按配置选择存储提供方
func NewObjectStore(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Provider {
	case "qiniu", "":
		return NewQiniuStore(cfg), nil
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("不支持的对象存储: %s", cfg.Provider)
	}
}

// publicURL 公网访问地址 https://{domain}/{key}
func publicURL(domain, key string) (string, error) {
	domain = strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(domain, "https://"), "http://"), "/")
	if domain == "" {
		return "", errors.New("未配置存储访问域名")
	}
	return fmt.Sprintf("https://%s/%s", domain, key), nil
}
