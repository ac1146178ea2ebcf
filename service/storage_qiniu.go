package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"roleplay/config"

	"github.com/qiniu/go-sdk/v7/auth/qbox"
	"github.com/qiniu/go-sdk/v7/storage"
)

// QiniuStore 七牛云 Kodo
type QiniuStore struct {
	mac      *qbox.Mac
	bucket   string
	domain   string
	expires  uint64
	uploader *storage.FormUploader
}

// NewQiniuStore 创建七牛云存储
func NewQiniuStore(cfg config.StorageConfig) *QiniuStore {
	return &QiniuStore{
		mac:      qbox.NewMac(cfg.AccessKey, cfg.SecretKey),
		bucket:   cfg.Bucket,
		domain:   cfg.Domain,
		expires:  cfg.UploadExpires,
		uploader: storage.NewFormUploader(&storage.Config{UseHTTPS: true}),
	}
}

// uploadToken 针对 bucket:key 的上传凭证
func (q *QiniuStore) uploadToken(key string) string {
	policy := storage.PutPolicy{
		Scope:   fmt.Sprintf("%s:%s", q.bucket, key),
		Expires: q.expires,
	}
	return policy.UploadToken(q.mac)
}

func (q *QiniuStore) Upload(ctx context.Context, key string, data []byte) (string, error) {
	if q.bucket == "" {
		return "", errors.New("未配置存储空间")
	}
	var ret storage.PutRet
	err := q.uploader.Put(ctx, &ret, q.uploadToken(key), key, bytes.NewReader(data), int64(len(data)), &storage.PutExtra{})
	if err != nil {
		return "", fmt.Errorf("上传 %s 到七牛云失败: %w", key, err)
	}
	return publicURL(q.domain, key)
}
