// Package storage 用户上传文件的存储，支持本地磁盘和阿里云 OSS
package storage

import (
	"context"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotFound 文件不存在
var ErrNotFound = errors.New("storage: object not found")

// Store 文件存储接口，key 为逻辑路径，如 uploads/<reading_id>/<uuid>.jpg
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// ContentType 根据扩展名推断 MIME 类型
func ContentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// cleanKey 去掉前导斜杠并拒绝目录穿越
func cleanKey(key string) (string, error) {
	k := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	k = strings.TrimPrefix(k, "/")
	if k == "" || k == "." {
		return "", errors.Errorf("storage: invalid key %q", key)
	}
	return k, nil
}

// File 待保存的上传文件
type File struct {
	Name string
	Data []byte
}
