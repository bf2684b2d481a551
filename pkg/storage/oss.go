package storage

import (
	"bytes"
	"context"
	"io"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"
)

// OSSConfig 阿里云 OSS 配置
type OSSConfig struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	BucketName      string
}

// OSSStore 阿里云 OSS 存储
type OSSStore struct {
	bucket *oss.Bucket
}

// NewOSSStore 创建 OSS 存储
func NewOSSStore(cfg OSSConfig) (*OSSStore, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, errors.Wrap(err, "create oss client")
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, errors.Wrap(err, "get oss bucket")
	}

	return &OSSStore{bucket: bucket}, nil
}

// Put 上传对象
func (s *OSSStore) Put(ctx context.Context, key string, data []byte) error {
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	err = s.bucket.PutObject(k, bytes.NewReader(data), oss.ContentType(ContentType(k)), oss.WithContext(ctx))
	return errors.Wrap(err, "oss put object")
}

// Get 下载对象
func (s *OSSStore) Get(ctx context.Context, key string) ([]byte, error) {
	k, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	body, err := s.bucket.GetObject(k, oss.WithContext(ctx))
	if err != nil {
		var svcErr oss.ServiceError
		if errors.As(err, &svcErr) && svcErr.StatusCode == 404 {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "oss get object")
	}
	defer body.Close()
	return io.ReadAll(body)
}

// Delete 删除对象
func (s *OSSStore) Delete(ctx context.Context, key string) error {
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	return errors.Wrap(s.bucket.DeleteObject(k, oss.WithContext(ctx)), "oss delete object")
}
