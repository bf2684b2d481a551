package bootstrap

import (
	"lunaura/pkg/config"
	"lunaura/pkg/logger"
	"lunaura/pkg/storage"
)

// SetupStorage 按 storage.driver 选择本地磁盘或阿里云 OSS
func SetupStorage() (storage.Store, error) {
	switch config.GetString("storage.driver") {
	case "oss":
		logger.InfoString("Storage", "Setup", "使用阿里云 OSS 存储上传文件")
		store, err := storage.NewOSSStore(storage.OSSConfig{
			Endpoint:        config.GetString("storage.oss.endpoint"),
			AccessKeyID:     config.GetString("storage.oss.access_key_id"),
			AccessKeySecret: config.GetString("storage.oss.access_key_secret"),
			BucketName:      config.GetString("storage.oss.bucket"),
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		logger.InfoString("Storage", "Setup", "使用本地磁盘存储上传文件: "+config.GetString("storage.dir"))
		store, err := storage.NewLocalStore(config.GetString("storage.dir"))
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}
