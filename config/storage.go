package config

import "lunaura/pkg/config"

func init() {
	config.Add("storage", func() map[string]interface{} {
		return map[string]interface{}{
			// local 或 oss
			"driver": config.Env("STORAGE_DRIVER", "local"),
			"dir":    config.Env("STORAGE_DIR", "storage"),

			"oss": map[string]interface{}{
				"endpoint":          config.Env("OSS_ENDPOINT", ""),
				"access_key_id":     config.Env("OSS_ACCESS_KEY_ID", ""),
				"access_key_secret": config.Env("OSS_ACCESS_KEY_SECRET", ""),
				"bucket":            config.Env("OSS_BUCKET", ""),
			},
		}
	})

	config.Add("upload", func() map[string]interface{} {
		return map[string]interface{}{
			"min_photos": config.Env("MIN_PHOTOS", 3),
			"max_photos": config.Env("MAX_PHOTOS", 5),
			// 单文件上限，单位 MB
			"max_file_mb": config.Env("UPLOAD_MAX_FILE_MB", 10),
		}
	})
}
