// Package database 数据库操作
package database

import (
	"database/sql"
	"time"

	"lunaura/pkg/logger"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB 对象
var DB *gorm.DB
var SQLDB *sql.DB

// Connect 连接数据库
func Connect(dbConfig gorm.Dialector, _logger gormlogger.Interface) {
	// 使用 gorm.Open 连接数据库
	var err error
	DB, err = gorm.Open(dbConfig, &gorm.Config{
		Logger: _logger,
		// 时间统一按 UTC 写入，认领过期判断依赖这一点
		NowFunc: NowUTC,
		// 唯一索引冲突统一为 gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	// 处理错误
	if err != nil {
		logger.ErrorString("数据库", "连接", err.Error())
		panic(err)
	}

	// 获取底层的 sqlDB
	SQLDB, err = DB.DB()
	if err != nil {
		logger.ErrorString("数据库", "获取底层SQL", err.Error())
		panic(err)
	}
}

// NowUTC gorm 使用的时间函数
func NowUTC() time.Time {
	return time.Now().UTC()
}

// AutoMigrate 自动迁移所有数据表
func AutoMigrate(tables []interface{}) error {
	return DB.AutoMigrate(tables...)
}

// Ping 检查数据库连接
func Ping() error {
	if SQLDB == nil {
		return sql.ErrConnDone
	}
	return SQLDB.Ping()
}
