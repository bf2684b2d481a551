// Package testutil 测试用的数据库、数据构造和替身
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"lunaura/pkg/database"
	"lunaura/pkg/database/migrations"
)

// SetupTestDB 创建内存 SQLite 数据库并迁移所有表
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc:        database.NowUTC,
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库每个连接都是独立的数据库
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(migrations.RegisterTables()...))
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}
