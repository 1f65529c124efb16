package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"schoolfest/backend/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate 按驱动准备表结构
// PostgreSQL 执行内嵌 SQL 迁移（含 CHECK 约束等 AutoMigrate 不生成的定义）；
// SQLite 用于本地与测试，直接按模型 AutoMigrate
func Migrate(db *gorm.DB, driver string, models []interface{}, logger *zap.Logger) error {
	switch driver {
	case config.DriverPostgres:
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
		}
		return RunMigrations(sqlDB, logger)
	case config.DriverSQLite:
		if err := db.AutoMigrate(models...); err != nil {
			return fmt.Errorf("SQLite 建表失败: %w", err)
		}
		logger.Info("SQLite 表结构已同步", zap.Int("models", len(models)))
		return nil
	default:
		return fmt.Errorf("不支持的数据库驱动: %s", driver)
	}
}

// RunMigrations 执行 PostgreSQL 数据库迁移
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("加载迁移文件失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: "schoolfest_schema_migrations"})
	if err != nil {
		return fmt.Errorf("创建迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("初始化迁移实例失败: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("执行迁移失败: %w", err)
	}

	version, dirty, _ := m.Version()
	if dirty {
		return fmt.Errorf("数据库迁移处于 dirty 状态 (version=%d)，需人工修复", version)
	}
	logger.Info("数据库迁移完成", zap.Uint("version", version))

	return nil
}
