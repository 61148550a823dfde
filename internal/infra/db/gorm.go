package db

import (
	"context"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(16)
	sqlDB.SetMaxIdleConns(4)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return gdb, nil
}

// カタログ系のテーブルを作成
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&model.Category{},
		&model.Product{},
		&model.ProductImage{},
		&model.PackItem{},
		&model.AuditLog{},
	)
}

// /healthz 用の疎通確認
type HealthCheck struct {
	gdb *gorm.DB
}

func NewHealthCheck(gdb *gorm.DB) *HealthCheck {
	return &HealthCheck{gdb: gdb}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	sqlDB, err := h.gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
