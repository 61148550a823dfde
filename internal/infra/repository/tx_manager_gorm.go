package repository

import (
	"context"
	"database/sql"

	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

// 読み取り専用・REPEATABLE READで実行する。
// 件数と一覧が同じスナップショットを見る。
func (tm *TxManagerGorm) WithinReadTx(ctx context.Context, fn func(s repo.CatalogStore) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		return fn(NewProductGormRepository(tx))
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
}
