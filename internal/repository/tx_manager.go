package repository

import "context"

// 件数と一覧を同じスナップショットで読むための約束。
// UsecaseからTxの開始/commit/rollbackを隠す。
type CatalogTxManager interface {
	WithinReadTx(ctx context.Context, fn func(s CatalogStore) error) error
}
