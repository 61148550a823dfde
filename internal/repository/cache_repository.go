package repository

import (
	"context"
	"fmt"
	"time"
)

// キャッシュ無効化に使うタグ
const (
	TagProducts         = "products"
	TagFeaturedProducts = "featured-products"
)

// タグ付きキャッシュの約束。値はJSONで保存する。
type TaggedCache interface {
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, v interface{}, ttl time.Duration, tags ...string) error
	InvalidateTags(ctx context.Context, tags ...string) error
}

// 商品1件ごとのタグ
func ProductTag(id int64) string {
	return fmt.Sprintf("product:%d", id)
}
