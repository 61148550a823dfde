package kafka

import (
	"context"
	"encoding/json"

	"storefront/internal/usecase"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const TopicProductChanged = "catalog.product.changed"

type productChangedHandler interface {
	HandleProductChanged(ctx context.Context, ev usecase.ProductChangedEvent) error
}

// 商品変更イベントをキャッシュ無効化に流す。
// 壊れたメッセージはログだけ残してコミットする（再試行しても直らない）。
func ProductChangedHandler(inv productChangedHandler, log *zap.Logger) Handler {
	return func(ctx context.Context, m kafka.Message) error {
		var ev usecase.ProductChangedEvent
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			log.Error("drop malformed product event", zap.Int64("offset", m.Offset), zap.Error(err))
			return nil
		}
		return inv.HandleProductChanged(ctx, ev)
	}
}
