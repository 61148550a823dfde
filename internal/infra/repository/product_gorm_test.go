package repository

import (
	"errors"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/pkg/query"
	repo "storefront/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// 接続せずにSQLだけ組み立てるDB
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=app password=app dbname=app sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestWhereScope_CountUsesPredicate(t *testing.T) {
	db := newDryRunDB(t)
	cond := query.And(query.Eq(model.ColIsLive, true), query.Gt(model.ColStock, int64(5)))

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var n int64
		return tx.Model(&model.Product{}).Scopes(whereScope(cond)).Count(&n)
	})

	assert.Contains(t, sql, "count(*)")
	assert.Contains(t, sql, "LEFT JOIN categories ON categories.id = products.category_id")
	assert.Contains(t, sql, "products.is_live = true")
	assert.Contains(t, sql, "products.stock > 5")
	assert.Contains(t, sql, `"products"."deleted_at" IS NULL`)
	assert.NotContains(t, sql, "LIMIT")
}

func TestWhereScope_AllHasNoWhereFromPredicate(t *testing.T) {
	db := newDryRunDB(t)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var n int64
		return tx.Model(&model.Product{}).Scopes(whereScope(query.All())).Count(&n)
	})

	assert.NotContains(t, sql, "TRUE")
}

func TestOrderedIDs_SQLShape(t *testing.T) {
	db := newDryRunDB(t)
	cond := query.And(query.Eq(model.ColIsLive, true), query.IsNotNull(model.ColDiscountedPrice))
	orderBy := []query.Order{
		{Expr: repo.EffectivePriceExpr, Dir: query.Desc},
		{Expr: model.ColID, Dir: query.Asc},
	}

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var ids []int64
		return tx.Model(&model.Product{}).
			Scopes(whereScope(cond), pageScope(orderBy, 20, 40)).
			Pluck(model.ColID, &ids)
	})

	assert.Contains(t, sql, "products.discounted_price IS NOT NULL")
	assert.Contains(t, sql, "ORDER BY COALESCE(products.discounted_price, products.original_price) DESC")
	assert.Contains(t, sql, "products.id ASC")
	assert.Contains(t, sql, "LIMIT 20")
	assert.Contains(t, sql, "OFFSET 40")
}

func TestPageScope_FirstPageHasNoOffset(t *testing.T) {
	db := newDryRunDB(t)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var ps []model.Product
		return tx.Model(&model.Product{}).
			Scopes(pageScope([]query.Order{{Expr: model.ColCreatedAt, Dir: query.Desc}}, 10, 0)).
			Find(&ps)
	})

	assert.Contains(t, sql, "ORDER BY products.created_at DESC")
	assert.Contains(t, sql, "LIMIT 10")
	assert.NotContains(t, sql, "OFFSET")
}

func TestWrapDBError_KeepsSQLState(t *testing.T) {
	base := &pgconn.PgError{Code: "57014", Message: "canceling statement due to statement timeout"}

	err := wrapDBError("count products", base)

	assert.Contains(t, err.Error(), "count products: sqlstate 57014")
	assert.True(t, errors.Is(err, base))
}

func TestWrapDBError_Plain(t *testing.T) {
	base := errors.New("conn refused")

	err := wrapDBError("find products", base)

	assert.Equal(t, "find products: conn refused", err.Error())
}
