package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain/model"
	"storefront/internal/pkg/query"
	repo "storefront/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const joinCategories = "LEFT JOIN " + model.CategoryTable + " ON " + model.CategoryTable + ".id = " + model.ColCategoryID

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 条件をWHEREに展開する。検索でカテゴリ名を見るので常にcategoriesを結合する。
func whereScope(cond query.Condition) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		tx = tx.Joins(joinCategories)
		if query.IsAll(cond) {
			return tx
		}
		sql, args := cond.SQL()
		return tx.Where(sql, args...)
	}
}

// 並び順とページング
func pageScope(orderBy []query.Order, limit, offset int) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		for _, o := range orderBy {
			tx = tx.Order(o.String())
		}
		if limit > 0 {
			tx = tx.Limit(limit)
		}
		if offset > 0 {
			tx = tx.Offset(offset)
		}
		return tx
	}
}

func (r *ProductGormRepository) Count(ctx context.Context, cond query.Condition) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Scopes(whereScope(cond)).
		Count(&total).Error
	if err != nil {
		return 0, wrapDBError("count products", err)
	}
	return total, nil
}

func (r *ProductGormRepository) FindMany(ctx context.Context, cond query.Condition, orderBy []query.Order, limit, offset int) ([]model.Product, error) {
	var products []model.Product
	err := withRelations(r.db.WithContext(ctx)).
		Model(&model.Product{}).
		Select(model.ProductTable + ".*").
		Scopes(whereScope(cond), pageScope(orderBy, limit, offset)).
		Find(&products).Error
	if err != nil {
		return []model.Product{}, wrapDBError("find products", err)
	}
	return products, nil
}

// 順番は保証しない。呼び出し側で並べ直すこと。
func (r *ProductGormRepository) FindManyByID(ctx context.Context, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	var products []model.Product
	err := withRelations(r.db.WithContext(ctx)).
		Where(model.ColID+" IN ?", ids).
		Find(&products).Error
	if err != nil {
		return []model.Product{}, wrapDBError("find products by id", err)
	}
	return products, nil
}

func (r *ProductGormRepository) OrderedIDs(ctx context.Context, cond query.Condition, orderBy []query.Order, limit, offset int) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Scopes(whereScope(cond), pageScope(orderBy, limit, offset)).
		Pluck(model.ColID, &ids).Error
	if err != nil {
		return []int64{}, wrapDBError("ordered product ids", err)
	}
	return ids, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := withRelations(r.db.WithContext(ctx)).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, wrapDBError("find product", err)
	}
	return p, nil
}

// slugでカテゴリを取得
func (r *ProductGormRepository) FindCategoryBySlug(ctx context.Context, slug string) (model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Category{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Category{}, wrapDBError("find category", err)
	}
	return c, nil
}

func withRelations(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Category").Preload("Images").Preload("PackItems")
}

// postgresのエラーならSQLSTATEを残す
func wrapDBError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: sqlstate %s: %w", op, pgErr.Code, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
