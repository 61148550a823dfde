package usecase_test

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/pkg/query"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

// =====================
// 商品の組み立て
// =====================

func price(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func discount(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

func liveProduct(id int64, name string) model.Product {
	return model.Product{
		ID:            id,
		Name:          name,
		OriginalPrice: price("10"),
		Stock:         10,
		IsLive:        true,
		CategoryID:    1,
		Category:      model.Category{ID: 1, Name: "Misc", Slug: "misc"},
		CreatedAt:     testNow.Add(-time.Duration(id) * time.Hour),
		UpdatedAt:     testNow.Add(-time.Duration(id) * time.Hour),
	}
}

func ids(ps []model.MappedProduct) []int64 {
	out := make([]int64, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

// =====================
// インメモリStore
// =====================

type memStore struct {
	products   []model.Product
	categories []model.Category

	// 2段目の取得までに消えた行
	vanished map[int64]bool

	failCount     error
	failFindMany  error
	failOrdered   error
	failFindByIDs error

	calls []string
}

func (s *memStore) filter(cond query.Condition) []model.Product {
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if cond.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

func (s *memStore) page(cond query.Condition, orderBy []query.Order, limit, offset int) []model.Product {
	rows := s.filter(cond)
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j], orderBy) })
	if offset >= len(rows) {
		return []model.Product{}
	}
	rows = rows[offset:]
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

func less(a, b model.Product, orderBy []query.Order) bool {
	for _, o := range orderBy {
		c := compareBy(a, b, o.Expr)
		if c == 0 {
			continue
		}
		if o.Dir == query.Desc {
			return c > 0
		}
		return c < 0
	}
	return false
}

func compareBy(a, b model.Product, expr string) int {
	switch expr {
	case repo.EffectivePriceExpr:
		return a.EffectivePrice().Cmp(b.EffectivePrice())
	case model.ColCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case model.ColIsFeatured:
		switch {
		case a.IsFeatured == b.IsFeatured:
			return 0
		case a.IsFeatured:
			return 1
		}
		return -1
	case model.ColID:
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
	}
	return 0
}

func (s *memStore) Count(ctx context.Context, cond query.Condition) (int64, error) {
	s.calls = append(s.calls, "Count")
	if s.failCount != nil {
		return 0, s.failCount
	}
	return int64(len(s.filter(cond))), nil
}

func (s *memStore) FindMany(ctx context.Context, cond query.Condition, orderBy []query.Order, limit, offset int) ([]model.Product, error) {
	s.calls = append(s.calls, "FindMany")
	if s.failFindMany != nil {
		return nil, s.failFindMany
	}
	return s.page(cond, orderBy, limit, offset), nil
}

// 順番を保証しないことを確かめるため、逆順で返す
func (s *memStore) FindManyByID(ctx context.Context, idList []int64) ([]model.Product, error) {
	s.calls = append(s.calls, "FindManyByID")
	if s.failFindByIDs != nil {
		return nil, s.failFindByIDs
	}
	want := make(map[int64]bool, len(idList))
	for _, id := range idList {
		want[id] = true
	}
	out := []model.Product{}
	for i := len(s.products) - 1; i >= 0; i-- {
		p := s.products[i]
		if want[p.ID] && !s.vanished[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memStore) OrderedIDs(ctx context.Context, cond query.Condition, orderBy []query.Order, limit, offset int) ([]int64, error) {
	s.calls = append(s.calls, "OrderedIDs")
	if s.failOrdered != nil {
		return nil, s.failOrdered
	}
	rows := s.page(cond, orderBy, limit, offset)
	out := make([]int64, 0, len(rows))
	for _, p := range rows {
		out = append(out, p.ID)
	}
	return out, nil
}

func (s *memStore) FindByID(ctx context.Context, id int64) (model.Product, error) {
	s.calls = append(s.calls, "FindByID")
	if s.failFindMany != nil {
		return model.Product{}, s.failFindMany
	}
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Product{}, repo.ErrNotFound
}

func (s *memStore) FindCategoryBySlug(ctx context.Context, slug string) (model.Category, error) {
	s.calls = append(s.calls, "FindCategoryBySlug")
	for _, c := range s.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return model.Category{}, repo.ErrNotFound
}

// 同じStoreをそのまま渡すTx
type memTx struct {
	store *memStore
	runs  int
}

func (t *memTx) WithinReadTx(ctx context.Context, fn func(s repo.CatalogStore) error) error {
	t.runs++
	return fn(t.store)
}

// =====================
// Mocks
// =====================

type CatalogStoreMock struct{ mock.Mock }

func (m *CatalogStoreMock) Count(ctx context.Context, cond query.Condition) (int64, error) {
	args := m.Called(ctx, cond)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CatalogStoreMock) FindMany(ctx context.Context, cond query.Condition, orderBy []query.Order, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, cond, orderBy, limit, offset)
	rows, _ := args.Get(0).([]model.Product)
	return rows, args.Error(1)
}

func (m *CatalogStoreMock) FindManyByID(ctx context.Context, idList []int64) ([]model.Product, error) {
	args := m.Called(ctx, idList)
	rows, _ := args.Get(0).([]model.Product)
	return rows, args.Error(1)
}

func (m *CatalogStoreMock) OrderedIDs(ctx context.Context, cond query.Condition, orderBy []query.Order, limit, offset int) ([]int64, error) {
	args := m.Called(ctx, cond, orderBy, limit, offset)
	out, _ := args.Get(0).([]int64)
	return out, args.Error(1)
}

func (m *CatalogStoreMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *CatalogStoreMock) FindCategoryBySlug(ctx context.Context, slug string) (model.Category, error) {
	args := m.Called(ctx, slug)
	c, _ := args.Get(0).(model.Category)
	return c, args.Error(1)
}

type mockTx struct{ store repo.CatalogStore }

func (t mockTx) WithinReadTx(ctx context.Context, fn func(s repo.CatalogStore) error) error {
	return fn(t.store)
}

type RateLimiterMock struct{ mock.Mock }

func (m *RateLimiterMock) Check(ctx context.Context, key string, window time.Duration, maxCalls int) (repo.RateDecision, error) {
	args := m.Called(ctx, key, window, maxCalls)
	d, _ := args.Get(0).(repo.RateDecision)
	return d, args.Error(1)
}

type TaggedCacheMock struct{ mock.Mock }

func (m *TaggedCacheMock) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	args := m.Called(ctx, key, dst)
	if fill, ok := args.Get(2).(func(interface{})); ok && fill != nil {
		fill(dst)
	}
	return args.Bool(0), args.Error(1)
}

func (m *TaggedCacheMock) Set(ctx context.Context, key string, v interface{}, ttl time.Duration, tags ...string) error {
	return m.Called(ctx, key, v, ttl, tags).Error(0)
}

func (m *TaggedCacheMock) InvalidateTags(ctx context.Context, tags ...string) error {
	return m.Called(ctx, tags).Error(0)
}
