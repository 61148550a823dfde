package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"storefront/internal/domain/model"
	"storefront/internal/pkg/query"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

const (
	MinSearchQueryLen  = 2
	DefaultSearchLimit = 8
	MaxSearchLimit     = 24
	minCandidatePool   = 20
)

// 加点表
const (
	scoreCategoryExact = 100
	scoreNameExact     = 150
	scoreNameWord      = 80
	scoreNamePrefix    = 40
	scoreNameContains  = 20
	scoreDescContains  = 5
	scoreFeatured      = 10
)

const (
	msgSearchUnavailable = "Search is temporarily unavailable. Please try again."
	msgSearchRateLimited = "Too many searches. Please try again later."
)

// 検索の入力DTO。UserIDが0ならIPでレート制限する。
type SearchInput struct {
	Query    string
	Limit    int
	UserID   int64
	ClientIP string
}

type SearchUsecase struct {
	store    repo.CatalogStore
	limiter  repo.RateLimiter
	clock    Clock
	log      *zap.Logger
	window   time.Duration
	maxCalls int
}

// DI
func NewSearchUsecase(store repo.CatalogStore, limiter repo.RateLimiter, clock Clock, log *zap.Logger, window time.Duration, maxCalls int) *SearchUsecase {
	return &SearchUsecase{
		store:    store,
		limiter:  limiter,
		clock:    clock,
		log:      log,
		window:   window,
		maxCalls: maxCalls,
	}
}

// 自由入力の検索。候補を多めに取ってきて、メモリ上で点数順に並べ替える。
func (u *SearchUsecase) Search(ctx context.Context, in SearchInput) model.SearchResult {
	q := normalizeQuery(in.Query)
	if utf8.RuneCountInString(q) < MinSearchQueryLen {
		return model.SearchResult{Success: true, Data: []model.MappedProduct{}}
	}

	if msg, ok := u.allow(ctx, in); !ok {
		return model.SearchResult{Success: false, Error: msg}
	}

	limit := in.Limit
	if limit < 1 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	pool, err := u.store.FindMany(ctx, candidateCondition(q), SortNewest.orderBy(), candidatePoolSize(limit), 0)
	if err != nil {
		u.log.Error("search candidate fetch failed", zap.String("query", q), zap.Error(err))
		return model.SearchResult{Success: false, Error: msgSearchUnavailable}
	}

	ranked := RankCandidates(pool, q, limit)
	return model.SearchResult{Success: true, Data: model.MapProducts(ranked, u.clock.Now())}
}

// レート制限。limiter自体が落ちている場合は通す。
func (u *SearchUsecase) allow(ctx context.Context, in SearchInput) (string, bool) {
	if u.limiter == nil {
		return "", true
	}
	key := searchRateKey(in)
	d, err := u.limiter.Check(ctx, key, u.window, u.maxCalls)
	if err != nil {
		u.log.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
		return "", true
	}
	if d.Allowed {
		return "", true
	}

	u.log.Info("search rate limited", zap.String("key", key), zap.Duration("retry_after", d.RetryAfter))
	if d.RetryMessage != "" {
		return d.RetryMessage, false
	}
	return msgSearchRateLimited, false
}

func searchRateKey(in SearchInput) string {
	if in.UserID > 0 {
		return fmt.Sprintf("search:user:%d", in.UserID)
	}
	ip := strings.TrimSpace(in.ClientIP)
	if ip == "" {
		ip = "unknown"
	}
	return "search:ip:" + ip
}

func normalizeQuery(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// 末尾のsを1つだけ落とす簡易的な単数形
func singularize(q string) string {
	return strings.TrimSuffix(q, "s")
}

func candidatePoolSize(limit int) int {
	if 2*limit > minCandidatePool {
		return 2 * limit
	}
	return minCandidatePool
}

// 公開中で、商品名・説明・カテゴリ名・カテゴリslugのどれかに含む
func candidateCondition(q string) query.Condition {
	return query.And(
		liveCondition(),
		query.Or(
			query.Contains(model.ColName, q),
			query.Contains(model.ColDescription, q),
			query.Contains(model.ColCategoryName, q),
			query.Contains(model.ColCategorySlug, q),
		),
	)
}

type scoredProduct struct {
	product model.Product
	score   int
}

// 候補を点数の高い順に並べて上位limit件を返す。
// 同点は候補の並び順を保つ。
func RankCandidates(pool []model.Product, q string, limit int) []model.Product {
	q = normalizeQuery(q)
	singular := singularize(q)

	scored := make([]scoredProduct, 0, len(pool))
	for _, p := range pool {
		scored = append(scored, scoredProduct{product: p, score: ScoreProduct(p, q, singular)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	out := make([]model.Product, 0, len(scored))
	for _, s := range scored {
		out = append(out, s.product)
	}
	return out
}

// 加点は独立していて重複して加算される。
// 単語一致は商品名を大文字小文字そのままで空白区切りにして比べる。
func ScoreProduct(p model.Product, q, singular string) int {
	score := 0

	catName := strings.ToLower(p.Category.Name)
	catSlug := strings.ToLower(p.Category.Slug)
	if catName == q || catName == singular || catSlug == q || catSlug == singular {
		score += scoreCategoryExact
	}

	name := strings.ToLower(p.Name)
	if name == q {
		score += scoreNameExact
	}
	for _, w := range strings.Fields(p.Name) {
		if w == q || w == singular {
			score += scoreNameWord
			break
		}
	}
	if strings.HasPrefix(name, q) {
		score += scoreNamePrefix
	}
	if strings.Contains(name, q) {
		score += scoreNameContains
	}
	if strings.Contains(strings.ToLower(p.Description), q) {
		score += scoreDescContains
	}
	if p.IsFeatured {
		score += scoreFeatured
	}
	return score
}
