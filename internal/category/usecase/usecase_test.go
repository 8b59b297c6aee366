package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-storefront-service/internal/category"
	"github.com/fekuna/omnipos-storefront-service/internal/category/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/platform/cache"
	"github.com/fekuna/omnipos-storefront-service/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeRepo struct {
	byID    map[string]model.Category
	all     []model.Category
	err     error
	lastArg *dto.CategoryFilters
	calls   int
}

func (r *fakeRepo) FindByID(ctx context.Context, id string) (*model.Category, error) {
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *fakeRepo) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, error) {
	r.lastArg = f
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.all, nil
}

func newUseCase(repo category.Repository) category.UseCase {
	return NewCategoryUseCase(repo, nil, 0, logger.Wrap(zap.NewNop()))
}

func TestGetCategory(t *testing.T) {
	repo := &fakeRepo{byID: map[string]model.Category{"1": {ID: "1", Name: "Games"}}}
	uc := newUseCase(repo)

	c, err := uc.GetCategory(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Games", c.Name)

	_, err = uc.GetCategory(context.Background(), "2")
	assert.ErrorIs(t, err, category.ErrCategoryNotFound)

	repo.err = errors.New("db down")
	_, err = uc.GetCategory(context.Background(), "1")
	assert.EqualError(t, err, "db down")
}

func TestListCategories_WithoutCache(t *testing.T) {
	repo := &fakeRepo{all: []model.Category{{ID: "1", Name: "Games"}}}
	uc := newUseCase(repo)

	root := ""
	filters := &dto.CategoryFilters{ParentID: &root}
	got, err := uc.ListCategories(context.Background(), filters)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Same(t, filters, repo.lastArg)

	repo.err = errors.New("db down")
	_, err = uc.ListCategories(context.Background(), nil)
	assert.Error(t, err)
}

func TestCacheKey(t *testing.T) {
	a, b := "1", "1"
	assert.Equal(t, (&dto.CategoryFilters{ParentID: &a}).CacheKey(), (&dto.CategoryFilters{ParentID: &b}).CacheKey())

	var nilFilters *dto.CategoryFilters
	assert.Equal(t, (&dto.CategoryFilters{}).CacheKey(), nilFilters.CacheKey())

	root := ""
	assert.NotEqual(t, nilFilters.CacheKey(), (&dto.CategoryFilters{ParentID: &root}).CacheKey())
}

func TestListCategories_UnreachableCacheFallsBackToRepository(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	repo := &fakeRepo{all: []model.Category{{ID: "1", Name: "Games"}}}
	uc := NewCategoryUseCase(repo, &cache.RedisClient{Client: client}, time.Minute, logger.Wrap(zap.NewNop()))

	got, err := uc.ListCategories(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func newCachedUseCase(t *testing.T, repo category.Repository) (category.UseCase, *miniredis.Miniredis, *observer.ObservedLogs) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	core, logs := observer.New(zapcore.DebugLevel)
	uc := NewCategoryUseCase(repo, &cache.RedisClient{Client: client}, 2*time.Minute, logger.Wrap(zap.New(core)))
	return uc, mr, logs
}

func TestListCategories_CacheMissThenHit(t *testing.T) {
	repo := &fakeRepo{all: []model.Category{{ID: "1", Name: "Games"}, {ID: "2", Name: "PC", Parent: &model.ParentRef{ID: "1", Name: "Games"}, Level: 1}}}
	uc, mr, logs := newCachedUseCase(t, repo)

	root := ""
	filters := &dto.CategoryFilters{ParentID: &root}
	key := filters.CacheKey()

	got, err := uc.ListCategories(context.Background(), filters)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, 1, logs.FilterMessage("Category cache miss").Len())

	require.True(t, mr.Exists(key))
	assert.Equal(t, 2*time.Minute, mr.TTL(key))

	got, err = uc.ListCategories(context.Background(), filters)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls, "a hit skips the repository")
	require.Len(t, got, 2)
	require.NotNil(t, got[1].Parent)
	assert.Equal(t, "1", got[1].Parent.ID)

	mr.FastForward(3 * time.Minute)
	_, err = uc.ListCategories(context.Background(), filters)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls, "expired entries are reloaded")
}

func TestListCategories_CorruptCacheIsReplaced(t *testing.T) {
	repo := &fakeRepo{all: []model.Category{{ID: "1", Name: "Games"}}}
	uc, mr, logs := newCachedUseCase(t, repo)

	key := (*dto.CategoryFilters)(nil).CacheKey()
	require.NoError(t, mr.Set(key, "{not json"))

	got, err := uc.ListCategories(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, 1, logs.FilterMessage("Discarding undecodable cached categories").Len())

	val, err := mr.Get(key)
	require.NoError(t, err)
	assert.Contains(t, val, `"Games"`)
}

func TestListCategories_CacheReadErrorIsLogged(t *testing.T) {
	repo := &fakeRepo{all: []model.Category{{ID: "1", Name: "Games"}}}
	uc, mr, logs := newCachedUseCase(t, repo)
	mr.Close()

	got, err := uc.ListCategories(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	warns := logs.FilterMessage("Failed to read category cache").All()
	require.Len(t, warns, 1)
	assert.Equal(t, zapcore.WarnLevel, warns[0].Level)
	assert.Zero(t, logs.FilterMessage("Category cache miss").Len())
}
