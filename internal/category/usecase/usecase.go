package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/category"
	"github.com/fekuna/omnipos-storefront-service/internal/category/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/platform/cache"
	"github.com/fekuna/omnipos-storefront-service/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultCacheTTL = 5 * time.Minute

type categoryUseCase struct {
	repo     category.Repository
	cache    *cache.RedisClient
	cacheTTL time.Duration
	logger   logger.ZapLogger
}

// NewCategoryUseCase accepts a nil cache; lists are then always read from the repository.
func NewCategoryUseCase(repo category.Repository, cache *cache.RedisClient, cacheTTL time.Duration, log logger.ZapLogger) category.UseCase {
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &categoryUseCase{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	cat, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, category.ErrCategoryNotFound
	}
	return cat, nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, error) {
	cacheKey := filters.CacheKey()

	if uc.cache != nil {
		val, err := uc.cache.Client.Get(ctx, cacheKey).Result()
		switch {
		case err == nil:
			var cached []model.Category
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached, nil
			}
			uc.logger.Warn("Discarding undecodable cached categories", zap.String("key", cacheKey))
		case errors.Is(err, redis.Nil):
			uc.logger.Debug("Category cache miss", zap.String("key", cacheKey))
		default:
			uc.logger.Warn("Failed to read category cache", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	categories, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if data, err := json.Marshal(categories); err == nil {
			if err := uc.cache.Client.Set(ctx, cacheKey, data, uc.cacheTTL).Err(); err != nil {
				uc.logger.Warn("Failed to cache categories", zap.String("key", cacheKey), zap.Error(err))
			}
		}
	}

	return categories, nil
}
