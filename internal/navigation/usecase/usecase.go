package usecase

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/navigation"
	"github.com/fekuna/omnipos-storefront-service/internal/navigation/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/navigation/tree"
	"github.com/fekuna/omnipos-storefront-service/internal/platform/logger"
	"go.uber.org/zap"
)

type navigationUseCase struct {
	fetcher navigation.Fetcher
	builder *tree.Builder
	logger  logger.ZapLogger
}

// NewNavigationUseCase fetches fresh on every call; nothing is cached between requests.
func NewNavigationUseCase(fetcher navigation.Fetcher, builder *tree.Builder, log logger.ZapLogger) navigation.UseCase {
	if builder == nil {
		builder = tree.NewBuilder()
	}
	return &navigationUseCase{
		fetcher: fetcher,
		builder: builder,
		logger:  log,
	}
}

func (uc *navigationUseCase) GetCategoryTree(ctx context.Context) (*dto.CategoryTree, error) {
	fetched := uc.fetcher.Fetch(ctx)
	if fetched.Degraded {
		uc.logger.Warn("Serving empty navigation, upstream unavailable",
			zap.Int("attempts", fetched.Attempts),
			zap.Error(fetched.Err),
		)
	}

	res := uc.builder.Build(fetched.Categories)
	if res.Dropped > 0 {
		uc.logger.Debug("Categories left out of navigation tree",
			zap.Int("dropped", res.Dropped),
			zap.Int("fetched", len(fetched.Categories)),
		)
	}

	return &dto.CategoryTree{
		Roots:    res.Roots,
		Dropped:  res.Dropped,
		Degraded: fetched.Degraded,
	}, nil
}

func (uc *navigationUseCase) GetCategory(ctx context.Context, id string) (*model.CategoryNode, error) {
	return uc.findNode(ctx, func(n *model.CategoryNode) bool { return n.ID == id })
}

func (uc *navigationUseCase) FindCategoryByName(ctx context.Context, name string) (*model.CategoryNode, error) {
	return uc.findNode(ctx, func(n *model.CategoryNode) bool { return n.Name == name })
}

func (uc *navigationUseCase) findNode(ctx context.Context, match func(*model.CategoryNode) bool) (*model.CategoryNode, error) {
	t, err := uc.GetCategoryTree(ctx)
	if err != nil {
		return nil, err
	}
	node, ok := tree.FindNode(t.Roots, match)
	if !ok {
		return nil, navigation.ErrCategoryNotFound
	}
	return node, nil
}

func (uc *navigationUseCase) ListRootCategories(ctx context.Context) ([]model.Category, error) {
	fetched := uc.fetcher.Fetch(ctx)
	return tree.RootCategories(fetched.Categories), nil
}

func (uc *navigationUseCase) ListSubcategories(ctx context.Context, parentID string) ([]model.Category, error) {
	fetched := uc.fetcher.Fetch(ctx)
	if fetched.Degraded {
		uc.logger.Warn("Serving empty subcategories, upstream unavailable",
			zap.String("parent_id", parentID),
			zap.Int("attempts", fetched.Attempts),
			zap.Error(fetched.Err),
		)
		return []model.Category{}, nil
	}
	if _, ok := tree.CategoryByID(fetched.Categories, parentID); !ok {
		return nil, navigation.ErrCategoryNotFound
	}
	return tree.SubcategoriesByParentID(fetched.Categories, parentID), nil
}
