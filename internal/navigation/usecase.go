package navigation

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/navigation/dto"
)

var ErrCategoryNotFound = errors.New("category not found")

type UseCase interface {
	GetCategoryTree(ctx context.Context) (*dto.CategoryTree, error)
	GetCategory(ctx context.Context, id string) (*model.CategoryNode, error)
	FindCategoryByName(ctx context.Context, name string) (*model.CategoryNode, error)
	ListRootCategories(ctx context.Context) ([]model.Category, error)
	ListSubcategories(ctx context.Context, parentID string) ([]model.Category, error)
}
