package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/navigation"
	"github.com/fekuna/omnipos-storefront-service/internal/navigation/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/navigation/tree"
	"github.com/fekuna/omnipos-storefront-service/internal/platform/logger"
	"github.com/fekuna/omnipos-storefront-service/internal/platform/response"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type NavigationHandler struct {
	uc     navigation.UseCase
	icons  *tree.IconResolver
	logger logger.ZapLogger
}

func NewNavigationHandler(uc navigation.UseCase, log logger.ZapLogger) *NavigationHandler {
	return &NavigationHandler{
		uc:     uc,
		icons:  tree.DefaultIconResolver(),
		logger: log,
	}
}

// Register mounts the navigation routes, e.g. on the /api/navigation group.
func (h *NavigationHandler) Register(g *echo.Group) {
	g.GET("/categories", h.GetCategoryTree)
	g.GET("/categories/roots", h.ListRootCategories)
	g.GET("/categories/search", h.FindCategoryByName)
	g.GET("/categories/:id", h.GetCategory)
	g.GET("/categories/:id/subcategories", h.ListSubcategories)
}

// GetCategoryTree answers 200 with an empty list when upstream is down; menus render
// "no categories" either way.
func (h *NavigationHandler) GetCategoryTree(c echo.Context) error {
	t, err := h.uc.GetCategoryTree(c.Request().Context())
	if err != nil {
		h.logger.Error("failed to build category tree", zap.Error(err))
		return response.Fail(c, http.StatusInternalServerError, "failed to load categories")
	}
	return response.OK(c, http.StatusOK, dto.ToNodeResponses(t.Roots))
}

func (h *NavigationHandler) GetCategory(c echo.Context) error {
	n, err := h.uc.GetCategory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, http.StatusOK, dto.ToNodeResponse(n))
}

func (h *NavigationHandler) FindCategoryByName(c echo.Context) error {
	name := strings.TrimSpace(c.QueryParam("name"))
	if name == "" {
		return response.Fail(c, http.StatusBadRequest, "name query parameter is required")
	}
	n, err := h.uc.FindCategoryByName(c.Request().Context(), name)
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, http.StatusOK, dto.ToNodeResponse(n))
}

func (h *NavigationHandler) ListRootCategories(c echo.Context) error {
	cats, err := h.uc.ListRootCategories(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, http.StatusOK, h.mapFlat(cats))
}

func (h *NavigationHandler) ListSubcategories(c echo.Context) error {
	cats, err := h.uc.ListSubcategories(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, http.StatusOK, h.mapFlat(cats))
}

func (h *NavigationHandler) fail(c echo.Context, err error) error {
	if errors.Is(err, navigation.ErrCategoryNotFound) {
		return response.Fail(c, http.StatusNotFound, err.Error())
	}
	h.logger.Error("navigation request failed", zap.String("path", c.Path()), zap.Error(err))
	return response.Fail(c, http.StatusInternalServerError, "internal error")
}

// mapFlat drops the parent reference; flat lookups render as leaf nodes with the
// same icons the tree carries.
func (h *NavigationHandler) mapFlat(cats []model.Category) []dto.NodeResponse {
	out := make([]dto.NodeResponse, len(cats))
	for i := range cats {
		out[i] = dto.NodeResponse{
			ID:          cats[i].ID,
			Name:        cats[i].Name,
			Description: cats[i].Description,
			Icon:        h.icons.Resolve(cats[i].Name),
			Children:    []dto.NodeResponse{},
		}
	}
	return out
}
