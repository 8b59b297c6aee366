package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-storefront-service/internal/category"
	"github.com/fekuna/omnipos-storefront-service/internal/category/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/platform/logger"
	"github.com/fekuna/omnipos-storefront-service/internal/platform/response"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CategoryHandler serves the flat catalog consumed by the navigation fetcher.
type CategoryHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		logger: log,
	}
}

// Register mounts the same routes under /categories and /api/categories.
func (h *CategoryHandler) Register(e *echo.Echo) {
	for _, prefix := range []string{"/categories", "/api/categories"} {
		g := e.Group(prefix)
		g.GET("", h.ListCategories)
		g.GET("/:id", h.GetCategory)
	}
}

// ListCategories supports ?parent_id= (empty value selects roots) and ?level=.
func (h *CategoryHandler) ListCategories(c echo.Context) error {
	filters := &dto.CategoryFilters{}
	if values, ok := c.QueryParams()["parent_id"]; ok && len(values) > 0 {
		parentID := values[0]
		filters.ParentID = &parentID
	}
	if raw := c.QueryParam("level"); raw != "" {
		level, err := strconv.Atoi(raw)
		if err != nil {
			return response.Fail(c, http.StatusBadRequest, "level must be an integer")
		}
		filters.Level = &level
	}

	cats, err := h.uc.ListCategories(c.Request().Context(), filters)
	if err != nil {
		h.logger.Error("failed to list categories", zap.Error(err))
		return response.Fail(c, http.StatusInternalServerError, "failed to list categories")
	}
	return response.OK(c, http.StatusOK, cats)
}

func (h *CategoryHandler) GetCategory(c echo.Context) error {
	cat, err := h.uc.GetCategory(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, category.ErrCategoryNotFound) {
			return response.Fail(c, http.StatusNotFound, err.Error())
		}
		h.logger.Error("failed to get category", zap.String("id", c.Param("id")), zap.Error(err))
		return response.Fail(c, http.StatusInternalServerError, "failed to get category")
	}
	return response.OK(c, http.StatusOK, cat)
}
