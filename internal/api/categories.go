package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/service"
)

type CategoryController struct {
	categories *service.CategoryService
}

func NewCategoryController(categories *service.CategoryService) *CategoryController {
	return &CategoryController{categories: categories}
}

type categoryView struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}

func newCategoryView(cat domain.Category) categoryView {
	return categoryView{ID: cat.ID, Name: cat.Name, Kind: cat.Kind, CreatedAt: cat.CreatedAt}
}

func (cc *CategoryController) List(c echo.Context) error {
	items, err := cc.categories.List(c.Request().Context(), organizationID(c))
	if err != nil {
		return serviceError(c, err, "list categories")
	}
	views := make([]categoryView, 0, len(items))
	for _, item := range items {
		views = append(views, newCategoryView(item))
	}
	return ok(c, http.StatusOK, "Categories", views)
}

type createCategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Kind string `json:"kind" validate:"omitempty,max=50"`
}

func (cc *CategoryController) Create(c echo.Context) error {
	var req createCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	created, err := cc.categories.Create(c.Request().Context(), organizationID(c), req.Name, req.Kind)
	if err != nil {
		return serviceError(c, err, "create category")
	}
	return ok(c, http.StatusCreated, "Category created", newCategoryView(created))
}

func (cc *CategoryController) Delete(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	if err := cc.categories.Delete(c.Request().Context(), organizationID(c), id); err != nil {
		return serviceError(c, err, "delete category")
	}
	return ok(c, http.StatusOK, "Category deleted", nil)
}
