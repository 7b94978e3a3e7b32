package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/finance-tracker/internal/audit"
	"github.com/iliyamo/finance-tracker/internal/middleware"
	"github.com/iliyamo/finance-tracker/internal/model"
	"github.com/iliyamo/finance-tracker/internal/repository"
	"github.com/iliyamo/finance-tracker/internal/validation"
)

// CategoryHandler serves the shared category list.  Any authenticated
// user may read or change it.
type CategoryHandler struct {
	Categories CategoryStore
	Audit      audit.Publisher
}

func NewCategoryHandler(s CategoryStore, pub audit.Publisher) *CategoryHandler {
	return &CategoryHandler{Categories: s, Audit: pub}
}

func (h *CategoryHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Categories.List(ctx)
	if err != nil {
		return err
	}
	return respondList(c, http.StatusOK, list, len(list), nil)
}

func (h *CategoryHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	cat, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		return categoryErr(err, id)
	}
	return respond(c, http.StatusOK, "", cat)
}

// Create adds a category; categoryType defaults to EXPENSE.
func (h *CategoryHandler) Create(c echo.Context) error {
	var req createCategoryReq
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	cat, err := h.Categories.Create(ctx, req.Name, req.CategoryType)
	if err != nil {
		return err
	}
	uid, _ := middleware.UserID(c)
	publish(c, h.Audit, audit.NewEvent(audit.ActionCreate, audit.EntityCategory, cat.ID, uid))
	return respond(c, http.StatusCreated, "Category created successfully", cat)
}

func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateCategoryReq
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	cat, err := h.Categories.Update(ctx, id, model.CategoryPatch{Name: req.Name, CategoryType: req.CategoryType})
	if err != nil {
		return categoryErr(err, id)
	}
	uid, _ := middleware.UserID(c)
	publish(c, h.Audit, audit.NewEvent(audit.ActionUpdate, audit.EntityCategory, id, uid))
	return respond(c, http.StatusOK, "Category updated successfully", cat)
}

// Delete removes a category.  It is refused while transactions use it.
func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Categories.Delete(ctx, id); err != nil {
		return categoryErr(err, id)
	}
	uid, _ := middleware.UserID(c)
	publish(c, h.Audit, audit.NewEvent(audit.ActionDelete, audit.EntityCategory, id, uid))
	return respond(c, http.StatusOK, "Category deleted successfully", nil)
}

func categoryErr(err error, id uint64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFoundf("Category with ID %d not found", id)
	}
	return err
}
