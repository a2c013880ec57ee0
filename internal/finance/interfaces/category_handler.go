package interfaces

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/FinMind/internal/finance/application"
	"github.com/sebuszqo/FinMind/internal/finance/domain"
	"github.com/sebuszqo/FinMind/internal/log"
)

type CategoryServiceInterface interface {
	GetCategories(ctx context.Context, userID string, categoryType string) ([]domain.Category, error)
	GetDefaultCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, userID, categoryID string) (*domain.Category, error)
	CreateCategory(ctx context.Context, category *domain.Category) error
	UpdateCategory(ctx context.Context, userID, categoryID string, changes application.CategoryChanges) (*domain.Category, error)
	DeleteCategory(ctx context.Context, userID, categoryID string) error
}

type CategoryHandler struct {
	service CategoryServiceInterface
	errors  errorWriter
}

func NewCategoryHandler(service CategoryServiceInterface, logger *log.Logger) *CategoryHandler {
	if service == nil {
		panic("category service must not be nil")
	}
	return &CategoryHandler{service: service, errors: errorWriter{logger: logger.WithComponent(log.ComponentHTTP)}}
}

func (h *CategoryHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	categoryType := r.URL.Query().Get("type")
	if categoryType != "" && !domain.IsValidTransactionType(categoryType) {
		RespondError(w, http.StatusBadRequest, "Invalid category type")
		return
	}

	categories, err := h.service.GetCategories(r.Context(), userID, categoryType)
	if err != nil {
		h.errors.write(w, r, "Failed to retrieve categories", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Categories retrieved successfully.", categories)
}

func (h *CategoryHandler) GetDefaultCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.GetDefaultCategories(r.Context())
	if err != nil {
		h.errors.write(w, r, "Failed to retrieve categories", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Default categories retrieved successfully.", categories)
}

func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	category, err := h.service.GetCategory(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.errors.write(w, r, "Failed to retrieve category", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Category retrieved successfully.", category)
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Name             string           `json:"name"`
		Type             string           `json:"type"`
		Color            string           `json:"color"`
		Icon             string           `json:"icon"`
		ParentCategoryID string           `json:"parentCategoryId"`
		BudgetLimit      *decimal.Decimal `json:"budgetLimit"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.errors.write(w, r, "Invalid request", err)
		return
	}

	category := &domain.Category{
		UserID:           userID,
		Name:             req.Name,
		Type:             domain.TransactionType(req.Type),
		Color:            req.Color,
		Icon:             req.Icon,
		ParentCategoryID: req.ParentCategoryID,
	}
	if req.BudgetLimit != nil {
		category.BudgetLimit = decimal.NewNullDecimal(*req.BudgetLimit)
	}

	if err := h.service.CreateCategory(r.Context(), category); err != nil {
		h.errors.write(w, r, "Failed to create category", err)
		return
	}
	respondSuccess(w, http.StatusCreated, "Category successfully created.", category)
}

func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var changes application.CategoryChanges
	if err := decodeBody(r, &changes); err != nil {
		h.errors.write(w, r, "Invalid request", err)
		return
	}

	category, err := h.service.UpdateCategory(r.Context(), userID, r.PathValue("id"), changes)
	if err != nil {
		h.errors.write(w, r, "Failed to update category", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Category updated successfully.", category)
}

func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteCategory(r.Context(), userID, r.PathValue("id")); err != nil {
		h.errors.write(w, r, "Failed to delete category", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Category deleted successfully.", nil)
}
