package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-commerce-api/internal/application"
	"github.com/oksasatya/go-commerce-api/pkg/response"
	"github.com/oksasatya/go-commerce-api/pkg/validation"
)

type CategoryHandler struct {
	Svc    *application.CatalogService
	Logger *logrus.Logger
}

func NewCategoryHandler(svc *application.CatalogService, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{Svc: svc, Logger: logger}
}

type categoryRequest struct {
	Name           string  `json:"name" binding:"required"`
	ParentCategory *string `json:"parent_category"`
}

// List GET /api/categories
func (h *CategoryHandler) List(c *gin.Context) {
	cats, err := h.Svc.ListCategories(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("category listing failed")
		response.Fail(c, http.StatusInternalServerError, "Could not list categories", nil)
		return
	}
	response.Success(c, http.StatusOK, cats, "categories", nil)
}

// Tree GET /api/categories/tree
func (h *CategoryHandler) Tree(c *gin.Context) {
	tree, err := h.Svc.CategoryTree(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("category tree failed")
		response.Fail(c, http.StatusInternalServerError, "Could not build category tree", nil)
		return
	}
	response.Success(c, http.StatusOK, tree, "category tree", nil)
}

// Create POST /api/categories (admin)
func (h *CategoryHandler) Create(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid category data", validation.ToDetails(err))
		return
	}

	cat, err := h.Svc.CreateCategory(c.Request.Context(), req.Name, req.ParentCategory)
	if err != nil {
		if errors.Is(err, application.ErrCategoryExists) {
			response.Fail(c, http.StatusBadRequest, "Category with this name/slug already exists", nil)
			return
		}
		h.Logger.WithError(err).Error("category create failed")
		response.Fail(c, http.StatusInternalServerError, "Could not create category", nil)
		return
	}
	response.Success(c, http.StatusCreated, cat, "category created", nil)
}
