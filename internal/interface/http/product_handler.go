package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-commerce-api/internal/application"
	"github.com/oksasatya/go-commerce-api/internal/interface/middleware"
	"github.com/oksasatya/go-commerce-api/pkg/response"
	"github.com/oksasatya/go-commerce-api/pkg/validation"
)

type ProductHandler struct {
	Svc    *application.CatalogService
	Logger *logrus.Logger
}

func NewProductHandler(svc *application.CatalogService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{Svc: svc, Logger: logger}
}

type productRequest struct {
	Name         string  `json:"name" binding:"required"`
	Brand        string  `json:"brand" binding:"required"`
	Category     string  `json:"category" binding:"required"`
	Description  string  `json:"description" binding:"required"`
	Image        string  `json:"image"`
	Price        float64 `json:"price" binding:"gte=0"`
	CountInStock int     `json:"count_in_stock" binding:"gte=0"`
}

type productUpdateRequest struct {
	Name         string  `json:"name"`
	Brand        string  `json:"brand"`
	Category     string  `json:"category"`
	Description  string  `json:"description"`
	Image        string  `json:"image"`
	Price        float64 `json:"price" binding:"omitempty,gte=0"`
	CountInStock int     `json:"count_in_stock" binding:"omitempty,gte=0"`
}

// List GET /api/products?pageNumber=&keyword=&category=
func (h *ProductHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("pageNumber"))
	res, err := h.Svc.ListProducts(c.Request.Context(), c.Query("keyword"), c.Query("category"), page)
	if err != nil {
		if errors.Is(err, application.ErrCategoryNotFound) {
			response.Fail(c, http.StatusNotFound, "Category not found", nil)
			return
		}
		h.Logger.WithError(err).Error("product listing failed")
		response.Fail(c, http.StatusInternalServerError, "Could not list products", nil)
		return
	}
	response.Success(c, http.StatusOK, res, "products", nil)
}

// Search GET /api/products/search?q=&size=
func (h *ProductHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	hits, err := h.Svc.SearchProducts(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		h.Logger.WithError(err).Error("product search failed")
		response.Fail(c, http.StatusInternalServerError, "Search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", nil)
}

// Get GET /api/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.Svc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, application.ErrProductNotFound) {
			response.Fail(c, http.StatusNotFound, "Product not found", nil)
			return
		}
		h.Logger.WithError(err).Error("product fetch failed")
		response.Fail(c, http.StatusInternalServerError, "Could not fetch product", nil)
		return
	}
	response.Success(c, http.StatusOK, p, "product", nil)
}

// Create POST /api/products (admin)
func (h *ProductHandler) Create(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid product data", validation.ToDetails(err))
		return
	}

	caller := middleware.UserFromContext(c)
	p, err := h.Svc.CreateProduct(c.Request.Context(), caller.ID, application.ProductInput{
		Name:         req.Name,
		Brand:        req.Brand,
		CategoryID:   req.Category,
		Description:  req.Description,
		ImageURL:     req.Image,
		Price:        req.Price,
		CountInStock: req.CountInStock,
	})
	if err != nil {
		if errors.Is(err, application.ErrCategoryNotFound) {
			response.Fail(c, http.StatusBadRequest, "Category not found", nil)
			return
		}
		h.Logger.WithError(err).Error("product create failed")
		response.Fail(c, http.StatusInternalServerError, "Could not create product", nil)
		return
	}
	response.Success(c, http.StatusCreated, p, "product created", nil)
}

// Update PUT /api/products/:id (admin)
func (h *ProductHandler) Update(c *gin.Context) {
	var req productUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid product data", validation.ToDetails(err))
		return
	}

	p, err := h.Svc.UpdateProduct(c.Request.Context(), c.Param("id"), application.ProductInput{
		Name:         req.Name,
		Brand:        req.Brand,
		CategoryID:   req.Category,
		Description:  req.Description,
		ImageURL:     req.Image,
		Price:        req.Price,
		CountInStock: req.CountInStock,
	})
	if err != nil {
		switch {
		case errors.Is(err, application.ErrProductNotFound):
			response.Fail(c, http.StatusNotFound, "Product not found", nil)
		case errors.Is(err, application.ErrCategoryNotFound):
			response.Fail(c, http.StatusBadRequest, "Category not found", nil)
		default:
			h.Logger.WithError(err).Error("product update failed")
			response.Fail(c, http.StatusInternalServerError, "Could not update product", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, p, "product updated", nil)
}

// Delete DELETE /api/products/:id (admin)
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.Svc.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, application.ErrProductNotFound) {
			response.Fail(c, http.StatusNotFound, "Product not found", nil)
			return
		}
		h.Logger.WithError(err).Error("product delete failed")
		response.Fail(c, http.StatusInternalServerError, "Could not delete product", nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Product removed", nil)
}

// UploadImage POST /api/products/:id/image (admin, multipart field "image")
func (h *ProductHandler) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Image file required", nil)
		return
	}
	defer func() { _ = file.Close() }()

	url, err := h.Svc.UploadProductImage(c.Request.Context(), c.Param("id"), file,
		header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, application.ErrProductNotFound) {
			response.Fail(c, http.StatusNotFound, "Product not found", nil)
			return
		}
		h.Logger.WithError(err).Error("product image upload failed")
		response.Fail(c, http.StatusInternalServerError, "Could not upload image", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"image_url": url}, "image uploaded", nil)
}
