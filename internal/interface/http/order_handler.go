package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-commerce-api/internal/application"
	"github.com/oksasatya/go-commerce-api/internal/domain/entity"
	"github.com/oksasatya/go-commerce-api/internal/interface/middleware"
	"github.com/oksasatya/go-commerce-api/pkg/response"
	"github.com/oksasatya/go-commerce-api/pkg/validation"
)

type OrderHandler struct {
	Svc    *application.OrderService
	Logger *logrus.Logger
}

func NewOrderHandler(svc *application.OrderService, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{Svc: svc, Logger: logger}
}

type orderItemRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Qty       int     `json:"qty" binding:"required,min=1"`
	ImageURL  string  `json:"image_url"`
	Price     float64 `json:"price" binding:"required"`
}

type shippingAddressRequest struct {
	Address    string `json:"address" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

type createOrderRequest struct {
	Items           []orderItemRequest     `json:"order_items"`
	ShippingAddress shippingAddressRequest `json:"shipping_address" binding:"required"`
	PaymentMethod   string                 `json:"payment_method" binding:"required"`
	TaxPrice        float64                `json:"tax_price"`
	ShippingPrice   float64                `json:"shipping_price"`
	TotalPrice      float64                `json:"total_price" binding:"required"`
}

// Create POST /api/orders
func (h *OrderHandler) Create(c *gin.Context) {
	user := middleware.UserFromContext(c)

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid order data", validation.ToDetails(err))
		return
	}

	in := application.CreateOrderInput{
		ShippingAddress: entity.ShippingAddress{
			Address:    req.ShippingAddress.Address,
			City:       req.ShippingAddress.City,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
		PaymentMethod: req.PaymentMethod,
		TaxPrice:      req.TaxPrice,
		ShippingPrice: req.ShippingPrice,
		TotalPrice:    req.TotalPrice,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, application.OrderItemInput{
			ProductID: it.ProductID,
			Name:      it.Name,
			Qty:       it.Qty,
			ImageURL:  it.ImageURL,
			Price:     it.Price,
		})
	}

	order, err := h.Svc.Create(c.Request.Context(), user, in)
	if err != nil {
		if errors.Is(err, application.ErrNoOrderItems) {
			response.Fail(c, http.StatusBadRequest, "No order items", nil)
			return
		}
		h.Logger.WithError(err).Error("order create failed")
		response.Fail(c, http.StatusInternalServerError, "Could not create order", nil)
		return
	}
	response.Success(c, http.StatusCreated, order, "order created", nil)
}

// Get GET /api/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	user := middleware.UserFromContext(c)

	order, err := h.Svc.Get(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrOrderNotFound):
			response.Fail(c, http.StatusNotFound, "Order not found", nil)
		case errors.Is(err, application.ErrOrderForbidden):
			response.Fail(c, http.StatusUnauthorized, "Not authorized to view this order", nil)
		default:
			h.Logger.WithError(err).Error("order lookup failed")
			response.Fail(c, http.StatusInternalServerError, "Could not load order", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, order, "order", nil)
}

// ListMine GET /api/orders/myorders
func (h *OrderHandler) ListMine(c *gin.Context) {
	user := middleware.UserFromContext(c)

	orders, err := h.Svc.ListMine(c.Request.Context(), user.ID)
	if err != nil {
		h.Logger.WithError(err).Error("order listing failed")
		response.Fail(c, http.StatusInternalServerError, "Could not list orders", nil)
		return
	}
	response.Success(c, http.StatusOK, orders, "orders", nil)
}

// ListAll GET /api/orders (admin)
func (h *OrderHandler) ListAll(c *gin.Context) {
	orders, err := h.Svc.ListAll(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("order listing failed")
		response.Fail(c, http.StatusInternalServerError, "Could not list orders", nil)
		return
	}
	response.Success(c, http.StatusOK, orders, "orders", nil)
}

// MarkDelivered PUT /api/orders/:id/deliver (admin)
func (h *OrderHandler) MarkDelivered(c *gin.Context) {
	order, err := h.Svc.MarkDelivered(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, application.ErrOrderNotFound) {
			response.Fail(c, http.StatusNotFound, "Order not found", nil)
			return
		}
		h.Logger.WithError(err).Error("order delivery update failed")
		response.Fail(c, http.StatusInternalServerError, "Could not update order", nil)
		return
	}
	response.Success(c, http.StatusOK, order, "order delivered", nil)
}
