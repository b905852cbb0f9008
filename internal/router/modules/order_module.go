package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-commerce-api/internal/domain/repository"
	handlers "github.com/oksasatya/go-commerce-api/internal/interface/http"
	"github.com/oksasatya/go-commerce-api/internal/interface/middleware"
	"github.com/oksasatya/go-commerce-api/pkg/helpers"
)

// OrderModule wires the order routes. Everything requires a logged-in user.
// User: POST /api/orders, GET /api/orders/myorders, GET /api/orders/:id
// Admin: GET /api/orders, PUT /api/orders/:id/deliver

type OrderModule struct {
	Handler *handlers.OrderHandler
	JWT     *helpers.JWTManager
	Users   repository.UserRepository
	Logger  *logrus.Logger
}

func NewOrderModule(h *handlers.OrderHandler, jwt *helpers.JWTManager, users repository.UserRepository, logger *logrus.Logger) *OrderModule {
	return &OrderModule{Handler: h, JWT: jwt, Users: users, Logger: logger}
}

func (m *OrderModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Protect(m.JWT, m.Users, m.Logger))
	{
		auth.POST("/orders", m.Handler.Create)
		auth.GET("/orders/myorders", m.Handler.ListMine)
		auth.GET("/orders/:id", m.Handler.Get)
	}

	admin := rg.Group("/")
	admin.Use(middleware.Protect(m.JWT, m.Users, m.Logger), middleware.RequireAdmin())
	{
		admin.GET("/orders", m.Handler.ListAll)
		admin.PUT("/orders/:id/deliver", m.Handler.MarkDelivered)
	}
}
