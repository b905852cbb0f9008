package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-commerce-api/internal/domain/repository"
	handlers "github.com/oksasatya/go-commerce-api/internal/interface/http"
	"github.com/oksasatya/go-commerce-api/internal/interface/middleware"
	"github.com/oksasatya/go-commerce-api/pkg/helpers"
)

// ProductModule wires the catalog product routes.
// Public: GET /api/products, GET /api/products/search, GET /api/products/:id
// Admin: POST /api/products, PUT /api/products/:id, DELETE /api/products/:id,
// POST /api/products/:id/image

type ProductModule struct {
	Handler *handlers.ProductHandler
	JWT     *helpers.JWTManager
	Users   repository.UserRepository
	Logger  *logrus.Logger
}

func NewProductModule(h *handlers.ProductHandler, jwt *helpers.JWTManager, users repository.UserRepository, logger *logrus.Logger) *ProductModule {
	return &ProductModule{Handler: h, JWT: jwt, Users: users, Logger: logger}
}

func (m *ProductModule) Register(rg *gin.RouterGroup) {
	rg.GET("/products", m.Handler.List)
	rg.GET("/products/search", m.Handler.Search)
	rg.GET("/products/:id", m.Handler.Get)

	admin := rg.Group("/")
	admin.Use(middleware.Protect(m.JWT, m.Users, m.Logger), middleware.RequireAdmin())
	{
		admin.POST("/products", m.Handler.Create)
		admin.PUT("/products/:id", m.Handler.Update)
		admin.DELETE("/products/:id", m.Handler.Delete)
		admin.POST("/products/:id/image", m.Handler.UploadImage)
	}
}
