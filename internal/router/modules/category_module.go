package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-commerce-api/internal/domain/repository"
	handlers "github.com/oksasatya/go-commerce-api/internal/interface/http"
	"github.com/oksasatya/go-commerce-api/internal/interface/middleware"
	"github.com/oksasatya/go-commerce-api/pkg/helpers"
)

// CategoryModule wires the catalog category routes.
// Public: GET /api/categories, GET /api/categories/tree
// Admin: POST /api/categories

type CategoryModule struct {
	Handler *handlers.CategoryHandler
	JWT     *helpers.JWTManager
	Users   repository.UserRepository
	Logger  *logrus.Logger
}

func NewCategoryModule(h *handlers.CategoryHandler, jwt *helpers.JWTManager, users repository.UserRepository, logger *logrus.Logger) *CategoryModule {
	return &CategoryModule{Handler: h, JWT: jwt, Users: users, Logger: logger}
}

func (m *CategoryModule) Register(rg *gin.RouterGroup) {
	rg.GET("/categories", m.Handler.List)
	rg.GET("/categories/tree", m.Handler.Tree)

	admin := rg.Group("/")
	admin.Use(middleware.Protect(m.JWT, m.Users, m.Logger), middleware.RequireAdmin())
	{
		admin.POST("/categories", m.Handler.Create)
	}
}
