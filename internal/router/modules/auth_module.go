package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-commerce-api/internal/domain/repository"
	handlers "github.com/oksasatya/go-commerce-api/internal/interface/http"
	"github.com/oksasatya/go-commerce-api/internal/interface/middleware"
	"github.com/oksasatya/go-commerce-api/pkg/helpers"
)

// AuthModule wires the user account routes.
// Public: POST /api/users, POST /api/users/login, POST /api/users/forgotpassword,
// PUT /api/users/resetpassword/:token
// Protected: GET /api/users/profile, PUT /api/users/profile

type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
	Users   repository.UserRepository
	Logger  *logrus.Logger
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager, users repository.UserRepository, logger *logrus.Logger) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt, Users: users, Logger: logger}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/users", m.Handler.Register)
	rg.POST("/users/login", m.Handler.Login)
	rg.POST("/users/forgotpassword", m.Handler.ForgotPassword)
	rg.PUT("/users/resetpassword/:token", m.Handler.ResetPassword)

	auth := rg.Group("/")
	auth.Use(middleware.Protect(m.JWT, m.Users, m.Logger))
	{
		auth.GET("/users/profile", m.Handler.GetProfile)
		auth.PUT("/users/profile", m.Handler.UpdateProfile)
	}
}
