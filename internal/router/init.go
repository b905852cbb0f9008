package router

import (
	"github.com/oksasatya/go-commerce-api/internal/application"
	"github.com/oksasatya/go-commerce-api/internal/container"
	pginfra "github.com/oksasatya/go-commerce-api/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/go-commerce-api/internal/interface/http"
	"github.com/oksasatya/go-commerce-api/internal/router/modules"
)

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	users := pginfra.NewUserRepository(pool)
	products := pginfra.NewProductRepository(pool)
	categories := pginfra.NewCategoryRepository(pool)
	orders := pginfra.NewOrderRepository(pool)

	userSvc := application.NewUserService(
		users,
		container.GetJWT(),
		container.GetMailer(),
		logger,
		cfg.ResetPasswordURL,
		cfg.ResetTokenTTL,
		cfg.MailSendEnabled,
	)
	catalogSvc := application.NewCatalogService(
		products,
		categories,
		container.GetRedis(),
		container.GetES(),
		cfg.ESProductsIndex,
		container.GetGCS(),
		cfg.GCSBucket,
		logger,
	)
	orderSvc := application.NewOrderService(orders, products, container.GetRabbitPub(), logger)

	authHandler := handlers.NewAuthHandler(userSvc, logger)
	productHandler := handlers.NewProductHandler(catalogSvc, logger)
	categoryHandler := handlers.NewCategoryHandler(catalogSvc, logger)
	orderHandler := handlers.NewOrderHandler(orderSvc, logger)

	r.Add(modules.NewAuthModule(authHandler, container.GetJWT(), users, logger))
	r.Add(modules.NewProductModule(productHandler, container.GetJWT(), users, logger))
	r.Add(modules.NewCategoryModule(categoryHandler, container.GetJWT(), users, logger))
	r.Add(modules.NewOrderModule(orderHandler, container.GetJWT(), users, logger))
}
