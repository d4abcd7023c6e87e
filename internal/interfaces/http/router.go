package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/pedidos-api/internal/application/account"
	"github.com/jhoicas/pedidos-api/internal/application/auth"
	"github.com/jhoicas/pedidos-api/internal/application/order"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC          *auth.AuthUseCase
	AccountUC       *account.AccountUseCase
	OrderUC         *order.OrderUseCase
	JWTAccessSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público salvo logout)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.Refresh)
	authGroup.Post("/logout", AuthMiddleware(deps.JWTAccessSecret), authHandler.Logout)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTAccessSecret))

	// Users: consulta propia + administración de cuentas
	users := protected.Group("/users")
	userHandler := NewUserHandler(deps.AccountUC)
	users.Get("/me", userHandler.Me)
	users.Get("/", RequireRole(entity.RoleAdmin), userHandler.List)
	users.Post("/:id/activate", RequireRole(entity.RoleAdmin), userHandler.Activate)
	users.Post("/:id/reject", RequireRole(entity.RoleAdmin), userHandler.Reject)

	// Orders: flujo de aprobación
	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Post("/:id/confirmation", orderHandler.RequestConfirmation)
	orders.Post("/:id/resolve", RequireRole(entity.RoleAdmin), orderHandler.Resolve)
}
