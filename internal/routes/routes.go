package routes

import (
	"zefood-console/internal/handlers"
	"zefood-console/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Deps - сервисы консоли, которые обслуживают маршруты
type Deps struct {
	Auth       handlers.SessionAuth
	Board      handlers.OrderBoard // nil вне режима ресторана
	Tracking   handlers.TrackingService
	Checkout   handlers.CheckoutService
	Simulation bool
}

func SetupRoutes(api *gin.RouterGroup, deps Deps) {
	api.GET("/app", handlers.AppInfo(deps.Auth, deps.Simulation))

	// Публичные маршруты для аутентификации
	auth := api.Group("/auth")
	{
		auth.POST("/login", handlers.AuthLogin(deps.Auth))
		auth.POST("/register", handlers.AuthRegister(deps.Auth))
		auth.POST("/logout", handlers.AuthLogout(deps.Auth))
		auth.GET("/me", handlers.AuthMe(deps.Auth))
	}

	// Защищенные маршруты (требуют активной сессии)
	protected := api.Group("")
	protected.Use(middleware.SessionAuth(deps.Auth))
	{
		// Доска заказов ресторана
		if deps.Board != nil {
			protected.GET("/orders", handlers.OrdersList(deps.Board))
			protected.POST("/orders/reload", handlers.OrdersReload(deps.Board))
			protected.POST("/orders/sound/stop", handlers.OrdersStopSound(deps.Board))
			protected.PATCH("/orders/:id/status", handlers.OrderUpdateStatus(deps.Board))
		}

		// Отслеживание доставки
		protected.POST("/tracking/:id", handlers.TrackingOpen(deps.Tracking))
		protected.GET("/tracking/:id", handlers.TrackingGet(deps.Tracking))
		protected.DELETE("/tracking/:id", handlers.TrackingClose(deps.Tracking))

		// Оплата заказа
		protected.POST("/checkout/:id", handlers.CheckoutOpen(deps.Checkout))
		protected.GET("/checkout/:id", handlers.CheckoutGet(deps.Checkout))
		protected.DELETE("/checkout/:id", handlers.CheckoutClose(deps.Checkout))
		protected.PUT("/checkout/:id/method", handlers.CheckoutSelectMethod(deps.Checkout))
		protected.POST("/checkout/:id/submit", handlers.CheckoutSubmit(deps.Checkout))
		protected.POST("/checkout/:id/copy", handlers.CheckoutCopy(deps.Checkout))
		protected.POST("/checkout/:id/back", handlers.CheckoutBack(deps.Checkout))
		protected.POST("/checkout/:id/simulate", handlers.CheckoutSimulate(deps.Checkout))
	}
}
