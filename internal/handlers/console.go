package handlers

import (
	"context"
	"errors"
	"net/http"

	"zefood-console/internal/api"
	"zefood-console/internal/checkout"
	"zefood-console/internal/config"
	"zefood-console/internal/models"
	"zefood-console/internal/services"
	"zefood-console/internal/session"
	"zefood-console/internal/tracking"

	"github.com/gin-gonic/gin"
)

// SessionAuth - контекст авторизации (реализуется session.Auth)
type SessionAuth interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Logout(ctx context.Context)
	User() *models.User
	IsAuthenticated() bool
	App() config.AppConfig
}

// OrderBoard - доска заказов ресторана (реализуется services.Board)
type OrderBoard interface {
	All() []models.Order
	Orders(tab services.Tab) []models.Order
	Counts() map[services.Tab]int
	RestaurantID() string
	UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) (bool, error)
	Load(ctx context.Context) error
	StopSound()
}

// TrackingService - страницы отслеживания (реализуется services.TrackingSessions)
type TrackingService interface {
	Open(ctx context.Context, orderID string) (tracking.View, error)
	Get(orderID string) (tracking.View, bool)
	Close(orderID string) bool
}

// CheckoutService - сценарии оплаты (реализуется services.CheckoutSessions)
type CheckoutService interface {
	Open(ctx context.Context, orderID string) (checkout.View, error)
	Get(orderID string) (*checkout.Flow, bool)
	Close(orderID string) bool
}

// respondError переводит ошибку в HTTP-ответ
func respondError(c *gin.Context, err error) {
	var apiErr *api.APIError
	switch {
	case errors.Is(err, api.ErrSessionExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Сессия истекла"})
	case errors.Is(err, session.ErrRoleNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": "Доступ запрещен для этой роли"})
	case errors.Is(err, checkout.ErrInvalidState), errors.Is(err, checkout.ErrNoPaymentCode):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrInvalidMethod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrSimulationUnavailable):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		c.JSON(apiErr.StatusCode, gin.H{"error": apiErr.Message})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": api.Message(err)})
	}
}
