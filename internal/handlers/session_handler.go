package handlers

import (
	"net/http"

	"zefood-console/internal/models"
	"zefood-console/internal/services"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
}

// AuthLogin выполняет вход через бэкенд и сохраняет сессию
func AuthLogin(auth SessionAuth) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
			return
		}

		user, err := auth.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, services.NewAuthState(user))
	}
}

// AuthRegister регистрирует пользователя и сразу выполняет вход
func AuthRegister(auth SessionAuth) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
			return
		}

		user, err := auth.Register(c.Request.Context(), models.RegisterRequest{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
			Phone:    req.Phone,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, services.NewAuthState(user))
	}
}

// AuthLogout очищает сессию
func AuthLogout(auth SessionAuth) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth.Logout(c.Request.Context())
		c.JSON(http.StatusOK, services.NewAuthState(nil))
	}
}

// AuthMe возвращает текущее состояние входа
func AuthMe(auth SessionAuth) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, services.NewAuthState(auth.User()))
	}
}

// AppInfo возвращает настройки портала (режим, заголовок, пути)
func AppInfo(auth SessionAuth, simulation bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"app":               auth.App(),
			"paymentSimulation": simulation,
		})
	}
}
