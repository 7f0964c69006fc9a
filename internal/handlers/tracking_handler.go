package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TrackingOpen начинает отслеживание заказа
func TrackingOpen(svc TrackingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := svc.Open(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// TrackingGet возвращает текущее состояние отслеживания
func TrackingGet(svc TrackingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, ok := svc.Get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Отслеживание не открыто"})
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// TrackingClose завершает отслеживание
func TrackingClose(svc TrackingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !svc.Close(c.Param("id")) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Отслеживание не открыто"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
