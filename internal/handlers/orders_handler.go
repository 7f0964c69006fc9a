package handlers

import (
	"net/http"

	"zefood-console/internal/models"
	"zefood-console/internal/services"

	"github.com/gin-gonic/gin"
)

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// OrdersList возвращает заказы доски; ?tab= фильтрует по вкладке
func OrdersList(board OrderBoard) gin.HandlerFunc {
	return func(c *gin.Context) {
		list := board.All()
		if tabName := c.Query("tab"); tabName != "" {
			tab, ok := services.ParseTab(tabName)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестная вкладка"})
				return
			}
			list = board.Orders(tab)
		}

		c.JSON(http.StatusOK, gin.H{
			"restaurantId": board.RestaurantID(),
			"orders":       list,
			"counts":       board.Counts(),
		})
	}
}

// OrderUpdateStatus меняет статус заказа
func OrderUpdateStatus(board OrderBoard) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		updated, err := board.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated": updated})
	}
}

// OrdersReload заново загружает профиль ресторана и заказы
func OrdersReload(board OrderBoard) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := board.Load(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"restaurantId": board.RestaurantID(),
			"orders":       board.All(),
			"counts":       board.Counts(),
		})
	}
}

// OrdersStopSound останавливает звук уведомления о новом заказе
func OrdersStopSound(board OrderBoard) gin.HandlerFunc {
	return func(c *gin.Context) {
		board.StopSound()
		c.Status(http.StatusNoContent)
	}
}
