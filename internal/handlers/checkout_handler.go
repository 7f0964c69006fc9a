package handlers

import (
	"errors"
	"net/http"

	"zefood-console/internal/checkout"
	"zefood-console/internal/models"

	"github.com/gin-gonic/gin"
)

type SelectMethodRequest struct {
	Method models.PaymentMethod `json:"method" binding:"required"`
}

// CheckoutOpen открывает оплату заказа
func CheckoutOpen(svc CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := svc.Open(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// CheckoutGet возвращает состояние оплаты
func CheckoutGet(svc CheckoutService) gin.HandlerFunc {
	return withFlow(svc, func(c *gin.Context, flow *checkout.Flow) {
		c.JSON(http.StatusOK, flow.View())
	})
}

// CheckoutClose закрывает оплату и останавливает опрос
func CheckoutClose(svc CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !svc.Close(c.Param("id")) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Оплата не открыта"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// CheckoutSelectMethod выбирает способ оплаты
func CheckoutSelectMethod(svc CheckoutService) gin.HandlerFunc {
	return withFlow(svc, func(c *gin.Context, flow *checkout.Flow) {
		var req SelectMethodRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := flow.Select(req.Method); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, flow.View())
	})
}

// CheckoutSubmit отправляет оплату. Ошибка оплаты не меняет код ответа:
// сценарий остается на выборе способа с сообщением в поле error.
func CheckoutSubmit(svc CheckoutService) gin.HandlerFunc {
	return withFlow(svc, func(c *gin.Context, flow *checkout.Flow) {
		err := flow.Submit(c.Request.Context())
		if err != nil && !errors.Is(err, checkout.ErrPaymentFailed) {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, flow.View())
	})
}

// CheckoutCopy копирует код Pix в буфер обмена браузера
func CheckoutCopy(svc CheckoutService) gin.HandlerFunc {
	return withFlow(svc, func(c *gin.Context, flow *checkout.Flow) {
		if err := flow.CopyCode(); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, flow.View())
	})
}

// CheckoutBack возвращает к выбору способа оплаты
func CheckoutBack(svc CheckoutService) gin.HandlerFunc {
	return withFlow(svc, func(c *gin.Context, flow *checkout.Flow) {
		if err := flow.Back(); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, flow.View())
	})
}

// CheckoutSimulate принудительно подтверждает оплату (только сборка с paymentsim)
func CheckoutSimulate(svc CheckoutService) gin.HandlerFunc {
	return withFlow(svc, func(c *gin.Context, flow *checkout.Flow) {
		if err := flow.Simulate(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, flow.View())
	})
}

func withFlow(svc CheckoutService, next func(c *gin.Context, flow *checkout.Flow)) gin.HandlerFunc {
	return func(c *gin.Context) {
		flow, ok := svc.Get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Оплата не открыта"})
			return
		}
		next(c, flow)
	}
}
