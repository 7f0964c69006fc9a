package api

import (
	"context"
	"fmt"
	"net/url"

	"zefood-console/internal/models"
)

// GetMyRestaurant возвращает профиль ресторана текущего оператора
func (c *Client) GetMyRestaurant(ctx context.Context) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := c.Get(ctx, "/restaurants/my/profile", &restaurant); err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// GetMyOrders возвращает заказы ресторана оператора
func (c *Client) GetMyOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.Get(ctx, "/restaurants/my/orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus запрашивает смену статуса заказа. Бэкенд может отклонить переход.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	body := map[string]models.OrderStatus{"status": status}
	return c.Patch(ctx, fmt.Sprintf("/orders/%s/status", url.PathEscape(orderID)), body, nil)
}
