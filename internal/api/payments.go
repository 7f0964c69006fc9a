package api

import (
	"context"
	"net/url"

	"zefood-console/internal/models"
)

// CreatePixPayment запрашивает QR-код и код Pix для заказа
func (c *Client) CreatePixPayment(ctx context.Context, orderID string) (*models.PixChallenge, error) {
	var challenge models.PixChallenge
	if err := c.Post(ctx, "/payments/pix/"+url.PathEscape(orderID), nil, &challenge); err != nil {
		return nil, err
	}
	return &challenge, nil
}

// CreateCardPreference создает сессию во внешнем платежном шлюзе и возвращает адрес перехода
func (c *Client) CreateCardPreference(ctx context.Context, orderID string) (string, error) {
	var pref models.CardPreference
	if err := c.Post(ctx, "/payments/mercadopago/create-preference/"+url.PathEscape(orderID), nil, &pref); err != nil {
		return "", err
	}
	return pref.InitPoint, nil
}

// ProcessCashPayment подтверждает оплату наличными при получении
func (c *Client) ProcessCashPayment(ctx context.Context, orderID string) error {
	body := models.CashPaymentRequest{OrderID: orderID, Method: models.PaymentMethodCash}
	return c.Post(ctx, "/payments/process", body, nil)
}

// SimulatePayment принудительно отмечает заказ оплаченным (только не-продакшен бэкенды)
func (c *Client) SimulatePayment(ctx context.Context, orderID string) error {
	return c.Post(ctx, "/payments/simulate/"+url.PathEscape(orderID), nil, nil)
}
