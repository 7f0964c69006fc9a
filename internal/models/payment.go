package models

import "time"

// PaymentMethod - способ оплаты, выбираемый при оформлении заказа
type PaymentMethod string

const (
	PaymentMethodPix        PaymentMethod = "PIX"
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentMethodCash       PaymentMethod = "CASH"
)

// PaymentMethods - фиксированный набор доступных способов оплаты
var PaymentMethods = []PaymentMethod{
	PaymentMethodPix,
	PaymentMethodCreditCard,
	PaymentMethodDebitCard,
	PaymentMethodCash,
}

// Valid проверяет, входит ли способ в фиксированный набор
func (m PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// IsCard - оплата картой через внешний шлюз
func (m PaymentMethod) IsCard() bool {
	return m == PaymentMethodCreditCard || m == PaymentMethodDebitCard
}

// PixChallenge - QR-код и код "copia e cola" для мгновенного перевода.
// Срок действия контролирует бэкенд, клиент его только показывает.
type PixChallenge struct {
	QRCode    string     `json:"pixQrCode"`
	Code      string     `json:"pixCode"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// CardPreference - сессия внешнего платежного шлюза
type CardPreference struct {
	InitPoint string `json:"initPoint"`
}

// CashPaymentRequest - подтверждение оплаты наличными
type CashPaymentRequest struct {
	OrderID string        `json:"orderId"`
	Method  PaymentMethod `json:"method"`
}
