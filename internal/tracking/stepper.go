package tracking

import (
	"strings"

	"zefood-console/internal/models"
)

// Steps - этапы прогресса заказа в порядке отображения
var Steps = []models.OrderStatus{
	models.OrderStatusConfirmed,
	models.OrderStatusPreparing,
	models.OrderStatusReady,
	models.OrderStatusPickedUp,
	models.OrderStatusInTransit,
	models.OrderStatusDelivered,
}

// enRoute - статусы, при которых курьер в пути и карта имеет смысл
var enRoute = map[models.OrderStatus]bool{
	models.OrderStatusPickedUp:       true,
	models.OrderStatusInTransit:      true,
	models.OrderStatusOutForDelivery: true,
}

var statusLabels = map[models.OrderStatus]string{
	models.OrderStatusPending:        "Aguardando confirmacao",
	models.OrderStatusConfirmed:      "Pedido confirmado",
	models.OrderStatusPreparing:      "Preparando seu pedido",
	models.OrderStatusReady:          "Pronto para retirada",
	models.OrderStatusPickedUp:       "Entregador retirou o pedido",
	models.OrderStatusInTransit:      "Pedido a caminho",
	models.OrderStatusOutForDelivery: "Saiu para entrega",
	models.OrderStatusDelivered:      "Entregue",
	models.OrderStatusCancelled:      "Cancelado",
}

// StepIndex возвращает индекс этапа. Неизвестный статус дает 0.
func StepIndex(status models.OrderStatus) int {
	for i, s := range Steps {
		if s == status {
			return i
		}
	}
	return 0
}

// EnRoute - курьер везет заказ
func EnRoute(status models.OrderStatus) bool {
	return enRoute[status]
}

// Label возвращает подпись статуса для клиента; неизвестный статус выводится как есть
func Label(status models.OrderStatus) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return string(status)
}

// FormatAddress собирает адрес доставки в одну строку
func FormatAddress(addr *models.DeliveryAddress) string {
	if addr == nil {
		return "Endereco nao disponivel"
	}

	var b strings.Builder
	b.WriteString(addr.Street)
	b.WriteString(", ")
	b.WriteString(addr.Number)
	if addr.Complement != "" {
		b.WriteString(" - ")
		b.WriteString(addr.Complement)
	}
	b.WriteString(", ")
	b.WriteString(addr.Neighborhood)
	return b.String()
}
