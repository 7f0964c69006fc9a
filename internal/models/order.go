package models

import "time"

// OrderStatus - статус жизненного цикла заказа (принадлежит бэкенду)
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "PENDING"
	OrderStatusPaid           OrderStatus = "PAID"
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusAccepted       OrderStatus = "ACCEPTED"
	OrderStatusPreparing      OrderStatus = "PREPARING"
	OrderStatusReady          OrderStatus = "READY"
	OrderStatusPickedUp       OrderStatus = "PICKED_UP"
	OrderStatusInTransit      OrderStatus = "IN_TRANSIT"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
	OrderStatusRejected       OrderStatus = "REJECTED"
)

// PaymentStatus - статус оплаты заказа
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// Order - копия заказа, полученная от бэкенда. Клиент ее не изменяет.
type Order struct {
	ID              string           `json:"id"`
	OrderNumber     int              `json:"orderNumber,omitempty"`
	Status          OrderStatus      `json:"status"`
	Subtotal        float64          `json:"subtotal"`
	DeliveryFee     float64          `json:"deliveryFee"`
	Discount        float64          `json:"discount"`
	Total           float64          `json:"total"`
	PaymentMethod   PaymentMethod    `json:"paymentMethod,omitempty"`
	PaymentStatus   PaymentStatus    `json:"paymentStatus,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	DriverID        string           `json:"driverId,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	Restaurant      *Restaurant      `json:"restaurant,omitempty"`
	Customer        *Customer        `json:"customer,omitempty"`
	DeliveryAddress *DeliveryAddress `json:"deliveryAddress,omitempty"`
	Items           []OrderItem      `json:"items,omitempty"`
}

// OrderItem - позиция заказа
type OrderItem struct {
	ID         string    `json:"id"`
	Name       string    `json:"name,omitempty"`
	Quantity   int       `json:"quantity"`
	UnitPrice  float64   `json:"unitPrice"`
	TotalPrice float64   `json:"totalPrice,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	MenuItem   *MenuItem `json:"menuItem,omitempty"`
}

// MenuItem - позиция меню ресторана
type MenuItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	IsAvailable bool    `json:"isAvailable"`
	PrepTime    int     `json:"prepTime,omitempty"`
}

// Customer - покупатель
type Customer struct {
	ID       string `json:"id,omitempty"`
	FullName string `json:"fullName"`
	CPF      string `json:"cpf,omitempty"`
}

// DeliveryAddress - адрес доставки
type DeliveryAddress struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state,omitempty"`
}

// OrderStatusUpdate - событие смены статуса заказа
type OrderStatusUpdate struct {
	OrderID string      `json:"orderId"`
	Status  OrderStatus `json:"status"`
	Order   *Order      `json:"order,omitempty"`
}
