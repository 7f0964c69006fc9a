package models

import "time"

// DriverLocation - последнее известное положение курьера.
// Каждое новое значение полностью заменяет предыдущее.
type DriverLocation struct {
	OrderID   string    `json:"orderId,omitempty"`
	DriverID  string    `json:"driverId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Heading   *float64  `json:"heading,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TrackingSnapshot - полный срез состояния отслеживания заказа
type TrackingSnapshot struct {
	OrderID           string             `json:"orderId"`
	Status            OrderStatus        `json:"status"`
	Driver            *TrackingDriver    `json:"driver"`
	Restaurant        TrackingRestaurant `json:"restaurant"`
	DeliveryAddress   *DeliveryAddress   `json:"deliveryAddress"`
	EstimatedDelivery *time.Time         `json:"estimatedDelivery,omitempty"`
}

// TrackingDriver - курьер в срезе отслеживания
type TrackingDriver struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Phone        string            `json:"phone,omitempty"`
	VehicleType  string            `json:"vehicleType,omitempty"`
	VehiclePlate string            `json:"vehiclePlate,omitempty"`
	Location     *SnapshotLocation `json:"location"`
}

// SnapshotLocation - положение курьера, встроенное в срез
type SnapshotLocation struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	LastUpdate time.Time `json:"lastUpdate"`
}

// TrackingRestaurant - ресторан в срезе отслеживания
type TrackingRestaurant struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}
