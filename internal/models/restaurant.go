package models

// Restaurant - ресторан платформы
type Restaurant struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Slug          string  `json:"slug,omitempty"`
	Description   string  `json:"description,omitempty"`
	LogoURL       string  `json:"logoUrl,omitempty"`
	Phone         string  `json:"phone,omitempty"`
	Street        string  `json:"street,omitempty"`
	Number        string  `json:"number,omitempty"`
	Neighborhood  string  `json:"neighborhood,omitempty"`
	City          string  `json:"city,omitempty"`
	State         string  `json:"state,omitempty"`
	Status        string  `json:"status,omitempty"`
	IsOpen        bool    `json:"isOpen"`
	Rating        float64 `json:"rating,omitempty"`
	MinOrderValue float64 `json:"minOrderValue,omitempty"`
	DeliveryFee   float64 `json:"deliveryFee,omitempty"`
	AvgPrepTime   int     `json:"avgPrepTime,omitempty"`
}

// Category - категория ресторанов
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Icon string `json:"icon,omitempty"`
}

// MenuCategory - раздел меню
type MenuCategory struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Items       []MenuItem `json:"items"`
}

// PageMeta - метаданные постраничной выдачи
type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// RestaurantPage - страница списка ресторанов
type RestaurantPage struct {
	Data []Restaurant `json:"data"`
	Meta PageMeta     `json:"meta"`
}

// OrderPage - страница списка заказов
type OrderPage struct {
	Data []Order  `json:"data"`
	Meta PageMeta `json:"meta"`
}
