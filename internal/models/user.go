package models

// Роли пользователей платформы
const (
	RoleCustomer   = "CUSTOMER"
	RoleRestaurant = "RESTAURANT"
	RoleDriver     = "DRIVER"
	RoleAdmin      = "ADMIN"
)

// User - пользователь, вошедший в консоль
type User struct {
	ID       string    `json:"id"`
	Email    string    `json:"email"`
	Name     string    `json:"name,omitempty"`
	Phone    string    `json:"phone,omitempty"`
	Role     string    `json:"role"`
	Status   string    `json:"status,omitempty"`
	Customer *Customer `json:"customer,omitempty"`
}

// AuthResponse - ответ на вход и регистрацию
type AuthResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RegisterRequest - данные регистрации
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
}

// ProfileUpdate - изменяемые поля профиля
type ProfileUpdate struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}
