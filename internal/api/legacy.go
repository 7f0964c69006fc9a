package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"zefood-console/internal/models"
)

// RestaurantQuery - фильтры списка ресторанов
type RestaurantQuery struct {
	CategoryID string
	Search     string
	Page       int
}

// Login выполняет вход по email и паролю
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RefreshToken обменивает refresh токен на новую пару токенов
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	body := map[string]string{"refreshToken": refreshToken}
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", body, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRestaurants возвращает страницу ресторанов
func (c *Client) GetRestaurants(ctx context.Context, q RestaurantQuery) (*models.RestaurantPage, error) {
	params := url.Values{}
	if q.CategoryID != "" {
		params.Set("categoryId", q.CategoryID)
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}

	endpoint := "/restaurants"
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var page models.RestaurantPage
	if err := c.Get(ctx, endpoint, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetRestaurantBySlug возвращает ресторан по slug
func (c *Client) GetRestaurantBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := c.Get(ctx, "/restaurants/"+url.PathEscape(slug), &restaurant); err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// GetRestaurantMenu возвращает меню ресторана
func (c *Client) GetRestaurantMenu(ctx context.Context, restaurantID string) ([]models.MenuCategory, error) {
	var menu []models.MenuCategory
	if err := c.Get(ctx, fmt.Sprintf("/restaurants/%s/menu", url.PathEscape(restaurantID)), &menu); err != nil {
		return nil, err
	}
	return menu, nil
}

// GetCategories возвращает категории ресторанов
func (c *Client) GetCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := c.Get(ctx, "/restaurants/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateOrder создает заказ
func (c *Client) CreateOrder(ctx context.Context, req interface{}) (*models.Order, error) {
	var order models.Order
	if err := c.Post(ctx, "/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrders возвращает заказы текущего пользователя
func (c *Client) GetOrders(ctx context.Context, page int) (*models.OrderPage, error) {
	if page < 1 {
		page = 1
	}
	var orders models.OrderPage
	if err := c.Get(ctx, fmt.Sprintf("/orders?page=%d", page), &orders); err != nil {
		return nil, err
	}
	return &orders, nil
}

// GetOrder возвращает заказ по ID
func (c *Client) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := c.Get(ctx, "/orders/"+url.PathEscape(orderID), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetProfile возвращает профиль текущего пользователя
func (c *Client) GetProfile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.Get(ctx, "/users/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile обновляет имя и телефон пользователя
func (c *Client) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := c.Patch(ctx, "/users/me", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
