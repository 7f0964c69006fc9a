package config

import "strings"

// AppMode - режим портала: ресторан или администрирование
type AppMode string

const (
	ModeRestaurant AppMode = "restaurant"
	ModeAdmin      AppMode = "admin"
)

// AppConfig описывает портал, который обслуживает консоль
type AppConfig struct {
	Mode          AppMode  `json:"mode"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	LoginPath     string   `json:"loginPath"`
	LoginRedirect string   `json:"loginRedirect"`
	DashboardPath string   `json:"dashboardPath"`
	AllowedRoles  []string `json:"allowedRoles"`
}

var apps = map[AppMode]AppConfig{
	ModeRestaurant: {
		Mode:          ModeRestaurant,
		Title:         "Portal do Restaurante",
		Description:   "Gerencie seu restaurante",
		LoginPath:     "/auth/login",
		LoginRedirect: "/restaurant",
		DashboardPath: "/restaurant",
		AllowedRoles:  []string{"RESTAURANT"},
	},
	ModeAdmin: {
		Mode:          ModeAdmin,
		Title:         "Painel Administrativo",
		Description:   "Administração da plataforma ZeFood",
		LoginPath:     "/auth/login",
		LoginRedirect: "/admin",
		DashboardPath: "/admin",
		AllowedRoles:  []string{"ADMIN"},
	},
}

// ParseMode приводит строку к режиму; все, кроме "admin", считается рестораном
func ParseMode(value string) AppMode {
	if strings.EqualFold(strings.TrimSpace(value), string(ModeAdmin)) {
		return ModeAdmin
	}
	return ModeRestaurant
}

// ModeFromHost определяет режим по имени хоста (admin.* или содержит admin)
func ModeFromHost(host string) AppMode {
	host = strings.ToLower(host)
	if i := strings.LastIndex(host, ":"); i >= 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	if strings.HasPrefix(host, "admin.") || strings.Contains(host, "admin") {
		return ModeAdmin
	}
	return ModeRestaurant
}

// AppFor возвращает конфигурацию портала
func AppFor(mode AppMode) AppConfig {
	if cfg, ok := apps[mode]; ok {
		return cfg
	}
	return apps[ModeRestaurant]
}

// RoleAllowed проверяет, может ли роль войти в портал
func (a AppConfig) RoleAllowed(role string) bool {
	for _, allowed := range a.AllowedRoles {
		if allowed == role {
			return true
		}
	}
	return false
}
