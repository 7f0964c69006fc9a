package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"zefood-console/internal/config"
	"zefood-console/internal/logger"
	"zefood-console/internal/models"
)

// ErrRoleNotAllowed - роль пользователя не допускается в текущий портал
var ErrRoleNotAllowed = errors.New("role not allowed in this portal")

// Authenticator - часть API бэкенда, нужная для входа
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
}

// Navigator переводит пользователя на другой экран
type Navigator interface {
	Navigate(path string)
}

// Auth - контекст авторизации консоли: текущий пользователь, токены и реакция на истечение сессии
type Auth struct {
	mu       sync.RWMutex
	storage  Storage
	api      Authenticator
	bus      *Bus
	nav      Navigator
	app      config.AppConfig
	log      logger.ILogger
	user     *models.User
	onChange func(*models.User)

	unsubscribe func()
}

// NewAuth создает контекст авторизации
func NewAuth(storage Storage, api Authenticator, bus *Bus, nav Navigator, app config.AppConfig, log logger.ILogger) *Auth {
	if log == nil {
		log = logger.NewNop()
	}
	return &Auth{
		storage: storage,
		api:     api,
		bus:     bus,
		nav:     nav,
		app:     app,
		log:     log,
	}
}

// Start подписывается на истечение сессии. Повторный вызов ничего не делает.
func (a *Auth) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.unsubscribe != nil || a.bus == nil {
		return
	}
	a.unsubscribe = a.bus.Subscribe(a.handleExpired)
}

// Close отписывается от канала истечения сессии
func (a *Auth) Close() {
	a.mu.Lock()
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	a.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// SetOnChange задает обработчик смены пользователя (вход, выход, истечение)
func (a *Auth) SetOnChange(fn func(*models.User)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onChange = fn
}

// Restore поднимает сессию из постоянного хранилища
func (a *Auth) Restore(ctx context.Context) error {
	token, err := a.storage.Get(ctx, KeyToken)
	if err != nil {
		return fmt.Errorf("ошибка при чтении токена: %w", err)
	}
	rawUser, err := a.storage.Get(ctx, KeyUser)
	if err != nil {
		return fmt.Errorf("ошибка при чтении пользователя: %w", err)
	}
	if token == "" || rawUser == "" {
		return nil
	}

	var user models.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		a.log.Error("Ошибка при разборе сохраненного пользователя", logger.Error(err))
		a.storage.Remove(ctx, KeyToken)
		a.storage.Remove(ctx, KeyUser)
		return nil
	}

	a.mu.Lock()
	a.user = &user
	a.mu.Unlock()
	return nil
}

// Login выполняет вход и сохраняет сессию
func (a *Auth) Login(ctx context.Context, email, password string) (*models.User, error) {
	resp, err := a.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return a.establish(ctx, resp)
}

// Register регистрирует пользователя и сохраняет сессию
func (a *Auth) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	resp, err := a.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return a.establish(ctx, resp)
}

// establish записывает все три ключа и только после этого уведомляет зависимых
func (a *Auth) establish(ctx context.Context, resp *models.AuthResponse) (*models.User, error) {
	if !a.app.RoleAllowed(resp.User.Role) {
		return nil, fmt.Errorf("%w: %s", ErrRoleNotAllowed, resp.User.Role)
	}

	rawUser, err := json.Marshal(resp.User)
	if err != nil {
		return nil, fmt.Errorf("ошибка при сериализации пользователя: %w", err)
	}

	a.mu.Lock()
	writes := []struct{ key, value string }{
		{KeyToken, resp.AccessToken},
		{KeyRefreshToken, resp.RefreshToken},
		{KeyUser, string(rawUser)},
	}
	for _, w := range writes {
		if err := a.storage.Set(ctx, w.key, w.value); err != nil {
			a.clearLocked(ctx)
			a.mu.Unlock()
			return nil, fmt.Errorf("ошибка при сохранении сессии: %w", err)
		}
	}
	user := resp.User
	a.user = &user
	onChange := a.onChange
	a.mu.Unlock()

	a.log.Info("Пользователь вошел в консоль", logger.String("user_id", user.ID), logger.String("role", user.Role))
	if onChange != nil {
		onChange(&user)
	}
	return &user, nil
}

// Logout очищает сессию
func (a *Auth) Logout(ctx context.Context) {
	a.mu.Lock()
	a.clearLocked(ctx)
	onChange := a.onChange
	a.mu.Unlock()

	if onChange != nil {
		onChange(nil)
	}
}

// handleExpired очищает все три ключа и переводит на страницу входа.
// Несколько запросов с 401 дают несколько событий; переход выполняется только для активной сессии.
func (a *Auth) handleExpired(e Expired) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.mu.Lock()
	active := a.clearLocked(ctx)
	onChange := a.onChange
	a.mu.Unlock()

	if !active {
		a.log.Debug("Сессия уже очищена", logger.String("reason", e.Reason))
		return
	}

	a.log.Warning("Сессия истекла, выполняем выход", logger.String("reason", e.Reason))
	if onChange != nil {
		onChange(nil)
	}
	if a.nav != nil {
		a.nav.Navigate(a.app.LoginPath)
	}
}

// clearLocked удаляет ключи сессии и сообщает, была ли сессия активна
func (a *Auth) clearLocked(ctx context.Context) bool {
	active := a.user != nil
	if token, err := a.storage.Get(ctx, KeyToken); err == nil && token != "" {
		active = true
	}
	for _, key := range Keys {
		if err := a.storage.Remove(ctx, key); err != nil {
			a.log.Error("Ошибка при очистке хранилища сессии", logger.String("key", key), logger.Error(err))
		}
	}
	a.user = nil
	return active
}

// Token возвращает токен из постоянного хранилища
func (a *Auth) Token(ctx context.Context) string {
	token, err := a.storage.Get(ctx, KeyToken)
	if err != nil {
		a.log.Error("Ошибка при чтении токена", logger.Error(err))
		return ""
	}
	return token
}

// User возвращает текущего пользователя (nil - не авторизован)
func (a *Auth) User() *models.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.user == nil {
		return nil
	}
	user := *a.user
	return &user
}

// IsAuthenticated - есть ли активная сессия
func (a *Auth) IsAuthenticated() bool {
	return a.User() != nil
}

// App возвращает конфигурацию портала
func (a *Auth) App() config.AppConfig {
	return a.app
}
