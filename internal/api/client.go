package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"zefood-console/internal/logger"
	"zefood-console/internal/metrics"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// TokenSource отдает текущий bearer токен из постоянного хранилища ("" - токена нет)
type TokenSource interface {
	Token(ctx context.Context) string
}

// SessionNotifier получает сигнал об истекшей сессии
type SessionNotifier interface {
	NotifyExpired(reason string)
}

// Options - параметры клиента REST API
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RateLimit  float64 // запросов в секунду, <= 0 - без ограничения
	Tokens     TokenSource
	Session    SessionNotifier
	Logger     logger.ILogger
	HTTPClient *http.Client
	Now        func() time.Time
}

// Client представляет клиент REST API бэкенда
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	tokens     TokenSource
	session    SessionNotifier
	log        logger.ILogger
	now        func() time.Time
	jwtParser  *jwt.Parser
}

// NewClient создает новый клиент для работы с API бэкенда
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		limiter:    limiter,
		tokens:     opts.Tokens,
		session:    opts.Session,
		log:        log,
		now:        now,
		jwtParser:  jwt.NewParser(),
	}
}

// Get выполняет GET запрос и декодирует ответ в out
func (c *Client) Get(ctx context.Context, endpoint string, out interface{}) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, out, true)
}

// Post выполняет POST запрос
func (c *Client) Post(ctx context.Context, endpoint string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, endpoint, body, out, true)
}

// Patch выполняет PATCH запрос
func (c *Client) Patch(ctx context.Context, endpoint string, body, out interface{}) error {
	return c.do(ctx, http.MethodPatch, endpoint, body, out, true)
}

// Put выполняет PUT запрос
func (c *Client) Put(ctx context.Context, endpoint string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, endpoint, body, out, true)
}

// Delete выполняет DELETE запрос
func (c *Client) Delete(ctx context.Context, endpoint string, out interface{}) error {
	return c.do(ctx, http.MethodDelete, endpoint, nil, out, true)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out interface{}, authenticated bool) error {
	token := ""
	if authenticated && c.tokens != nil {
		token = c.tokens.Token(ctx)
	}

	// Просроченный токен не отправляем, сразу объявляем об истечении сессии
	if token != "" && c.tokenExpired(token) {
		c.expire("token expired")
		return ErrSessionExpired
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ошибка при кодировании тела запроса: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.TrackBackendRequest(method, 0, time.Since(start))
		c.log.Warning("Ошибка при выполнении запроса к API",
			logger.String("method", method),
			logger.String("endpoint", endpoint),
			logger.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	metrics.TrackBackendRequest(method, resp.StatusCode, time.Since(start))
	if err != nil {
		return fmt.Errorf("%w: ошибка при чтении ответа: %v", ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, data)
		c.log.Debug("API вернул ошибку",
			logger.String("method", method),
			logger.String("endpoint", endpoint),
			logger.Int("status", resp.StatusCode),
			logger.String("message", apiErr.Message),
		)
		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			c.expire(apiErr.Message)
			return fmt.Errorf("%w: %w", ErrSessionExpired, apiErr)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("ошибка при декодировании ответа %s %s: %w", method, endpoint, err)
	}
	return nil
}

// tokenExpired читает exp из JWT без проверки подписи; непрозрачные токены считаются действующими
func (c *Client) tokenExpired(token string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := c.jwtParser.ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !c.now().Before(claims.ExpiresAt.Time)
}

func (c *Client) expire(reason string) {
	metrics.SessionExpiredTotal.Inc()
	if c.session == nil {
		return
	}
	c.log.Info("Сессия истекла", logger.String("reason", reason))
	c.session.NotifyExpired(reason)
}
