package api

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	defaultErrorMessage  = "An error occurred"
	requestFailedMessage = "Request failed"
)

var (
	// ErrRequestFailed - сетевая ошибка или невозможность выполнить запрос
	ErrRequestFailed = errors.New(requestFailedMessage)
	// ErrSessionExpired - бэкенд отклонил токен (или токен уже истек)
	ErrSessionExpired = errors.New("session expired")
)

// APIError - ответ бэкенда со статусом вне диапазона 2xx
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// newAPIError достает поле message из тела ответа (строка или массив строк)
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: defaultErrorMessage}
	if !gjson.ValidBytes(body) {
		return apiErr
	}

	message := gjson.GetBytes(body, "message")
	switch {
	case message.IsArray():
		var parts []string
		for _, item := range message.Array() {
			if s := strings.TrimSpace(item.String()); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			apiErr.Message = strings.Join(parts, "; ")
		} else {
			apiErr.Message = requestFailedMessage
		}
	case message.String() != "":
		apiErr.Message = message.String()
	default:
		apiErr.Message = requestFailedMessage
	}
	return apiErr
}

// Message возвращает текст ошибки для показа пользователю
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return requestFailedMessage
}
