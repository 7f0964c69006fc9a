package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Config содержит настройки консоли оператора
type Config struct {
	ServiceName string
	LogFormat   string
	LogLevel    string
	GinMode     string
	Port        string

	APIURL       string
	WSURL        string
	APITimeout   time.Duration
	APIRateLimit float64

	Mode AppMode

	StorageDriver string
	StoragePath   string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	NotificationSound  string
	NotificationPlayer string

	CORSOrigins []string
}

// Load читает конфигурацию из окружения (и из .env, если файл есть)
func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "zefood-console"))
	cfg.LogFormat = cast.ToString(getOrReturnDefault("LOG_FORMAT", "console"))
	cfg.LogLevel = cast.ToString(getOrReturnDefault("LOG_LEVEL", "info"))
	cfg.GinMode = cast.ToString(getOrReturnDefault("GIN_MODE", "debug"))
	cfg.Port = cast.ToString(getOrReturnDefault("PORT", "8080"))

	cfg.APIURL = strings.TrimRight(cast.ToString(getOrReturnDefault("API_URL", "http://localhost:3001/api")), "/")
	cfg.WSURL = cast.ToString(getOrReturnDefault("WS_URL", DeriveWSURL(cfg.APIURL)))
	cfg.APITimeout = time.Duration(cast.ToInt(getOrReturnDefault("API_TIMEOUT_SECONDS", 15))) * time.Second
	cfg.APIRateLimit = cast.ToFloat64(getOrReturnDefault("API_RATE_LIMIT", 10))

	cfg.Mode = ParseMode(cast.ToString(getOrReturnDefault("APP_MODE", string(ModeRestaurant))))

	cfg.StorageDriver = cast.ToString(getOrReturnDefault("STORAGE_DRIVER", "file"))
	cfg.StoragePath = cast.ToString(getOrReturnDefault("STORAGE_PATH", "./.zefood/storage.json"))

	cfg.RedisHost = cast.ToString(getOrReturnDefault("REDIS_HOST", "localhost"))
	cfg.RedisPort = cast.ToString(getOrReturnDefault("REDIS_PORT", "6379"))
	cfg.RedisPassword = cast.ToString(getOrReturnDefault("REDIS_PASSWORD", ""))
	cfg.RedisDB = cast.ToInt(getOrReturnDefault("REDIS_DB", 0))

	cfg.NotificationSound = cast.ToString(getOrReturnDefault("NOTIFICATION_SOUND", "./public/notification.mp3"))
	cfg.NotificationPlayer = cast.ToString(getOrReturnDefault("NOTIFICATION_PLAYER", ""))

	cfg.CORSOrigins = splitList(cast.ToString(getOrReturnDefault("CORS_ORIGINS", "*")))

	return cfg
}

// App возвращает настройки портала для текущего режима
func (c Config) App() AppConfig {
	return AppFor(c.Mode)
}

// DeriveWSURL получает базовый адрес сокетов из адреса REST API (без /api)
func DeriveWSURL(apiURL string) string {
	return strings.TrimSuffix(strings.TrimRight(apiURL, "/"), "/api")
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
