package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zefood-console/internal/api"
	"zefood-console/internal/checkout"
	"zefood-console/internal/config"
	"zefood-console/internal/db"
	"zefood-console/internal/logger"
	"zefood-console/internal/middleware"
	"zefood-console/internal/models"
	"zefood-console/internal/orders"
	"zefood-console/internal/routes"
	"zefood-console/internal/services"
	"zefood-console/internal/session"
	"zefood-console/internal/socketio"
	"zefood-console/internal/sound"
	"zefood-console/internal/tracking"
	"zefood-console/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newStorage выбирает постоянное хранилище сессии по STORAGE_DRIVER
func newStorage(cfg config.Config, log logger.ILogger) (session.Storage, *redis.Client) {
	switch cfg.StorageDriver {
	case "redis":
		client, err := db.NewRedisClient(cfg)
		if err != nil {
			log.Warning("Redis недоступен, сессия хранится в памяти", logger.Error(err))
			return session.NewMemoryStorage(), nil
		}
		log.Info("Успешное подключение к Redis")
		return session.NewRedisStorage(client, cfg.ServiceName+":"), client
	case "memory":
		return session.NewMemoryStorage(), nil
	default:
		storage, err := session.NewFileStorage(cfg.StoragePath)
		if err != nil {
			log.Warning("Файл сессии недоступен, сессия хранится в памяти", logger.Error(err), logger.String("path", cfg.StoragePath))
			return session.NewMemoryStorage(), nil
		}
		return storage, nil
	}
}

func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LogFormat, cfg.LogLevel)

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, redisClient := newStorage(cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Браузер получает события консоли через WebSocket
	hub := websocket.NewManager(logger.Named(log, "websocket"))
	hub.Start(ctx)
	navigator := websocket.Navigator{Manager: hub}

	bus := session.NewBus()
	client := api.NewClient(api.Options{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.APITimeout,
		RateLimit: cfg.APIRateLimit,
		Tokens:    session.Tokens{Storage: storage},
		Session:   bus,
		Logger:    logger.Named(log, "api"),
	})
	auth := session.NewAuth(storage, client, bus, navigator, cfg.App(), logger.Named(log, "session"))
	auth.Start()

	socketAuth := func() map[string]interface{} {
		return map[string]interface{}{"token": auth.Token(context.Background())}
	}

	hub.SetGreeting(func() []websocket.Message {
		return []websocket.Message{{Type: websocket.AuthStateType, Payload: services.NewAuthState(auth.User())}}
	})

	trackingSessions := services.NewTrackingSessions(func(orderID string) (tracking.Socket, error) {
		socket, err := socketio.NewClient(socketio.Options{
			URL:       cfg.WSURL,
			Namespace: tracking.Namespace,
			Auth:      socketAuth,
			Logger:    logger.Named(log, "tracking").With(logger.String("order_id", orderID)),
		})
		if err != nil {
			return nil, err
		}
		return socket, nil
	}, hub, logger.Named(log, "tracking"))

	checkoutSessions := services.NewCheckoutSessions(services.CheckoutOptions{
		API:       client,
		Navigator: navigator,
		Clipboard: websocket.Clipboard{Manager: hub},
	}, hub, logger.Named(log, "checkout"))

	deps := routes.Deps{
		Auth:       auth,
		Tracking:   trackingSessions,
		Checkout:   checkoutSessions,
		Simulation: checkout.SimulationEnabled(),
	}

	// Доска заказов работает только в портале ресторана
	var board *services.Board
	if cfg.Mode == config.ModeRestaurant {
		out := sound.NewOutput(cfg.NotificationPlayer)
		if closer, ok := out.(interface{ Close() error }); ok {
			defer closer.Close()
		}
		player := sound.NewPlayer(cfg.NotificationSound, out, logger.Named(log, "sound"))
		notifier := services.NewNotificationService(player, hub, logger.Named(log, "notifications"))

		socket, err := socketio.NewClient(socketio.Options{
			URL:    cfg.WSURL,
			Auth:   socketAuth,
			Logger: logger.Named(log, "orders-socket"),
		})
		if err != nil {
			log.Error("Неверный адрес сокетов", logger.Error(err), logger.String("url", cfg.WSURL))
			os.Exit(1)
		}
		events := orders.NewEventsClient(socket, logger.Named(log, "orders"))
		board = services.NewBoard(client, events, notifier, hub, logger.Named(log, "board"))
		deps.Board = board
	}

	startBoard := func() {
		if board == nil {
			return
		}
		if err := board.Load(ctx); err != nil {
			log.Error("Доска заказов загружена не полностью", logger.Error(err))
		}
		if err := board.Connect(ctx); err != nil {
			log.Error("Ошибка подключения к событиям заказов", logger.Error(err))
		}
	}

	auth.SetOnChange(func(user *models.User) {
		services.SendAuthState(hub, user)
		if user == nil {
			trackingSessions.CloseAll()
			checkoutSessions.CloseAll()
			return
		}
		go startBoard()
	})

	if err := auth.Restore(ctx); err != nil {
		log.Info("Сохраненная сессия не восстановлена", logger.Error(err))
	}
	if auth.IsAuthenticated() {
		go startBoard()
	}

	r := gin.New()

	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.PrometheusMiddleware())

	r.SetTrustedProxies([]string{"127.0.0.1"})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"mode":   cfg.Mode,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	routes.SetupRoutes(r.Group("/api"), deps)

	r.GET("/ws", hub.Handler())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("Консоль запущена", logger.String("port", cfg.Port), logger.String("mode", string(cfg.Mode)))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Ошибка запуска сервера", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Получен сигнал завершения, закрываем соединения...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Ошибка при graceful shutdown", logger.Error(err))
	}

	trackingSessions.CloseAll()
	checkoutSessions.CloseAll()
	if board != nil {
		board.Close()
	}
	auth.Close()
	<-hub.Done()

	log.Info("Консоль корректно завершила работу")
}
