package main

import (
	"face-similarity/internal/api/handlers"
	"face-similarity/internal/api/middleware"
	"face-similarity/internal/api/websocket"
	"face-similarity/internal/config"
	"face-similarity/internal/repository"
	"face-similarity/internal/service/cache"
	"face-similarity/internal/service/comparator"
	"face-similarity/internal/service/metric"
	"face-similarity/internal/service/storage"
	"face-similarity/pkg/encoder_client"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func main() {
	// ASCII баннер
	printBanner()

	// Загружаем конфигурацию
	cfg := config.Load()
	log.Println("✅ Конфигурация загружена")

	// Инициализируем базу данных
	db, err := initDatabase(cfg.Database.GetDSN())
	if err != nil {
		log.Fatalf("❌ Ошибка подключения к БД: %v\n", err)
	}
	defer db.Close()
	log.Println("✅ База данных подключена")

	// Инициализируем Redis кэш
	var cacheService *cache.Service
	cacheService, err = cache.NewService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("⚠️  Redis недоступен (работаем без кэша): %v\n", err)
		cacheService = nil
	} else {
		defer cacheService.Close()
		log.Println("✅ Redis кэш подключен")
	}

	// Инициализируем репозиторий
	repo := repository.NewRepository(db)

	// Инициализируем storage service
	storageService, err := storage.NewService(cfg.Storage.UploadsDir)
	if err != nil {
		log.Fatalf("❌ Ошибка инициализации storage: %v\n", err)
	}
	log.Println("✅ Storage сервис инициализирован")

	// Инициализируем клиент сервера детекции
	distanceFunc, err := metric.ByName(metric.Metric(cfg.Encoder.Metric))
	if err != nil {
		log.Fatalf("❌ Неверная метрика расстояния: %v\n", err)
	}
	encoderClient := encoder_client.NewClientWithMetric(cfg.Encoder.BaseURL, distanceFunc)

	// Проверяем доступность сервера детекции
	if err := encoderClient.HealthCheck(); err != nil {
		log.Printf("⚠️  Предупреждение: сервер детекции недоступен: %v\n", err)
	} else {
		log.Println("✅ Сервер детекции доступен")
	}

	// Оборачиваем encoder кэшем encodings (по SHA-256 содержимого файла)
	var encoder comparator.Encoder = cache.NewCachedEncoder(
		encoderClient, cacheService, storageService.FileSHA256,
	)

	// Инициализируем WebSocket manager
	wsManager := websocket.NewManager()
	go wsManager.Run() // Запускаем в отдельной горутине
	log.Println("✅ WebSocket manager запущен")

	// Инициализируем handlers
	handler := handlers.NewHandler(repo, storageService, encoder, cacheService, wsManager)

	// Создаем роутер
	router := setupRouter(handler, wsManager, cfg)

	// Запускаем сервер
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	log.Println("🎉 Сервер успешно запущен!")
	log.Printf("📡 API: http://localhost:%s/api\n", cfg.Server.Port)
	log.Printf("🔌 WebSocket: ws://localhost:%s/ws\n", cfg.Server.Port)
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	if err := router.Run(addr); err != nil {
		log.Fatalf("❌ Ошибка запуска сервера: %v\n", err)
	}
}

// initDatabase инициализирует подключение к базе данных
func initDatabase(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, err
	}

	// Проверяем подключение
	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

// setupRouter настраивает роутер с middleware и endpoints
func setupRouter(handler *handlers.Handler, wsManager *websocket.Manager, cfg *config.Config) *gin.Engine {
	router := gin.Default()

	// Middleware
	router.Use(middleware.CORS())
	router.Use(middleware.Recovery())

	// Сохраненные пары изображений
	router.Static("/uploads", cfg.Storage.UploadsDir)

	// WebSocket endpoint
	wsHandler := websocket.NewHandler(wsManager)
	router.GET("/ws", wsHandler.HandleWebSocket)

	// API группа
	api := router.Group("/api")
	{
		// Сравнение лиц
		api.POST("/compare", handler.HandleCompare)

		// История сравнений
		api.GET("/comparisons", handler.HandleGetComparisons)
		api.GET("/comparisons/:id", handler.HandleGetComparison)
		api.DELETE("/comparisons/:id", handler.HandleDeleteComparison)

		// Статистика
		api.GET("/stats", handler.HandleGetStats)
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "face-similarity-api",
			"version": "1.0.0",
		})
	})

	return router
}

// printBanner печатает баннер при старте
func printBanner() {
	banner := `
╔═══════════════════════════════════════════════════════╗
║                                                       ║
║   🎭  FACE SIMILARITY SERVICE                        ║
║                                                       ║
║   Сравнение лиц на двух изображениях                  ║
║   через внешний сервер детекции                       ║
║                                                       ║
║   Версия: 1.0.0                                      ║
║                                                       ║
╚═══════════════════════════════════════════════════════╝
`
	fmt.Println(banner)
	log.Println("🚀 Инициализация сервисов...")
}
