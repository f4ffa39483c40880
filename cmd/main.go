package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"voisafe/backend/internal/api/handler"
	"voisafe/backend/internal/auth"
	"voisafe/backend/internal/chathub"
	"voisafe/backend/internal/complaint"
	"voisafe/backend/internal/config"
	"voisafe/backend/internal/crypto"
	"voisafe/backend/internal/jobs"
	"voisafe/backend/internal/models"
	"voisafe/backend/internal/notify"
	"voisafe/backend/internal/storage"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true, // gorm.ErrDuplicatedKey замість сирих помилок драйвера
	})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	// 2. Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	// Перевірка з'єднання Redis
	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	// 3. Міграції (Створення таблиць)
	err = db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Complaint{},
		&models.Attachment{},
		&models.AdminNote{},
		&models.StatusEntry{},
		&models.ComplaintTracking{},
		&models.IdentityAccessLog{},
		&models.ChatMessage{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting VoiSafe Backend...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// 1. Ініціалізація залежностей
	db, rdb := setupDependencies(cfg)

	cipher, err := crypto.NewCipher(cfg.EncryptionKey)
	if err != nil {
		log.Fatalf("Failed to initialize identity cipher: %v", err)
	}
	s := storage.NewStorageService(db, rdb, cipher)

	complaintSvc := complaint.NewService(s)
	if cfg.TelegramBotToken != "" && cfg.TelegramAdminChatID != 0 {
		notifier, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramAdminChatID)
		if err != nil {
			log.Fatalf("Не вдалося запустити Telegram-бота: %v", err)
		}
		complaintSvc.Notifier = notifier
	} else {
		log.Println("Warning: Telegram notifier disabled (no token or chat id)")
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)

	// 2. Ініціалізація Chat Hub
	hub := chathub.NewManagerService(s, complaintSvc, s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Запуск основних Goroutines
	go hub.Run(ctx) // Головний диспетчер

	sched, err := jobs.NewScheduler(s)
	if err != nil {
		log.Fatalf("Failed to set up maintenance scheduler: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// 4. Налаштування Gin та роутингу
	r := gin.Default()
	h := handler.NewHandler(complaintSvc, hub, tokens, s)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
	})

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)

		authed := api.Group("", auth.Authenticate(tokens, s))
		{
			authed.GET("/auth/me", h.Me)

			// Студентські маршрути.
			authed.POST("/complaints", auth.Require(auth.CapFileComplaint), h.FileComplaint)
			authed.GET("/complaints/track/:trackingId", auth.Require(auth.CapTrackOwn), h.TrackComplaint)
			authed.GET("/complaints/my-complaints", auth.Require(auth.CapTrackOwn), h.MyComplaints)

			// Адміністративні маршрути (tenant-scoped).
			authed.GET("/complaints", auth.Require(auth.CapListTenant), h.ListComplaints)
			authed.GET("/complaints/:id", auth.Require(auth.CapViewDetail), h.GetComplaint)
			authed.PUT("/complaints/:id/status", auth.Require(auth.CapUpdateStatus), h.UpdateStatus)
			authed.POST("/complaints/:id/notes", auth.Require(auth.CapAddNote), h.AddNote)
			authed.POST("/complaints/:id/reveal-identity", auth.Require(auth.CapRevealIdentity), h.RevealIdentity)

			authed.GET("/ws", h.ServeWebSocket) // WebSocket Upgrade
		}
	}

	// Запуск HTTP-сервера
	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
