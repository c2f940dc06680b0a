package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"

	"github.com/ColaboAI/WeGoGym-api/internal/bus"
	"github.com/ColaboAI/WeGoGym-api/internal/cache"
	"github.com/ColaboAI/WeGoGym-api/internal/handlers"
	"github.com/ColaboAI/WeGoGym-api/internal/middleware"
	"github.com/ColaboAI/WeGoGym-api/internal/push"
	"github.com/ColaboAI/WeGoGym-api/internal/repository"
	"github.com/ColaboAI/WeGoGym-api/internal/service"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName: "WeGoGym API",
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize database connection
	db, err := repository.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis (cache + pub/sub bus share one client)
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsedDB, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsedDB
		}
	}

	redisCache := cache.NewRedisCache(redisAddr, redisPassword, redisDB)
	var chatBus bus.Bus
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without cache; chat fan-out limited to this process.", err)
		redisCache = nil
		chatBus = bus.NewMemoryBus()
	} else {
		log.Println("Redis connected successfully")
		chatBus = bus.NewRedisBus(redisCache.Client())
	}
	chatCache := cache.NewChatCache(redisCache)

	// Push notifier (best-effort everywhere; dry-run without credentials)
	var notifier push.Notifier
	if credFile := os.Getenv("FIREBASE_CREDENTIALS"); credFile != "" {
		fcm, err := push.NewFCMNotifier(context.Background(), credFile)
		if err != nil {
			log.Printf("WARNING: FCM init failed: %v. Push notifications disabled.", err)
			notifier = push.NewLogNotifier()
		} else {
			log.Println("FCM notifier initialized successfully")
			notifier = fcm
		}
	} else {
		log.Println("FIREBASE_CREDENTIALS not set, push notifications run in dry-run mode")
		notifier = push.NewLogNotifier()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	blockRepo := repository.NewUserBlockRepository(db)
	roomRepo := repository.NewChatRoomRepository(db)
	memberRepo := repository.NewChatRoomMemberRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// Initialize services
	chatService := service.NewChatService(memberRepo, messageRepo, blockRepo, chatCache)
	roomService := service.NewRoomService(roomRepo, memberRepo, userRepo, chatService, chatCache)
	userService := service.NewUserService(userRepo, blockRepo)

	// Initialize handlers
	wsHandler := handlers.NewWebSocketHandler(chatService, userService, chatBus, notifier)
	chatHandler := handlers.NewChatHandler(roomService, chatService)
	userHandler := handlers.NewUserHandler(userService)

	// Protected routes
	api := app.Group("/api", middleware.OriginAllowed())
	protected := api.Group("/", middleware.AuthRequired())
	protected.Get("/users/me", userHandler.GetCurrentUser)
	protected.Put("/users/me/fcm-token", userHandler.UpdateFCMToken)
	protected.Post("/users/:user_id/block", userHandler.BlockUser)
	protected.Delete("/users/:user_id/block", userHandler.UnblockUser)

	chat := protected.Group("/chat", limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))
	chat.Post("/rooms", chatHandler.CreateRoom)
	chat.Get("/rooms", chatHandler.GetRooms)
	chat.Get("/rooms/:room_id", chatHandler.GetRoom)
	chat.Delete("/rooms/:room_id", chatHandler.DeleteRoom)
	chat.Get("/rooms/:room_id/members", chatHandler.GetMembers)
	chat.Post("/rooms/:room_id/leave", chatHandler.LeaveRoom)
	chat.Get("/rooms/:room_id/messages", chatHandler.GetMessages)

	// WebSocket route (websocket upgrade needs special handling)
	app.Use(
		"/ws",
		middleware.OriginAllowed(),
		middleware.AuthRequired(),
		func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		},
	)
	app.Get("/ws/chat/:room_id", websocket.New(wsHandler.HandleChat))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "WeGoGym API is running",
		})
	})

	// Graceful shutdown: close live sockets before the listener stops.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down...")
		wsHandler.GetRegistry().CloseAll()
		if err := app.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
