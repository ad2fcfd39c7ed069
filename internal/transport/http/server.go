package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogpulse/internal/cache"
	"blogpulse/internal/config"
	"blogpulse/internal/database"
	"blogpulse/internal/handler"
	"blogpulse/internal/queue"
	appredis "blogpulse/internal/redis"
	"blogpulse/internal/repository"
	"blogpulse/internal/service"
	"blogpulse/internal/worker"
)

// Run wires the application together and serves HTTP until interrupted.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := appredis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Println("Connected to Redis successfully")

	// Repositories
	postRepo := repository.NewPostRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	commentLikeRepo := repository.NewCommentLikeRepository(db)

	// Queue and cache
	publisher := queue.NewPublisher(redisClient.Client)
	consumer := queue.NewConsumer(redisClient.Client)
	trending := cache.NewTrendingCache(redisClient.Client)

	// Services
	viewService := service.NewViewService(engagementRepo, postRepo, db, publisher, cfg.ViewWindow)
	likeService := service.NewLikeService(engagementRepo, commentLikeRepo, commentRepo, postRepo, db, publisher)
	commentService := service.NewCommentService(commentRepo, commentLikeRepo, postRepo, db)
	engagementService := service.NewEngagementService(viewService, likeService, commentService)
	postService := service.NewPostService(postRepo, trending, publisher)
	authService := service.NewAuthService(cfg)

	// Media is optional: without object storage config the upload endpoint
	// is simply not mounted.
	var mediaHandler *handler.MediaHandler
	mediaService, err := service.NewMediaService(ctx, cfg)
	if err != nil {
		log.Printf("Media uploads disabled: %v", err)
	} else {
		mediaHandler = handler.NewMediaHandler(mediaService)
	}

	// Background workers: trending cache updates plus view-ledger hygiene.
	workerHandler := worker.NewHandler(trending)
	workerCfg := worker.DefaultManagerConfig()
	workerCfg.ViewRetention = cfg.ViewRetention
	manager := worker.NewManager(consumer, workerHandler, viewService, workerCfg)
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	defer manager.Stop()

	router := NewRouter(RouterConfig{
		AuthHandler:       handler.NewAuthHandler(authService, cfg),
		PostHandler:       handler.NewPostHandler(postService),
		EngagementHandler: handler.NewEngagementHandler(engagementService),
		CommentHandler:    handler.NewCommentHandler(engagementService),
		AdminHandler:      handler.NewAdminHandler(commentService, postService),
		MediaHandler:      mediaHandler,
		JWTSecret:         cfg.JWTSecret,
	})

	server := &stdhttp.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Printf("Received signal %v, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}
