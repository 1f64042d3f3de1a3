package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/postdock/postdock/configs"
	"github.com/postdock/postdock/internal/api/handlers"
	"github.com/postdock/postdock/internal/api/middleware"
	"github.com/postdock/postdock/internal/drafts"
	job "github.com/postdock/postdock/internal/jobs"
	"github.com/postdock/postdock/internal/queue"
	"github.com/postdock/postdock/internal/repository"
	"github.com/postdock/postdock/internal/service"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewScheduledPostRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	publishHistoryRepo := repository.NewPublishHistoryRepository(db)
	apiKeyRepository := repository.NewApiKeyRepository(db)

	draftStore := drafts.NewStore()

	userService := service.NewUserService(userRepo)
	r2Service := service.NewR2Service(*cfg)
	aiService := service.NewAIService(*cfg)
	draftService := service.NewDraftService(*cfg, draftStore, aiService, assetRepo, r2Service)
	postService := service.NewPostService(db, postRepo, socialAccountRepo, userRepo, publishHistoryRepo)
	accountService := service.NewAccountService(*cfg, socialAccountRepo)
	twitterService := service.NewTwitterService(*cfg, socialAccountRepo)
	linkedinService := service.NewLinkedinService(*cfg, socialAccountRepo)
	hackerNewsService := service.NewHackerNewsService(*cfg, socialAccountRepo)
	apiKeyService := service.NewApiKeyService(apiKeyRepository)

	authMiddleware := middleware.NewAuthMiddleware(*cfg, apiKeyService)

	account := handlers.NewAccountHandler(accountService, twitterService, linkedinService, hackerNewsService, *cfg)
	app.Get("/auth/:platform", account.AddSocialAccount)
	app.Get("/auth/:platform/callback", account.CallbackHandler)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	api.Post("/auth/hackernews/connect", account.ConnectHackerNews)
	api.Get("/accounts", account.ListSocialAccounts)
	api.Post("/accounts/remove", account.DeleteSocialAccount)

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)
	api.Delete("/user", user.RemoveUser)

	apiKeys := handlers.NewApiKeyHandler(apiKeyService)
	api.Post("/api_key/new", apiKeys.CreateApiKey)
	api.Get("/api_key/list", apiKeys.ListKeys)
	api.Post("/api_key/remove", apiKeys.RemoveAPIKey)

	draft := handlers.NewDraftHandler(draftService, draftStore)
	api.Get("/drafts", draft.GetSession)
	api.Post("/drafts/select", draft.SelectPlatform)
	api.Post("/drafts/edit", draft.EditDraft)
	api.Post("/drafts/versions/save", draft.SaveVersion)
	api.Post("/drafts/versions/select", draft.SelectVersion)
	api.Post("/drafts/generate", draft.Generate)
	api.Post("/drafts/:platform/upload-image", draft.UploadImage)
	api.Post("/drafts/images/remove", draft.RemoveImage)

	post := handlers.NewPostHandler(postService, client)
	api.Post("/scheduled-posts", post.CreatePost)
	api.Get("/scheduled-posts", post.ListPosts)
	api.Patch("/scheduled-posts/:id", post.EditPost)
	api.Put("/scheduled-posts/:id", post.RetryPost)
	api.Delete("/scheduled-posts/:id", post.RemovePost)
	api.Get("/scheduled-posts/:id/attempts", post.ListAttempts)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(socialAccountRepo, twitterService)
	requeueJob := job.NewRequeueJob(postRepo, client)

	// publisher queue
	queueW := queue.NewQueue(postRepo, socialAccountRepo, publishHistoryRepo, twitterService, linkedinService, hackerNewsService)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.AddFunc("@every 00h10m00s", requeueJob.RequeueOverdue)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, queueW.HandlePublishPostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
