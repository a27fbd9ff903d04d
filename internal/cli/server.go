package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"study-quiz-service/internal/app"
	"study-quiz-service/internal/config"
	"study-quiz-service/internal/domain"
	"study-quiz-service/internal/infra/memory"
	"study-quiz-service/internal/infra/postgres"
	redisinfra "study-quiz-service/internal/infra/redis"
	transport "study-quiz-service/internal/transport/http"
)

const defaultPort = "3001"

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func init() {
	startCmd.Flags().StringVarP(&portFlag, "port", "p", defaultEnv("PORT", ""), "HTTP listen port, overrides config")
}

func runServer(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("config %s not loaded (%v), using defaults", configPath, err)
	}

	store, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	reserved := cfg.Quiz.Reserved
	if len(reserved) == 0 {
		reserved = domain.PredefinedNames()
	}
	service := app.NewQuizService(store, reserved)

	questionSeconds := cfg.Quiz.QuestionSeconds
	warningSeconds := cfg.Quiz.WarningSeconds

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	transport.NewAPIHandler(service).Register(router)
	router.Handle("/ws/session", transport.NewSessionHandler(service, questionSeconds, warningSeconds))

	port := portFlag
	if port == "" {
		port = cfg.Server.Port
	}
	if port == "" {
		port = defaultPort
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on :%s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	case <-ctx.Done():
	}

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildStore picks the persistence backend. With no Postgres URL configured
// the service runs on the in-memory store seeded with the built-in quizzes.
// A configured Redis address adds the document cache in front.
func buildStore(ctx context.Context, cfg config.Config) (app.QuizStore, func(), error) {
	cleanup := func() {}

	if cfg.Postgres.URL == "" {
		log.Println("no postgres url configured, using in-memory store")
		return memory.NewQuizStore(domain.PredefinedQuizzes(time.Now().UTC())), cleanup, nil
	}

	pgStore, err := postgres.NewQuizStore(ctx, cfg.Postgres.URL)
	if err != nil {
		return nil, cleanup, err
	}
	cleanup = pgStore.Close

	if err := pgStore.SeedPredefined(ctx, domain.PredefinedQuizzes(time.Now().UTC())); err != nil {
		log.Printf("seed predefined quizzes: %v", err)
	}

	var store app.QuizStore = pgStore
	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("redis unavailable (%v), serving without cache", err)
			client.Close()
		} else {
			ttl := config.TTLDuration(cfg.Redis.TTL, 5*time.Minute)
			store = redisinfra.NewStoreCache(pgStore, client, ttl)
			pgCleanup := cleanup
			cleanup = func() {
				client.Close()
				pgCleanup()
			}
		}
	}
	return store, cleanup, nil
}
