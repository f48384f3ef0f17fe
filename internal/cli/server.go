package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizhub-service/internal/app"
	"quizhub-service/internal/auth"
	"quizhub-service/internal/config"
	"quizhub-service/internal/domain"
	"quizhub-service/internal/infra/local"
	"quizhub-service/internal/infra/memory"
	"quizhub-service/internal/infra/postgres"
	redisinfra "quizhub-service/internal/infra/redis"
	transport "quizhub-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var (
		users       app.UserRepository
		content     app.QuizContentRepository
		catalogRepo app.QuizCatalogRepository
		progress    app.ProgressRepository
		attempts    app.AttemptRepository
		leaderboard app.LeaderboardRepository
		streaks     app.StreakRepository
		feed        app.ChangeFeed
	)

	if cfg.Postgres.URL != "" {
		db := postgres.OpenDB(cfg.Postgres.URL)
		defer db.Close()

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		quizzes := postgres.NewQuizRepository(db)
		users = postgres.NewUserRepository(db)
		content = quizzes
		catalogRepo = quizzes
		progress = postgres.NewProgressRepository(db)
		attempts = postgres.NewAttemptRepository(db)
		leaderboard = postgres.NewLeaderboardRepository(db)
		streaks = postgres.NewStreakRepository(db)
		feed = postgres.NewListener(pool)
	} else {
		log.Printf("postgres not configured, running on seeded in-memory records")
		store := memory.NewRecordStore()
		static := memory.NewStaticCatalog(sampleCatalog())
		users = store
		content = static
		catalogRepo = static
		progress = store.Progress()
		attempts = store.Attempts()
		leaderboard = store
		streaks = store
		feed = store
	}

	if redisClient != nil {
		quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
		content = redisinfra.NewQuizCache(redisClient, content, quizTTL)
	}

	var localStore app.LocalStore
	switch {
	case cfg.Local.Path != "":
		localStore = local.NewStore(cfg.Local.Path)
	case redisClient != nil:
		localStore = redisinfra.NewKVStore(redisClient)
	default:
		localStore = local.NewStore("quizhub_local.json")
	}

	bridge, err := auth.NewBridge(users, localStore, cfg.Secret.EncryptionKey)
	if err != nil {
		return err
	}

	engine := app.NewEngine(app.Stores{
		Content:     content,
		Progress:    progress,
		Attempts:    attempts,
		Leaderboard: leaderboard,
		Streaks:     streaks,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	if cfg.Identity.BaseURL != "" {
		gateway := auth.NewHTTPGateway(cfg.Identity.BaseURL, cfg.Identity.APIKey)
		// Mirror the storefront's auth listener: every sign-in transition
		// syncs a users row and refreshes the cached identity.
		unsubscribe := gateway.OnIdentityChange(func(identity *domain.Identity) {
			if identity == nil {
				return
			}
			if _, err := bridge.Sync(context.Background(), *identity); err != nil {
				log.Printf("sync identity %s: %v", identity.ID, err)
				return
			}
			if err := bridge.CacheIdentity(identity.ID); err != nil {
				log.Printf("cache identity %s: %v", identity.ID, err)
			}
		})
		defer unsubscribe()
		transport.NewAuthHandler(gateway, bridge).Register(mux)
	} else {
		log.Printf("identity gateway not configured, auth endpoints disabled")
	}

	transport.NewCatalogHandler(app.NewCatalog(catalogRepo)).Register(mux)
	mux.HandleFunc("/ws/quiz", transport.NewQuizWSHandler(engine).ServeWS)

	refreshInterval := config.TTLDuration(cfg.Leaderboard.RefreshInterval, 30*time.Second)
	mux.HandleFunc("/ws/leaderboard", transport.NewLeaderboardWSHandler(leaderboard, users, feed, refreshInterval).ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quizhub service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleCatalog seeds the in-memory mode with a small quiz set; production
// deployments read the catalog from Postgres.
func sampleCatalog() ([]domain.Quiz, []domain.Question) {
	quizzes := []domain.Quiz{
		{
			ID:          "go-basics-easy",
			Category:    "golang",
			Difficulty:  "Easy",
			Title:       "Go Basics",
			Description: "Syntax, types, and tooling fundamentals",
			XPValue:     100,
			Icon:        "trophy-green",
		},
		{
			ID:          "go-basics-hard",
			Category:    "golang",
			Difficulty:  "Hard",
			Title:       "Go Internals",
			Description: "Scheduler, GC, and memory model",
			XPValue:     250,
			Icon:        "trophy-red",
		},
	}
	questions := []domain.Question{
		{
			ID:            "q1",
			QuizID:        "go-basics-easy",
			Text:          "Which keyword declares a new variable with inferred type?",
			Options:       []string{"var", ":=", "let", "def"},
			CorrectAnswer: ":=",
		},
		{
			ID:            "q2",
			QuizID:        "go-basics-easy",
			Text:          "What does 'go vet' do?",
			Options:       []string{"Formats code", "Reports suspicious constructs", "Runs tests", "Builds binaries"},
			CorrectAnswer: "Reports suspicious constructs",
		},
	}
	return quizzes, questions
}
