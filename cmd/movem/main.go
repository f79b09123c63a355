package main

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/example/movem/internal/handlers"
	"github.com/example/movem/internal/platform/auth"
	"github.com/example/movem/internal/platform/config"
	"github.com/example/movem/internal/platform/db"
	"github.com/example/movem/internal/platform/httpserver"
	"github.com/example/movem/internal/platform/logging"
	"github.com/example/movem/internal/platform/natsconn"
	"github.com/example/movem/internal/platform/run"
	"github.com/example/movem/internal/stats"
	"github.com/example/movem/internal/store"
	"github.com/example/movem/internal/worker"
)

type stores struct {
	Comments  store.CommentStore
	Movies    store.MovieStore
	Platforms store.PlatformStore
	Users     store.UserStore
	People    store.PersonStore
	Stats     stats.StatStore
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	st, pool := initStores(cfg, log)
	if pool != nil {
		defer pool.Close()
	}

	// Drift events flow to NATS when available; without it the engine only
	// logs failed aggregate deltas and the sweep remains the safety net.
	var reporter stats.DriftReporter
	nc, err := natsconn.Connect(natsconn.Options{URL: cfg.NATSURL})
	if err != nil {
		log.Warn("nats unavailable, drift events disabled", zap.Error(err))
		nc = nil
	} else {
		rep, err := stats.NewNATSReporter(nc)
		if err != nil {
			log.Warn("jetstream unavailable, drift events disabled", zap.Error(err))
		} else {
			reporter = rep
		}
		defer nc.Close()
	}

	engine := stats.NewEngine(st.Stats, log, reporter)
	repairer := &stats.Repairer{Stats: st.Stats, Source: st.Comments, Log: log}

	verifier := auth.JWTVerifier{Secret: []byte(cfg.JWTSecret)}
	issuer := auth.Issuer{Secret: []byte(cfg.JWTSecret), AccessTokenTTL: cfg.AccessTokenTTL}

	r := chi.NewRouter()
	readiness := httpserver.RouterConfig{}
	if pool != nil {
		readiness.ReadyFunc = func() error { return pool.Ping(context.Background()) }
	}
	httpserver.SetupRouter(r, readiness)

	// Public catalog reads.
	r.Get("/v1/movies", handlers.ListMovies(st.Movies))
	r.Get("/v1/movies/{movie_id}", handlers.GetMovie(st.Movies))
	r.Get("/v1/movies/{movie_id}/stats", handlers.MovieStats(st.Stats))
	r.Get("/v1/movies/{movie_id}/comments", handlers.MovieComments(st.Comments))
	r.Get("/v1/movies/{movie_id}/cast", handlers.MovieCast(st.People))
	r.Get("/v1/platforms", handlers.ListPlatforms(st.Platforms))
	r.Get("/v1/platforms/{platform_id}", handlers.GetPlatform(st.Platforms))
	r.Get("/v1/people", handlers.ListPeople(st.People))
	r.Get("/v1/people/{person_id}", handlers.GetPerson(st.People))
	r.Get("/v1/comments", handlers.ListComments(st.Comments))
	r.Get("/v1/comments/{comment_id}", handlers.GetComment(st.Comments))
	r.Get("/v1/users", handlers.ListUsers(st.Users))
	r.Get("/v1/users/{user_id}", handlers.GetUser(st.Users))

	// Open registration and login.
	r.Post("/v1/users", handlers.CreateUser(st.Users))
	r.Post("/v1/auth/login", handlers.Login(st.Users, issuer))

	// Reactions carry no identity requirement, matching the public catalog.
	r.Post("/v1/comments/{comment_id}/like", handlers.LikeComment(st.Comments))
	r.Post("/v1/comments/{comment_id}/dislike", handlers.DislikeComment(st.Comments))

	// Authenticated writes.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(verifier))
		r.Post("/v1/comments", handlers.CreateComment(st.Comments, engine))
		r.Put("/v1/comments/{comment_id}", handlers.UpdateComment(st.Comments, engine))
		r.Delete("/v1/comments/{comment_id}", handlers.DeleteComment(st.Comments, engine))
		r.Post("/v1/movies", handlers.CreateMovie(st.Movies))
		r.Put("/v1/movies/{movie_id}", handlers.UpdateMovie(st.Movies))
		r.Delete("/v1/movies/{movie_id}", handlers.DeleteMovie(st.Movies))
		r.Post("/v1/platforms", handlers.CreatePlatform(st.Platforms))
		r.Put("/v1/platforms/{platform_id}", handlers.UpdatePlatform(st.Platforms))
		r.Delete("/v1/platforms/{platform_id}", handlers.DeletePlatform(st.Platforms))
		r.Put("/v1/users/{user_id}", handlers.UpdateUser(st.Users))
		r.Delete("/v1/users/{user_id}", handlers.DeleteUser(st.Users))
	})

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, ServiceName: cfg.ServiceName, Logger: log, Router: r})

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		if nc != nil {
			consumer, err := worker.NewRepairConsumer(log, nc, repairer)
			if err != nil {
				log.Warn("repair consumer unavailable", zap.Error(err))
			} else {
				go func() {
					if err := consumer.Run(ctx); err != nil {
						log.Warn("repair consumer stopped", zap.Error(err))
					}
				}()
			}
		}

		sweeper := &worker.Sweeper{Log: log, Repairer: repairer, Interval: cfg.SweepInterval}
		go func() {
			if err := sweeper.Run(ctx); err != nil {
				log.Warn("sweeper stopped", zap.Error(err))
			}
		}()

		go func() {
			<-ctx.Done()
			_ = srv.Shutdown(context.Background())
		}()
		return srv.Start(log)
	})

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}

// initStores selects the persistence backend. In production
// (APP_ENV=production) Postgres is mandatory and the process terminates
// without it; development falls back to in-memory stores.
func initStores(cfg config.AppConfig, log *zap.Logger) (stores, *pgxpool.Pool) {
	if cfg.DatabaseURL == "" {
		if cfg.IsProduction() {
			log.Error("DATABASE_URL is required in production")
			_ = log.Sync()
			run.Exit(1)
		}
		log.Warn("DATABASE_URL not set, using in-memory stores (development only)")
		return memoryStores(), nil
	}

	pool, err := db.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		if cfg.IsProduction() {
			log.Error("postgres is required in production but unavailable", zap.Error(err))
			_ = log.Sync()
			run.Exit(1)
		}
		log.Warn("postgres unavailable, falling back to in-memory stores", zap.Error(err))
		return memoryStores(), nil
	}

	log.Info("stores: postgres")
	return stores{
		Comments:  store.NewPostgresCommentStore(pool),
		Movies:    store.NewPostgresMovieStore(pool),
		Platforms: store.NewPostgresPlatformStore(pool),
		Users:     store.NewPostgresUserStore(pool),
		People:    store.NewPostgresPersonStore(pool),
		Stats:     stats.NewPostgresStatStore(pool),
	}, pool
}

func memoryStores() stores {
	return stores{
		Comments:  store.NewInMemoryCommentStore(),
		Movies:    store.NewInMemoryMovieStore(),
		Platforms: store.NewInMemoryPlatformStore(),
		Users:     store.NewInMemoryUserStore(),
		People:    store.NewInMemoryPersonStore(),
		Stats:     stats.NewInMemoryStatStore(),
	}
}
