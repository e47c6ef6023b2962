package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/emberapp/backend/internal/config"
	pgrepo "github.com/emberapp/backend/internal/repo/postgres"
	redrepo "github.com/emberapp/backend/internal/repo/redis"
	authsvc "github.com/emberapp/backend/internal/services/auth"
	boostsvc "github.com/emberapp/backend/internal/services/boosts"
	entsvc "github.com/emberapp/backend/internal/services/entitlements"
	feedsvc "github.com/emberapp/backend/internal/services/feed"
	likessvc "github.com/emberapp/backend/internal/services/likes"
	matchessvc "github.com/emberapp/backend/internal/services/matches"
	notifysvc "github.com/emberapp/backend/internal/services/notify"
	ratesvc "github.com/emberapp/backend/internal/services/rate"
	swipesvc "github.com/emberapp/backend/internal/services/swipes"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	rateRepo := redrepo.NewRateRepo(redisClient)
	swipeRepo := pgrepo.NewSwipeRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	blockRepo := pgrepo.NewBlockRepo(pool)
	feedRepo := pgrepo.NewFeedRepo(pool)
	quotaRepo := pgrepo.NewQuotaRepo(pool)
	entitlementRepo := pgrepo.NewEntitlementRepo(pool)
	eventRepo := pgrepo.NewEventRepo(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	rateLimiter := ratesvc.NewLimiter(rateRepo, ratesvc.Config{
		LikesPerMinute:      cfg.Limits.RatePerMinute,
		LikesPer10Sec:       cfg.Limits.RatePer10Seconds,
		SuperLikesPerMinute: cfg.Limits.SuperLikeRatePerMinute,
	})
	notifier := notifysvc.NewNotifier(eventRepo, log)

	entitlementService := entsvc.NewService(entsvc.Dependencies{
		Tiers:  entitlementRepo,
		Usage:  quotaRepo,
		Boosts: entitlementRepo,
	}, entsvc.Config{
		Timezone: cfg.Matching.Timezone,
	})
	feedService := feedsvc.NewService(feedRepo, feedsvc.Config{
		DefaultAgeMin:   cfg.Feed.AgeMin,
		DefaultAgeMax:   cfg.Feed.AgeMax,
		DefaultRadiusKM: cfg.Feed.RadiusDefaultKM,
		MaxRadiusKM:     cfg.Feed.RadiusMaxKM,
	})
	swipeService := swipesvc.NewService(swipesvc.Dependencies{
		Pool:         pool,
		SwipeStore:   swipeRepo,
		MatchStore:   matchRepo,
		BlockStore:   blockRepo,
		Entitlements: entitlementService,
		RateLimiter:  rateLimiter,
		Notifier:     notifier,
	}, swipesvc.Config{
		RematchAllowed: cfg.Matching.RematchAllowed,
	})
	matchesService := matchessvc.NewService(matchessvc.Dependencies{
		Pool:       pool,
		MatchStore: matchRepo,
		BlockStore: blockRepo,
	})
	likesService := likessvc.NewService(likessvc.Dependencies{
		SwipeStore: swipeRepo,
		TierStore:  entitlementRepo,
	})
	boostService := boostsvc.NewService(boostsvc.Dependencies{
		Pool:         pool,
		BoostStore:   entitlementRepo,
		Entitlements: entitlementService,
	}, boostsvc.Config{
		Duration: cfg.Boost.Duration,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		JWTManager:         jwtManager,
		EntitlementService: entitlementService,
		FeedService:        feedService,
		SwipeService:       swipeService,
		MatchService:       matchesService,
		LikesService:       likesService,
		BoostService:       boostService,
		Logger:             log,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}

func (a *App) Postgres() *pgxpool.Pool {
	return a.postgres
}
