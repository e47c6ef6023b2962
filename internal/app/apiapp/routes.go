package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authsvc "github.com/emberapp/backend/internal/services/auth"
	boostsvc "github.com/emberapp/backend/internal/services/boosts"
	entsvc "github.com/emberapp/backend/internal/services/entitlements"
	feedsvc "github.com/emberapp/backend/internal/services/feed"
	likessvc "github.com/emberapp/backend/internal/services/likes"
	matchessvc "github.com/emberapp/backend/internal/services/matches"
	swipesvc "github.com/emberapp/backend/internal/services/swipes"
	"github.com/emberapp/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	JWTManager         *authsvc.JWTManager
	EntitlementService *entsvc.Service
	FeedService        *feedsvc.Service
	SwipeService       *swipesvc.Service
	MatchService       *matchessvc.Service
	LikesService       *likessvc.Service
	BoostService       *boostsvc.Service
	Logger             *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	quotaHandler := handlers.NewQuotaHandler(deps.EntitlementService)
	feedHandler := handlers.NewFeedHandler(deps.FeedService)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	matchHandler := handlers.NewMatchHandler(deps.MatchService)
	likesHandler := handlers.NewLikesHandler(deps.LikesService)
	boostHandler := handlers.NewBoostHandler(deps.BoostService)

	authMW := AuthMiddleware(deps.JWTManager, deps.Logger)

	r.Get("/healthz", healthHandler.Handle)
	r.With(authMW).Get("/quota", quotaHandler.Handle)
	r.With(authMW).Get("/feed", feedHandler.Handle)
	r.With(authMW).Post("/swipe", swipeHandler.Handle)
	r.With(authMW).Get("/matches", matchHandler.List)
	r.With(authMW).Post("/unmatch", matchHandler.Unmatch)
	r.With(authMW).Post("/block", matchHandler.Block)
	r.With(authMW).Get("/likes/incoming", likesHandler.Incoming)
	r.With(authMW).Post("/boost", boostHandler.Activate)
}
