package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ivankudzin/paquera/internal/domain/enums"
	authsvc "github.com/ivankudzin/paquera/internal/services/auth"
	entsvc "github.com/ivankudzin/paquera/internal/services/entitlements"
	likessvc "github.com/ivankudzin/paquera/internal/services/likes"
	matchessvc "github.com/ivankudzin/paquera/internal/services/matches"
	paymentsvc "github.com/ivankudzin/paquera/internal/services/payments"
	profilesvc "github.com/ivankudzin/paquera/internal/services/profiles"
	rankingsvc "github.com/ivankudzin/paquera/internal/services/ranking"
	swipesvc "github.com/ivankudzin/paquera/internal/services/swipes"
	"github.com/ivankudzin/paquera/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService        *authsvc.Service
	ProfileService     *profilesvc.Service
	RankingService     *rankingsvc.Service
	LikeService        *likessvc.Service
	SwipeService       *swipesvc.Service
	MatchService       *matchessvc.Service
	EntitlementService *entsvc.Service
	PaymentService     *paymentsvc.Service
	Logger             *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	profileHandler := handlers.NewProfileHandler(deps.ProfileService, deps.Logger)
	candidateHandler := handlers.NewCandidateHandler(deps.RankingService, deps.Logger)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService, deps.LikeService, deps.ProfileService, deps.Logger)
	accessHandler := handlers.NewAccessHandler(deps.ProfileService, deps.EntitlementService, deps.Logger)
	matchesHandler := handlers.NewMatchesHandler(deps.ProfileService, deps.MatchService, deps.Logger)
	paymentsHandler := handlers.NewPaymentsHandler(deps.ProfileService, deps.PaymentService, deps.Logger)
	adminPaymentsHandler := handlers.NewAdminPaymentsHandler(deps.PaymentService, deps.Logger)

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	operatorRoleMW := RequireRole(enums.RoleOperator, enums.RoleOwner)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1", func(r chi.Router) {
		r.Use(authMW)

		r.Get("/profile", profileHandler.Get)
		r.Put("/profile", profileHandler.Put)
		r.Post("/profile/deactivate", profileHandler.Deactivate)
		r.Post("/profile/activate", profileHandler.Activate)

		r.Get("/candidates", candidateHandler.List)
		r.Post("/likes", swipeHandler.Like)
		r.Get("/likes/sent", swipeHandler.SentLikes)
		r.Post("/passes", swipeHandler.Pass)

		r.Get("/access", accessHandler.Get)
		r.Get("/matches", matchesHandler.List)

		r.Post("/payments/receipts/upload-url", paymentsHandler.UploadURL)
		r.Post("/payments/receipts", paymentsHandler.Submit)
		r.Get("/payments/receipts", paymentsHandler.List)

		r.Route("/admin", func(r chi.Router) {
			r.Use(operatorRoleMW)

			r.Get("/payments/receipts", adminPaymentsHandler.Pending)
			r.Post("/payments/receipts/{id}/approve", adminPaymentsHandler.Approve)
			r.Post("/payments/receipts/{id}/reject", adminPaymentsHandler.Reject)
		})
	})
}
