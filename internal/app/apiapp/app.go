package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ivankudzin/paquera/internal/config"
	s3infra "github.com/ivankudzin/paquera/internal/infra/s3"
	"github.com/ivankudzin/paquera/internal/jobs/expiry"
	pgrepo "github.com/ivankudzin/paquera/internal/repo/postgres"
	redrepo "github.com/ivankudzin/paquera/internal/repo/redis"
	authsvc "github.com/ivankudzin/paquera/internal/services/auth"
	entsvc "github.com/ivankudzin/paquera/internal/services/entitlements"
	likessvc "github.com/ivankudzin/paquera/internal/services/likes"
	matchessvc "github.com/ivankudzin/paquera/internal/services/matches"
	paymentsvc "github.com/ivankudzin/paquera/internal/services/payments"
	profilesvc "github.com/ivankudzin/paquera/internal/services/profiles"
	rankingsvc "github.com/ivankudzin/paquera/internal/services/ranking"
	ratesvc "github.com/ivankudzin/paquera/internal/services/rate"
	swipesvc "github.com/ivankudzin/paquera/internal/services/swipes"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	expiryJob  *expiry.Job
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, cfg.HTTP, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
		if cfg.Postgres.AutoMigrate {
			if err := pgrepo.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
		}
	}

	var redisClient *goredis.Client
	if c, err := redrepo.NewClient(ctx, redrepo.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}); err != nil {
		log.Warn("redis init failed, continuing in degraded mode", zap.Error(err))
	} else {
		redisClient = c
	}

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	txManager := pgrepo.NewTxManager(pool)
	profileRepo := pgrepo.NewProfileRepo(pool)
	likeRepo := pgrepo.NewLikeRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	entitlementRepo := pgrepo.NewEntitlementRepo(pool)
	receiptRepo := pgrepo.NewReceiptRepo(pool)

	profileService := profilesvc.NewService(profileRepo, profilesvc.Config{
		AgeMinDefault: cfg.Matching.AgeMinDefault,
		AgeMaxDefault: cfg.Matching.AgeMaxDefault,
	})
	likeService := likessvc.NewService(likessvc.Dependencies{
		LikeStore:  likeRepo,
		MatchStore: matchRepo,
	})
	matchesService := matchessvc.NewService(matchessvc.Dependencies{
		MatchStore: matchRepo,
		Profiles:   profileService,
	})
	entitlementService := entsvc.NewService(entitlementRepo, txManager, entsvc.Config{
		FreeInteractionsLimit: cfg.Matching.FreeInteractionsLimit,
	})

	rankingDeps := rankingsvc.Dependencies{
		Profiles: profileService,
		Likes:    likeService,
	}
	swipeDeps := swipesvc.Dependencies{
		Profiles: profileService,
		Ledger:   entitlementService,
		Graph:    likeService,
		Tx:       txManager,
	}
	var authService *authsvc.Service
	if redisClient != nil {
		passRepo := redrepo.NewPassRepo(redisClient)
		rankingDeps.Passes = passRepo
		swipeDeps.Passes = passRepo
		swipeDeps.RateLimiter = ratesvc.NewLimiter(
			redrepo.NewRateRepo(redisClient),
			cfg.Rate.LikesPerMinute,
			cfg.Rate.LikesPer10Sec,
		)
		authService = authsvc.NewService(
			authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL),
			redrepo.NewSessionRepo(redisClient),
			cfg.Auth.SessionTTL,
		)
	}

	rankingService := rankingsvc.NewService(rankingDeps, rankingsvc.Config{
		PageSize:             cfg.Matching.CandidatesPageSize,
		RecentlyJoinedWindow: cfg.Matching.RecentlyJoinedWindow,
		PassCooldown:         cfg.Matching.PassCooldown,
	})
	swipeService := swipesvc.NewService(swipeDeps, swipesvc.Config{
		PassCooldown: cfg.Matching.PassCooldown,
	})

	paymentDeps := paymentsvc.Dependencies{
		Receipts:     receiptRepo,
		Entitlements: entitlementRepo,
		Tx:           txManager,
		Logger:       log.Named("payments"),
	}
	if s3Client != nil {
		paymentDeps.Storage = paymentsvc.NewS3ReceiptStorage(s3Client, cfg.S3.Bucket)
	}
	paymentService := paymentsvc.NewService(paymentDeps, paymentsvc.Config{
		Currency:              cfg.Payments.Currency,
		GrantedDays:           cfg.Matching.GrantedDays,
		FreeInteractionsLimit: cfg.Matching.FreeInteractionsLimit,
		ReceiptPrefix:         cfg.S3.ReceiptPrefix,
		PresignTTL:            cfg.S3.PresignTTL,
	})

	var expiryJob *expiry.Job
	if pool != nil {
		expiryJob = expiry.New(entitlementService, cfg.Matching.ExpirySweepInterval, log.Named("expiry"))
	}

	RegisterRoutes(r, Dependencies{
		AuthService:        authService,
		ProfileService:     profileService,
		RankingService:     rankingService,
		LikeService:        likeService,
		SwipeService:       swipeService,
		MatchService:       matchesService,
		EntitlementService: entitlementService,
		PaymentService:     paymentService,
		Logger:             log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		expiryJob:  expiryJob,
		httpRouter: r,
	}, nil
}

// Run serves HTTP until Shutdown. The expiry sweep stops with ctx.
func (a *App) Run(ctx context.Context) error {
	if a.expiryJob != nil {
		go a.expiryJob.Start(ctx)
	}

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
