package server

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"codequest/internal/cache"
	"codequest/internal/config"
	"codequest/internal/database"
	"codequest/internal/jobs"
	"codequest/internal/middlewares"
	"codequest/internal/repositories"
	"codequest/internal/services"
	"codequest/internal/utils"
	"codequest/internal/worker"
)

const (
	visitorMaxIdle  = 3 * time.Minute
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	cfg        *config.Config
	httpServer *http.Server
	db         database.Service
	cache      cache.Cache
	tokens     *utils.TokenManager
	limiter    *middlewares.RateLimiter
	scheduler  *jobs.Scheduler
	queue      *worker.TaskDistributor

	userService services.UserService
	authService services.AuthService
	otpService  services.OTPService
	aiService   services.AIService
}

// NewServer connects to MongoDB (and Redis when configured) and wires every service.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.New(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := db.EnsureIndexes(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	if cfg.IsProduction() && !cfg.CookieSecure {
		log.Warn().Msg("COOKIE_SECURE is off in production; auth cookies will be sent over plain HTTP")
	}

	s := &Server{
		cfg:     cfg,
		db:      db,
		cache:   cache.NopCache{},
		tokens:  utils.NewTokenManager(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		limiter: middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}

	var mailer services.EmailDispatcher = services.SyncEmailDispatcher{Sender: services.NewEmailService(SMTPSettings(cfg))}
	if cfg.RedisAddr != "" {
		client, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		s.cache = cache.NewRedisCache(client, "codequest:ai:")
		s.queue = worker.NewTaskDistributor(RedisOpt(cfg))
		mailer = s.queue
		log.Info().Str("addr", cfg.RedisAddr).Msg("Redis cache and email queue enabled")
	} else {
		log.Warn().Msg("REDIS_ADDR not set; AI responses are not cached and email is sent inline")
	}

	generator, err := services.NewGenerator(ctx, cfg)
	if err != nil {
		s.closeBackends()
		return nil, err
	}
	log.Info().Str("provider", generator.Name()).Msg("AI generator ready")

	userRepo := repositories.NewUserRepository(db)
	otpRepo := repositories.NewOTPRepository(db)
	conceptRepo := repositories.NewConceptRepository(db)
	reviewRepo := repositories.NewCodeReviewRepository(db)
	ideaRepo := repositories.NewProjectIdeaRepository(db)

	s.userService = services.NewUserService(userRepo, otpRepo, conceptRepo, reviewRepo, ideaRepo, s.tokens)
	s.authService = services.NewAuthService(userRepo, s.tokens)
	s.otpService = services.NewOTPService(userRepo, otpRepo, mailer, services.OTPSettings{Length: cfg.OTPLength, TTL: cfg.OTPTTL})
	s.aiService = services.NewAIService(generator, s.cache, userRepo, conceptRepo, reviewRepo, ideaRepo, services.AISettings{
		CacheTTL: cfg.AICacheTTL,
		Timeout:  cfg.AITimeout,
	})

	providers := services.InitializeGoth(cfg)
	log.Info().Strs("providers", providers).Msg("OAuth providers registered")

	s.scheduler, err = jobs.NewScheduler(
		jobs.SweepExpiredOTPs(s.otpService),
		jobs.PruneVisitors(s.limiter, visitorMaxIdle),
		jobs.RefreshUserGauge(s.userService),
	)
	if err != nil {
		s.closeBackends()
		return nil, err
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.AITimeout + 15*time.Second,
	}

	return s, nil
}

// SMTPSettings maps the mail configuration for the email service.
func SMTPSettings(cfg *config.Config) services.SMTPSettings {
	return services.SMTPSettings{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}
}

func RedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
}

func (s *Server) Start() error {
	s.scheduler.Start()
	log.Info().Int("port", s.cfg.Port).Str("env", s.cfg.Environment).Msg("Starting server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) GracefulShutdown(done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown with error")
	}
	s.scheduler.Stop(ctx)
	s.closeBackends()

	log.Info().Msg("Server exiting")
	done <- true
}

func (s *Server) closeBackends() {
	if s.queue != nil {
		if err := s.queue.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close task queue client")
		}
	}
	if err := s.cache.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close cache")
	}
	if err := s.db.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to disconnect from MongoDB")
	}
}
