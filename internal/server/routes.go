package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"codequest/internal/handlers"
	"codequest/internal/middlewares"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	r.Use(middlewares.RequestLogging(log.Logger))
	r.Use(middlewares.Recoverer)
	r.Use(middlewares.NewCors(s.cfg.AllowedOrigins))
	r.Use(middlewares.Instrument)
	r.Use(s.limiter.Middleware)

	ch := handlers.NewCommonHandler(s.db, s.cache)
	r.HandleFunc("/", ch.HelloWorldHandler).Methods("GET")
	r.HandleFunc("/health", ch.HealthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	auth := middlewares.NewAuthMiddleware(s.tokens)

	s.registerAuthRoutes(api, auth)
	s.registerUserRoutes(api, auth)
	s.registerAIRoutes(api, auth)

	return r
}

func (s *Server) registerAuthRoutes(api *mux.Router, auth func(http.Handler) http.Handler) {
	ah := handlers.NewAuthHandler(s.userService, s.authService, s.otpService, s.cfg.CookieSecure, s.cfg.FrontendURL)

	r := api.PathPrefix("/auth").Subrouter()
	r.HandleFunc("/signup", ah.Signup).Methods("POST", "OPTIONS")
	r.HandleFunc("/login", ah.Login).Methods("POST", "OPTIONS")
	r.HandleFunc("/refresh-token", ah.RefreshToken).Methods("POST", "OPTIONS")
	r.Handle("/logout", auth(http.HandlerFunc(ah.Logout))).Methods("POST", "OPTIONS")
	r.HandleFunc("/forgot-password", ah.ForgotPassword).Methods("POST", "OPTIONS")
	r.HandleFunc("/verify-otp", ah.VerifyOTP).Methods("POST", "OPTIONS")
	r.HandleFunc("/reset-password", ah.ResetPassword).Methods("POST", "OPTIONS")

	r.HandleFunc("/{provider}", ah.ProviderAuth).Methods("GET", "OPTIONS")
	r.HandleFunc("/{provider}/callback", ah.ProviderCallback).Methods("GET", "OPTIONS")
}

func (s *Server) registerUserRoutes(api *mux.Router, auth func(http.Handler) http.Handler) {
	uh := handlers.NewUserHandler(s.userService, s.aiService, s.cfg.CookieSecure)

	r := api.PathPrefix("/user").Subrouter()
	r.Use(auth)
	r.HandleFunc("/me", uh.GetMyProfile).Methods("GET", "OPTIONS")
	r.HandleFunc("/me", uh.UpdateMyProfile).Methods("PATCH", "OPTIONS")
	r.HandleFunc("/me", uh.DeleteMyProfile).Methods("DELETE", "OPTIONS")
	r.HandleFunc("/preferences", uh.UpdatePreferences).Methods("PATCH", "OPTIONS")
	r.HandleFunc("/change-password", uh.ChangePassword).Methods("POST", "OPTIONS")
	r.HandleFunc("/concepts", uh.ListConcepts).Methods("GET", "OPTIONS")
	r.HandleFunc("/reviews", uh.ListCodeReviews).Methods("GET", "OPTIONS")
	r.HandleFunc("/project-ideas", uh.ListProjectIdeas).Methods("GET", "OPTIONS")
}

func (s *Server) registerAIRoutes(api *mux.Router, auth func(http.Handler) http.Handler) {
	aih := handlers.NewAIHandler(s.aiService)

	r := api.PathPrefix("/ai").Subrouter()
	r.Use(auth)
	// second bucket keyed by user, AI calls are the expensive ones
	r.Use(s.limiter.Middleware)
	r.HandleFunc("/explain", aih.ExplainConcept).Methods("POST", "OPTIONS")
	r.HandleFunc("/review", aih.ReviewCode).Methods("POST", "OPTIONS")
	r.HandleFunc("/project-idea", aih.SuggestProjectIdea).Methods("POST", "OPTIONS")
}
