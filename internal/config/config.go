package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime setting of the API and the worker.
type Config struct {
	Environment    string   `mapstructure:"APP_ENV"`
	Port           int      `mapstructure:"PORT"`
	MongoURI       string   `mapstructure:"MONGO_URI"`
	MongoDatabase  string   `mapstructure:"MONGO_DATABASE"`
	AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS"`

	AccessTokenSecret  string        `mapstructure:"ACCESS_TOKEN_SECRET"`
	AccessTokenTTL     time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	RefreshTokenSecret string        `mapstructure:"REFRESH_TOKEN_SECRET"`
	RefreshTokenTTL    time.Duration `mapstructure:"REFRESH_TOKEN_TTL"`
	CookieSecure       bool          `mapstructure:"COOKIE_SECURE"`

	SessionKey           string `mapstructure:"SESSION_KEY"`
	OAuthCallbackBaseURL string `mapstructure:"OAUTH_CALLBACK_BASE_URL"`
	FrontendURL          string `mapstructure:"FRONTEND_URL"`
	GoogleClientID       string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret   string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GithubClientID       string `mapstructure:"GITHUB_CLIENT_ID"`
	GithubClientSecret   string `mapstructure:"GITHUB_CLIENT_SECRET"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	MailFrom     string `mapstructure:"MAIL_FROM"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	AIProvider    string        `mapstructure:"AI_PROVIDER"`
	GeminiAPIKey  string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel   string        `mapstructure:"GEMINI_MODEL"`
	OpenAIAPIKey  string        `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel   string        `mapstructure:"OPENAI_MODEL"`
	OpenAIBaseURL string        `mapstructure:"OPENAI_BASE_URL"`
	AICacheTTL    time.Duration `mapstructure:"AI_CACHE_TTL"`
	AITimeout     time.Duration `mapstructure:"AI_TIMEOUT"`

	OTPLength int           `mapstructure:"OTP_LENGTH"`
	OTPTTL    time.Duration `mapstructure:"OTP_TTL"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	LogFile   string `mapstructure:"LOG_FILE"`
}

var defaults = map[string]interface{}{
	"APP_ENV":                 "development",
	"PORT":                    8080,
	"MONGO_URI":               "",
	"MONGO_DATABASE":          "codequest",
	"ALLOWED_ORIGINS":         "http://localhost:5173",
	"ACCESS_TOKEN_SECRET":     "",
	"ACCESS_TOKEN_TTL":        "15m",
	"REFRESH_TOKEN_SECRET":    "",
	"REFRESH_TOKEN_TTL":       "240h",
	"COOKIE_SECURE":           false,
	"SESSION_KEY":             "",
	"OAUTH_CALLBACK_BASE_URL": "http://localhost:8080",
	"FRONTEND_URL":            "http://localhost:5173",
	"GOOGLE_CLIENT_ID":        "",
	"GOOGLE_CLIENT_SECRET":    "",
	"GITHUB_CLIENT_ID":        "",
	"GITHUB_CLIENT_SECRET":    "",
	"SMTP_HOST":               "smtp.gmail.com",
	"SMTP_PORT":               587,
	"SMTP_USERNAME":           "",
	"SMTP_PASSWORD":           "",
	"MAIL_FROM":               "",
	"REDIS_ADDR":              "",
	"REDIS_PASSWORD":          "",
	"REDIS_DB":                0,
	"AI_PROVIDER":             "gemini",
	"GEMINI_API_KEY":          "",
	"GEMINI_MODEL":            "gemini-2.5-flash",
	"OPENAI_API_KEY":          "",
	"OPENAI_MODEL":            "gpt-4o-mini",
	"OPENAI_BASE_URL":         "",
	"AI_CACHE_TTL":            "24h",
	"AI_TIMEOUT":              "30s",
	"OTP_LENGTH":              6,
	"OTP_TTL":                 "10m",
	"RATE_LIMIT_RPS":          3,
	"RATE_LIMIT_BURST":        5,
	"LOG_LEVEL":               "info",
	"LOG_FORMAT":              "console",
	"LOG_FILE":                "",
}

// Load reads the configuration from the environment. When CONFIG_FILE is set the file is
// read first and environment variables still take precedence.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	origins := cfg.AllowedOrigins[:0]
	for _, o := range cfg.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	cfg.AllowedOrigins = origins
	cfg.AIProvider = strings.ToLower(strings.TrimSpace(cfg.AIProvider))

	return &cfg, nil
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return errors.New("MONGO_URI environment variable not set")
	}
	if c.AccessTokenSecret == "" || c.RefreshTokenSecret == "" {
		return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set")
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("access and refresh token secrets must differ")
	}
	if c.OTPLength < 4 || c.OTPLength > 10 {
		return errors.New("OTP_LENGTH must be between 4 and 10")
	}
	if (c.GoogleClientID != "" || c.GithubClientID != "") && c.SessionKey == "" {
		return errors.New("SESSION_KEY must be set when an OAuth provider is configured")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
