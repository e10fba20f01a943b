package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/github"
	"github.com/markbates/goth/providers/google"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	"codequest/internal/config"
	"codequest/internal/models"
	"codequest/internal/repositories"
	"codequest/internal/utils"
)

const sessionMaxAge = 86400 * 30

// AuthService completes social logins.
type AuthService interface {
	HandleLogin(ctx context.Context, u goth.User) (*models.User, *models.AuthTokens, error)
}

type authService struct {
	userRepo repositories.UserRepository
	tokens   *utils.TokenManager
}

func NewAuthService(userRepo repositories.UserRepository, tokens *utils.TokenManager) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens}
}

// InitializeGoth registers the OAuth providers that have credentials configured and
// returns their names.
func InitializeGoth(cfg *config.Config) []string {
	store := sessions.NewCookieStore([]byte(cfg.SessionKey))
	store.MaxAge(sessionMaxAge)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = cfg.CookieSecure
	store.Options.SameSite = http.SameSiteLaxMode
	gothic.Store = store

	callback := func(provider string) string {
		return fmt.Sprintf("%s/api/v1/auth/%s/callback", strings.TrimRight(cfg.OAuthCallbackBaseURL, "/"), provider)
	}

	var providers []goth.Provider
	var names []string
	if cfg.GoogleClientID != "" {
		providers = append(providers, google.New(cfg.GoogleClientID, cfg.GoogleClientSecret, callback("google"), "email", "profile"))
		names = append(names, "google")
	}
	if cfg.GithubClientID != "" {
		providers = append(providers, github.New(cfg.GithubClientID, cfg.GithubClientSecret, callback("github"), "user:email"))
		names = append(names, "github")
	}
	goth.UseProviders(providers...)

	log.Info().Strs("providers", names).Msg("Goth providers initialized")
	return names
}

func (a *authService) HandleLogin(ctx context.Context, u goth.User) (*models.User, *models.AuthTokens, error) {
	email := normalizeEmail(u.Email)
	if email == "" {
		log.Error().Str("provider", u.Provider).Msg("Missing email in Goth user data")
		return nil, nil, utils.BadRequest("The provider did not share an email address")
	}

	user, err := a.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		log.Info().Str("user_id", user.ID.Hex()).Str("provider", u.Provider).Msg("Existing user logged in via OAuth")
	case errors.Is(err, mongo.ErrNoDocuments):
		user, err = a.createOAuthUser(ctx, email, u)
		if err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, utils.Internal("Failed to find user", err)
	}

	tokens, err := issueTokens(ctx, a.userRepo, a.tokens, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (a *authService) createOAuthUser(ctx context.Context, email string, u goth.User) (*models.User, error) {
	base := usernameFrom(u.NickName, u.Name, strings.Split(email, "@")[0])
	username := base
	for i := 0; ; i++ {
		_, err := a.userRepo.FindByUsername(ctx, username)
		if errors.Is(err, mongo.ErrNoDocuments) {
			break
		}
		if err != nil {
			return nil, utils.Internal("Failed to check username", err)
		}
		if i >= 5 {
			return nil, utils.Conflict("Could not pick a free username")
		}
		suffix, err := utils.GenerateSecureOTP(4)
		if err != nil {
			return nil, utils.Internal("Failed to pick username", err)
		}
		username = base + suffix
	}

	user, err := a.userRepo.Create(ctx, &models.User{
		Username:     username,
		Email:        email,
		AuthProvider: u.Provider,
		Preferences:  models.DefaultPreferences(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, utils.Conflict("Email or username already exists")
		}
		return nil, utils.Internal("Failed to create user", err)
	}
	log.Info().Str("user_id", user.ID.Hex()).Str("provider", u.Provider).Msg("New user created via OAuth")
	return user, nil
}

// usernameFrom keeps letters and digits of the first usable candidate.
func usernameFrom(candidates ...string) string {
	for _, c := range candidates {
		var b strings.Builder
		for _, r := range c {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
		name := b.String()
		if len([]rune(name)) > 24 {
			name = string([]rune(name)[:24])
		}
		if len([]rune(name)) >= 3 {
			return name
		}
	}
	return "learner"
}
