package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/rs/zerolog/log"

	"codequest/internal/models"
	"codequest/internal/services"
	"codequest/internal/utils"
)

type AuthHandler struct {
	userService  services.UserService
	authService  services.AuthService
	otpService   services.OTPService
	cookieSecure bool
	frontendURL  string
}

func NewAuthHandler(userService services.UserService, authService services.AuthService, otpService services.OTPService, cookieSecure bool, frontendURL string) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		authService:  authService,
		otpService:   otpService,
		cookieSecure: cookieSecure,
		frontendURL:  strings.TrimRight(frontendURL, "/"),
	}
}

func (a *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.HandleError(w, err)
		return
	}

	user, err := a.userService.RegisterUser(r.Context(), &req)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusCreated, user, "User registered successfully")
}

func (a *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Login
	if err := utils.DecodeJSON(w, r, &creds); err != nil {
		utils.HandleError(w, err)
		return
	}

	user, tokens, err := a.userService.LoginUser(r.Context(), &creds)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	a.setCookies(w, tokens)
	utils.RespondWithData(w, http.StatusOK, models.LoginResponse{User: user, AccessToken: tokens.AccessToken}, "Logged in successfully")
}

func (a *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	if err := a.userService.Logout(r.Context(), userID); err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.ClearAuthCookies(w, a.cookieSecure)
	utils.RespondWithData(w, http.StatusOK, nil, "Logged out successfully")
}

// RefreshToken reads the refresh token from its cookie, falling back to the JSON body.
func (a *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	token := ""
	if c, err := r.Cookie(utils.RefreshTokenCookie); err == nil {
		token = c.Value
	}
	if token == "" && r.ContentLength != 0 {
		var req models.RefreshRequest
		if err := utils.DecodeJSON(w, r, &req); err != nil {
			utils.HandleError(w, err)
			return
		}
		token = req.RefreshToken
	}

	tokens, err := a.userService.RefreshTokens(r.Context(), token)
	if err != nil {
		utils.ClearAuthCookies(w, a.cookieSecure)
		utils.HandleError(w, err)
		return
	}

	a.setCookies(w, tokens)
	utils.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"accessToken":     tokens.AccessToken,
		"accessExpiresAt": tokens.AccessExpiresAt,
	}, "Token refreshed")
}

func (a *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.HandleError(w, err)
		return
	}

	if err := a.otpService.GenerateOTPForgotPassword(r.Context(), req.Email); err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, nil, "A reset code was sent to your email")
}

func (a *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyOTPRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.HandleError(w, err)
		return
	}

	if err := a.otpService.VerifyOTP(r.Context(), req.Email, req.OTP); err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, map[string]bool{"valid": true}, "Code verified")
}

func (a *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.HandleError(w, err)
		return
	}

	if err := a.otpService.ResetPassword(r.Context(), &req); err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.ClearAuthCookies(w, a.cookieSecure)
	utils.RespondWithData(w, http.StatusOK, nil, "Password reset successfully")
}

func (a *AuthHandler) ProviderAuth(w http.ResponseWriter, r *http.Request) {
	provider := mux.Vars(r)["provider"]
	if _, err := goth.GetProvider(provider); err != nil {
		utils.HandleError(w, utils.NotFound("Unknown login provider"))
		return
	}

	log.Info().Str("provider", provider).Msg("Initiating authentication with provider")
	gothic.BeginAuthHandler(w, r)
}

func (a *AuthHandler) ProviderCallback(w http.ResponseWriter, r *http.Request) {
	provider := mux.Vars(r)["provider"]

	gothUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		log.Error().Err(err).Str("provider", provider).Msg("Error completing user authentication")
		a.redirectToFrontend(w, r, "error")
		return
	}

	_, tokens, err := a.authService.HandleLogin(r.Context(), gothUser)
	if err != nil {
		log.Error().Err(err).Str("provider", provider).Msg("Error handling login after provider authentication")
		a.redirectToFrontend(w, r, "error")
		return
	}

	a.setCookies(w, tokens)
	a.redirectToFrontend(w, r, "success")
}

func (a *AuthHandler) redirectToFrontend(w http.ResponseWriter, r *http.Request, status string) {
	target := a.frontendURL + "/auth/callback?status=" + url.QueryEscape(status)
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

func (a *AuthHandler) setCookies(w http.ResponseWriter, tokens *models.AuthTokens) {
	utils.SetAuthCookies(w, tokens.AccessToken, tokens.AccessExpiresAt, tokens.RefreshToken, tokens.RefreshExpiresAt, a.cookieSecure)
}
