package utils

import (
	"net/http"
	"time"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// SetAuthCookies stores both tokens in HTTP-only cookies.
func SetAuthCookies(w http.ResponseWriter, accessToken string, accessExp time.Time, refreshToken string, refreshExp time.Time, secure bool) {
	http.SetCookie(w, authCookie(AccessTokenCookie, accessToken, accessExp, secure))
	http.SetCookie(w, authCookie(RefreshTokenCookie, refreshToken, refreshExp, secure))
}

func ClearAuthCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		c := authCookie(name, "", time.Unix(0, 0), secure)
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func authCookie(name, value string, expires time.Time, secure bool) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if secure {
		// cross-site frontend in production
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	}
}
