package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/pribylovaa/videovox/internal/models"
	"github.com/pribylovaa/videovox/internal/transport/http/middleware"
)

// RefreshTokenCookie — имя cookie с refresh-токеном.
const RefreshTokenCookie = "refreshToken"

func (h *Handlers) setTokenCookies(w http.ResponseWriter, pair *models.TokenPair) {
	http.SetCookie(w, h.cookie(middleware.AccessTokenCookie, pair.AccessToken, pair.AccessExpiresAt))
	http.SetCookie(w, h.cookie(RefreshTokenCookie, pair.RefreshToken, pair.RefreshExpiresAt))
}

func (h *Handlers) clearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		c := h.cookie(name, "", time.Time{})
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func (h *Handlers) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// refreshToken извлекает refresh-токен: cookie имеет приоритет над телом.
// В теле допускается префикс "Bearer ".
func (h *Handlers) refreshToken(w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(RefreshTokenCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}

	// Пустое тело — токена нет: ответ 401 даёт сервис.
	var in refreshRequest
	if err := h.decodeOptional(w, r, &in); err != nil {
		return "", err
	}

	return strings.TrimPrefix(in.RefreshToken, "Bearer "), nil
}
