package middleware

import (
	"context"
	"net/http"
	"strings"

	apierrors "github.com/pribylovaa/videovox/internal/errors"
	"github.com/pribylovaa/videovox/internal/models"
	logctx "github.com/pribylovaa/videovox/internal/pkg/log"
)

// AccessTokenCookie — имя cookie с access-токеном.
const AccessTokenCookie = "accessToken"

// Authenticator проверяет access-токен и возвращает текущий аккаунт
// (без пароля и refresh-токена).
type Authenticator interface {
	VerifyAccessToken(ctx context.Context, token string) (*models.Account, error)
}

type accountKey struct{}

// Auth — шлюз аутентификации защищённых маршрутов.
// Токен берётся из cookie accessToken, иначе из заголовка Authorization: Bearer.
// Пустой токен тоже уходит в Authenticator: тот отвечает 401 с единым сообщением.
func Auth(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			acc, err := a.VerifyAccessToken(r.Context(), AccessToken(r))
			if err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), accountKey{}, acc)
			ctx = logctx.With(ctx, "account_id", acc.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccessToken извлекает access-токен: cookie имеет приоритет над заголовком.
func AccessToken(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}

	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}

	return ""
}

// AccountFrom возвращает аккаунт, положенный Auth.
func AccountFrom(ctx context.Context) (*models.Account, bool) {
	acc, ok := ctx.Value(accountKey{}).(*models.Account)
	return acc, ok && acc != nil
}
