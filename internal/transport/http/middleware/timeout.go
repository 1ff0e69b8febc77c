package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	logctx "github.com/pribylovaa/videovox/internal/pkg/log"
)

// Timeout ограничивает время обработки запроса сервисным дедлайном d.
// Дедлайн уходит в контекст и дальше во все вызовы хранилищ.
// Уже заданный дедлайн не трогается, d<=0 отключает мидлвар.
// Если обработчик пережил дедлайн, пишется предупреждение "request_deadline_exceeded".
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := r.Context().Deadline(); ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			lg := logctx.From(ctx)
			lg.Debug("request_deadline_set", slog.Duration("timeout", d))

			next.ServeHTTP(w, r.WithContext(ctx))

			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				lg.Warn("request_deadline_exceeded",
					slog.String("path", r.URL.Path),
					slog.Duration("timeout", d),
				)
			}
		})
	}
}
