package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/shared/logger"
)

// ErrorPageFunc рисует страницу ошибки с сообщением и статусом.
type ErrorPageFunc func(w http.ResponseWriter, r *http.Request, message string, status int)

// Recoverer перехватывает панику обработчика: стек уходит в лог,
// клиент получает общую страницу 500 без подробностей.
func Recoverer(log *logger.HTTPLogger, render ErrorPageFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("uri", r.RequestURI),
					zap.ByteString("stack", debug.Stack()),
				)
				render(w, r, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
