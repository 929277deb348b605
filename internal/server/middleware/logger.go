// Package middleware содержит HTTP middleware сервера.
package middleware

import (
	"net/http"
	"time"

	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/shared/logger"
)

// ResponseWriter запоминает статус и размер ответа для логов и метрик.
type ResponseWriter struct {
	http.ResponseWriter
	Status int
	Size   int
}

func (w *ResponseWriter) WriteHeader(Status int) {
	w.Status = Status
	w.ResponseWriter.WriteHeader(Status)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if w.Status == 0 {
		w.Status = http.StatusOK
	}
	Size, err := w.ResponseWriter.Write(b)
	w.Size += Size
	return Size, err
}

// StatusOrOK — статус ответа; если обработчик ничего не записал, это 200.
func (w *ResponseWriter) StatusOrOK() int {
	if w.Status == 0 {
		return http.StatusOK
	}
	return w.Status
}

func wrap(w http.ResponseWriter) *ResponseWriter {
	if wr, ok := w.(*ResponseWriter); ok {
		return wr
	}
	return &ResponseWriter{ResponseWriter: w}
}

// LoggerMiddleware пишет строку лога на каждый запрос.
func LoggerMiddleware(loggerHTTP *logger.HTTPLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wr := wrap(w)
			next.ServeHTTP(wr, r)

			duration := time.Since(start).Seconds() * 1000
			loggerHTTP.LogRequest(r.Method, r.RequestURI, wr.StatusOrOK(), wr.Size, duration)
		})
	}
}
