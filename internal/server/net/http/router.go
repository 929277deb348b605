// Package http реализует маршрутизацию HTTP-слоя сервера VaxReport.
//
// Пакет отвечает за:
//   - регистрацию HTTP-маршрутов и настройку роутера (chi);
//   - порядок middleware: recover, логирование, метрики, no-cache, сессия;
//   - закрытие страниц отчётов и смены пароля для гостей.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/api"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/middleware"
)

// Options — необязательные части роутера.
type Options struct {
	// MaxBodyBytes — лимит тела формы, 0 без лимита.
	MaxBodyBytes int64
	// Metrics — nil, если метрики выключены.
	Metrics *middleware.Metrics
	// MetricsPath и Gatherer публикуют /metrics, если оба заданы.
	MetricsPath string
	Gatherer    prometheus.Gatherer
}

// NewRouter создаёт и настраивает HTTP-роутер сервера.
//
// Роутер использует chi.Router и регистрирует:
//   - публичные страницы: /, /register, /login, /logout;
//   - группу страниц только для вошедших: /report, /history, /password;
//   - страницы-извинения для 404 и 405.
func NewRouter(h *api.Handler, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer(h.Log, h.Apology))
	r.Use(middleware.LoggerMiddleware(h.Log))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	r.Use(middleware.NoCache)
	r.Use(middleware.BodyLimit(opts.MaxBodyBytes))
	r.Use(h.Sessions.Load)

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	if opts.MetricsPath != "" && opts.Gatherer != nil {
		r.Method(http.MethodGet, opts.MetricsPath, promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	// публичные страницы
	r.Get("/", h.Home)
	r.Get("/register", h.RegisterForm)
	r.Post("/register", h.Register)
	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)

	// только для вошедших, гостя отправляем на /login
	r.Group(func(r chi.Router) {
		r.Use(h.Sessions.RequireLogin)

		r.Get("/report", h.ReportForm)
		r.Post("/report", h.SubmitReport)
		r.Get("/history", h.History)
		r.Post("/history", h.History)
		r.Get("/password", h.PasswordForm)
		r.Post("/password", h.ChangePassword)
	})

	return r
}
