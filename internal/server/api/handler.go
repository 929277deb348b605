// Package api реализует HTTP-слой сервера VaxReport.
//
// Пакет отвечает за:
//   - обработку форм и выбор страницы или редиректа;
//   - маппинг доменных ошибок (service/repository) в страницы-извинения и HTTP-коды;
//   - работу с сессией браузера через session.Manager.
package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/service"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/session"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/view"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/shared/logger"
)

// Handler агрегирует зависимости HTTP-слоя и предоставляет методы-хендлеры.
//
// Handler содержит:
//   - Svc: сервисный слой (бизнес-логика);
//   - Sessions: серверные сессии браузера;
//   - View: рендер HTML-страниц;
//   - Log: логгер для записи событий и ошибок.
type Handler struct {
	Svc      *service.Services
	Sessions *session.Manager
	View     *view.Renderer
	Log      *logger.HTTPLogger
}

// NewHandler создаёт экземпляр Handler с переданными зависимостями.
func NewHandler(svc *service.Services, sessions *session.Manager, v *view.Renderer, log *logger.HTTPLogger) *Handler {
	return &Handler{
		Svc:      svc,
		Sessions: sessions,
		View:     v,
		Log:      log,
	}
}

// render рисует страницу; флаг Authenticated берётся из сессии запроса.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, content any) {
	_, authed := h.Sessions.Get(r)
	err := h.View.Render(w, status, page, view.Page{Authenticated: authed, Content: content})
	switch {
	case err == nil:
	case errors.Is(err, view.ErrWrite):
		// заголовок уже ушёл клиенту
		h.Log.Warn("write response failed", zap.String("page", page), zap.Error(err))
	default:
		h.Log.Error("render failed", zap.String("page", page), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Apology рисует общую страницу ошибки с сообщением и кодом.
func (h *Handler) Apology(w http.ResponseWriter, r *http.Request, message string, status int) {
	h.render(w, r, status, view.PageApology, view.Apology{Message: message, Code: status})
}

// internalError логирует причину и отдаёт клиенту только общий текст.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.Log.Error(op+" failed", zap.String("uri", r.RequestURI), zap.Error(err))
	h.Apology(w, r, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// NotFound — неизвестный маршрут.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Apology(w, r, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

// MethodNotAllowed: маршрут есть, метода нет.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.Apology(w, r, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

// parseForm разбирает тело формы; при ошибке отвечает 400 и возвращает false.
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		h.Apology(w, r, "could not read form", http.StatusBadRequest)
		return false
	}
	return true
}
