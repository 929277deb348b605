// HTTP-хендлеры главной страницы, отправки отчёта и истории
package api

import (
	"errors"
	"net/http"

	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/models"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/view"
	serr "github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/shared/utils"
)

// MsgNoReports показывается в истории вместо пустой таблицы.
const MsgNoReports = "You haven't made any reports yet!"

// HomeData — содержимое главной для вошедшего пользователя.
type HomeData struct {
	Email   string
	Reports []models.Report
}

// HistoryData — содержимое страницы истории.
type HistoryData struct {
	Reports []models.Report
	Empty   string
}

// Home показывает лендинг гостю, а вошедшему его email и последние отчёты.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.Sessions.Get(r)
	if !ok {
		h.render(w, r, http.StatusOK, view.PageHomepage, nil)
		return
	}

	email, err := h.Svc.Auth.Email(r.Context(), userID)
	if err != nil {
		// сессия ссылается на несуществующего пользователя
		if errors.Is(err, serr.ErrNotFound) {
			h.clearSession(w, r)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		h.internalError(w, r, "home email", err)
		return
	}

	reports, err := h.Svc.Reports.Recent(r.Context(), userID)
	if err != nil {
		h.internalError(w, r, "home reports", err)
		return
	}

	h.render(w, r, http.StatusOK, view.PageDataHomepage, HomeData{Email: email, Reports: reports})
}

// ReportForm показывает форму нового отчёта.
func (h *Handler) ReportForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.PageReport, nil)
}

// SubmitReport сохраняет отчёт и отправляет на /history.
//
// Количество и дата принимаются как есть, пустые заметки сохраняются как NULL.
func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	userID, _ := h.Sessions.Get(r)

	_, err := h.Svc.Reports.Submit(r.Context(), userID, models.NewReport{
		Vaccine:  r.PostForm.Get("vaccine"),
		Quantity: r.PostForm.Get("quantity"),
		Location: r.PostForm.Get("location"),
		Date:     r.PostForm.Get("date"),
		Notes:    utils.NilIfBlank(r.PostForm.Get("notes")),
	})
	if err != nil {
		h.internalError(w, r, "submit report", err)
		return
	}

	http.Redirect(w, r, "/history", http.StatusFound)
}

// History — все отчёты текущего пользователя, новые первыми.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID, _ := h.Sessions.Get(r)

	reports, err := h.Svc.Reports.History(r.Context(), userID)
	if err != nil {
		h.internalError(w, r, "history", err)
		return
	}

	data := HistoryData{Reports: reports}
	if len(reports) == 0 {
		data.Empty = MsgNoReports
	}
	h.render(w, r, http.StatusOK, view.PageHistory, data)
}
