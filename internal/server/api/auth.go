// HTTP-хендлеры регистрации, входа, выхода и смены пароля
package api

import (
	"errors"
	"net/http"

	serr "github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/view"
)

// Сообщения страниц-извинений форм аутентификации.
const (
	MsgEmailRequired       = "must provide email"
	MsgPasswordRequired    = "must provide password"
	MsgPasswordMismatch    = "Passwords do not match"
	MsgEmailTaken          = "This email has already been used to create an account."
	MsgInvalidCredentials  = "invalid email and/or password"
	MsgOldPasswordRequired = "must provide old password"
	MsgNewPasswordRequired = "must provide new password"
	MsgConfirmRequired     = "must provide confirmation"
	MsgOldPasswordWrong    = "old password is incorrect"
	MsgNewPasswordMismatch = "the new passwords do not match"
)

// RegisterForm показывает форму регистрации. Текущая сессия сбрасывается.
func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.clearSession(w, r)
	h.render(w, r, http.StatusOK, view.PageRegister, nil)
}

// Register обрабатывает регистрацию пользователя.
//
// Ответы:
//   - 302 на /: регистрация успешна, сессия открыта;
//   - 400: пустые поля, пароли не совпадают, email уже занят;
//   - 500: прочие ошибки.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	h.clearSession(w, r)
	if !h.parseForm(w, r) {
		return
	}

	id, err := h.Svc.Auth.Register(r.Context(),
		r.PostForm.Get("email"),
		r.PostForm.Get("password"),
		r.PostForm.Get("confirmation"),
	)
	if err != nil {
		switch {
		case errors.Is(err, serr.ErrEmailRequired):
			h.Apology(w, r, MsgEmailRequired, http.StatusBadRequest)
		case errors.Is(err, serr.ErrPasswordRequired):
			h.Apology(w, r, MsgPasswordRequired, http.StatusBadRequest)
		case errors.Is(err, serr.ErrPasswordMismatch):
			h.Apology(w, r, MsgPasswordMismatch, http.StatusBadRequest)
		case errors.Is(err, serr.ErrAlreadyExists):
			h.Apology(w, r, MsgEmailTaken, http.StatusBadRequest)
		default:
			h.internalError(w, r, "register", err)
		}
		return
	}

	if err := h.Sessions.Set(w, r, id); err != nil {
		h.internalError(w, r, "register session", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// LoginForm показывает форму входа. Текущая сессия сбрасывается.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.clearSession(w, r)
	h.render(w, r, http.StatusOK, view.PageLogin, nil)
}

// Login обрабатывает вход пользователя.
//
// Ответы:
//   - 302 на /: успешный вход;
//   - 403: любое несовпадение, одно и то же сообщение для всех причин;
//   - 500: прочие ошибки.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.clearSession(w, r)
	if !h.parseForm(w, r) {
		return
	}

	id, err := h.Svc.Auth.Login(r.Context(), r.PostForm.Get("email"), r.PostForm.Get("password"))
	if err != nil {
		if errors.Is(err, serr.ErrInvalidCredentials) {
			h.Apology(w, r, MsgInvalidCredentials, http.StatusForbidden)
			return
		}
		h.internalError(w, r, "login", err)
		return
	}

	if err := h.Sessions.Set(w, r, id); err != nil {
		h.internalError(w, r, "login session", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout всегда сбрасывает сессию и отправляет на /login.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSession(w, r)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// PasswordForm показывает форму смены пароля.
func (h *Handler) PasswordForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.PagePassword, nil)
}

// ChangePassword меняет пароль и принудительно разлогинивает.
//
// Ответы:
//   - 302 на /logout: пароль изменён, все сессии пользователя удалены;
//   - 400: пустые поля или новый пароль не совпал с подтверждением;
//   - 403: старый пароль неверный;
//   - 500: прочие ошибки.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	userID, _ := h.Sessions.Get(r)

	err := h.Svc.Auth.ChangePassword(r.Context(), userID,
		r.PostForm.Get("old_password"),
		r.PostForm.Get("new_password"),
		r.PostForm.Get("confirmation"),
	)
	if err != nil {
		switch {
		case errors.Is(err, serr.ErrOldPasswordRequired):
			h.Apology(w, r, MsgOldPasswordRequired, http.StatusBadRequest)
		case errors.Is(err, serr.ErrNewPasswordRequired):
			h.Apology(w, r, MsgNewPasswordRequired, http.StatusBadRequest)
		case errors.Is(err, serr.ErrConfirmationRequired):
			h.Apology(w, r, MsgConfirmRequired, http.StatusBadRequest)
		case errors.Is(err, serr.ErrOldPasswordIncorrect):
			h.Apology(w, r, MsgOldPasswordWrong, http.StatusForbidden)
		case errors.Is(err, serr.ErrPasswordMismatch):
			h.Apology(w, r, MsgNewPasswordMismatch, http.StatusBadRequest)
		default:
			h.internalError(w, r, "change password", err)
		}
		return
	}

	http.Redirect(w, r, "/logout", http.StatusFound)
}

// clearSession сбрасывает сессию; ошибка хранилища только логируется,
// браузер в любом случае теряет cookie.
func (h *Handler) clearSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Clear(w, r); err != nil {
		h.Log.Sugar().Errorw("clear session failed", "error", err)
	}
}
