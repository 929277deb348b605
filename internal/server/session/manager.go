// Package session реализует серверные сессии браузера.
//
// Браузер получает cookie с непрозрачным случайным токеном, сам токен
// никаких данных не несёт. В хранилище (PostgreSQL или redis) лежит
// sha256 токена и id пользователя.
//
// Состояние сессии загружается middleware Load один раз на запрос и
// кладётся в context.Context; обработчики работают с ним через
// Manager.Get/Set/Clear.
package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/crypto"
	serr "github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/shared/logger"
)

// Store — хранилище сессий. Ключ — sha256 от токена cookie.
//
// Lookup возвращает serr.ErrNotFound для неизвестного хэша.
type Store interface {
	Create(ctx context.Context, tokenHash []byte, userID uuid.UUID) error
	Lookup(ctx context.Context, tokenHash []byte) (uuid.UUID, error)
	Delete(ctx context.Context, tokenHash []byte) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}

// ctxKey используется как тип ключа для хранения значений в context.Context.
type ctxKey struct{}

// state — состояние сессии текущего запроса.
type state struct {
	token  string
	userID uuid.UUID
}

func (s *state) authenticated() bool {
	return s.userID != uuid.Nil
}

// Options — параметры cookie.
type Options struct {
	CookieName string
	Secure     bool
}

// Manager связывает cookie браузера с записью в Store.
type Manager struct {
	store  Store
	opts   Options
	newTok func() (string, error)
	log    *logger.HTTPLogger
}

// NewManager создаёт Manager поверх выбранного хранилища.
func NewManager(store Store, opts Options, log *logger.HTTPLogger) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "session"
	}
	return &Manager{
		store:  store,
		opts:   opts,
		newTok: crypto.NewSessionToken,
		log:    log,
	}
}

// Load — middleware, которое читает cookie и кладёт состояние сессии в контекст.
//
// Неизвестный или удалённый токен означает «не залогинен», а не ошибку.
// Ошибка хранилища логируется, запрос продолжается без сессии.
func (m *Manager) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := &state{}

		if c, err := r.Cookie(m.opts.CookieName); err == nil && c.Value != "" {
			userID, err := m.store.Lookup(r.Context(), crypto.HashSessionToken(c.Value))
			switch {
			case err == nil:
				st.token = c.Value
				st.userID = userID
			case errors.Is(err, serr.ErrNotFound):
			default:
				m.log.Sugar().Errorw("session lookup failed", "error", err)
			}
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, st)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func stateFrom(r *http.Request) *state {
	if st, ok := r.Context().Value(ctxKey{}).(*state); ok {
		return st
	}
	return &state{}
}

// Get возвращает id аутентифицированного пользователя.
//
// Возвращает:
//   - userID
//   - false, если пользователь не аутентифицирован
func (m *Manager) Get(r *http.Request) (uuid.UUID, bool) {
	st := stateFrom(r)
	return st.userID, st.authenticated()
}

// Set аутентифицирует текущую сессию браузера под userID.
//
// Старый токен (если был) удаляется, выдаётся новый.
func (m *Manager) Set(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return serr.ErrUserIDEmpty
	}

	st := stateFrom(r)
	if st.token != "" {
		if err := m.store.Delete(r.Context(), crypto.HashSessionToken(st.token)); err != nil {
			return err
		}
	}

	token, err := m.newTok()
	if err != nil {
		return serr.ErrInternal
	}
	if err := m.store.Create(r.Context(), crypto.HashSessionToken(token), userID); err != nil {
		return err
	}

	// без Expires/MaxAge cookie живёт до закрытия браузера
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	st.token = token
	st.userID = userID
	return nil
}

// Clear удаляет сессию из хранилища и просит браузер забыть cookie.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	st := stateFrom(r)

	var err error
	if st.token != "" {
		err = m.store.Delete(r.Context(), crypto.HashSessionToken(st.token))
	}

	if st.token != "" || hasCookie(r, m.opts.CookieName) {
		http.SetCookie(w, &http.Cookie{
			Name:     m.opts.CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   m.opts.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	st.token = ""
	st.userID = uuid.Nil
	return err
}

// RequireLogin — middleware защищённых страниц: без сессии редирект на /login.
func (m *Manager) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := m.Get(r); !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func hasCookie(r *http.Request, name string) bool {
	_, err := r.Cookie(name)
	return err == nil
}
