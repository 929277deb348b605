package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/session"
	serr "github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/shared/logger"
)

// memStore — store в памяти для тестов менеджера
type memStore struct {
	mu        sync.Mutex
	sessions  map[string]uuid.UUID
	lookupErr error
}

func newMemStore() *memStore {
	return &memStore{sessions: map[string]uuid.UUID{}}
}

func (s *memStore) Create(_ context.Context, h []byte, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[string(h)] = userID
	return nil
}

func (s *memStore) Lookup(_ context.Context, h []byte) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return uuid.Nil, s.lookupErr
	}
	id, ok := s.sessions[string(h)]
	if !ok {
		return uuid.Nil, serr.ErrNotFound
	}
	return id, nil
}

func (s *memStore) Delete(_ context.Context, h []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, string(h))
	return nil
}

func (s *memStore) DeleteAllForUser(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.sessions {
		if v == userID {
			delete(s.sessions, k)
		}
	}
	return nil
}

func (s *memStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func newManager(store session.Store) *session.Manager {
	return session.NewManager(store, session.Options{CookieName: "session"}, logger.NewNop())
}

// serve прогоняет запрос через Load и возвращает ответ
func serve(m *session.Manager, req *http.Request, h http.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	m.Load(h).ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestManager_GetWithoutCookie(t *testing.T) {
	m := newManager(newMemStore())

	serve(m, httptest.NewRequest(http.MethodGet, "/", nil), func(w http.ResponseWriter, r *http.Request) {
		_, ok := m.Get(r)
		require.False(t, ok)
	})
}

func TestManager_SetThenGetOnNextRequest(t *testing.T) {
	store := newMemStore()
	m := newManager(store)
	userID := uuid.New()

	rec := serve(m, httptest.NewRequest(http.MethodPost, "/login", nil), func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, m.Set(w, r, userID))

		// в рамках того же запроса сессия уже видна
		got, ok := m.Get(r)
		require.True(t, ok)
		require.Equal(t, userID, got)
	})

	c := sessionCookie(t, rec)
	require.True(t, c.HttpOnly)
	require.Equal(t, "/", c.Path)
	require.Zero(t, c.MaxAge)
	require.True(t, c.Expires.IsZero())
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	serve(m, req, func(w http.ResponseWriter, r *http.Request) {
		got, ok := m.Get(r)
		require.True(t, ok)
		require.Equal(t, userID, got)
	})
}

func TestManager_SetRotatesToken(t *testing.T) {
	store := newMemStore()
	m := newManager(store)

	first := serve(m, httptest.NewRequest(http.MethodPost, "/login", nil), func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, m.Set(w, r, uuid.New()))
	})
	old := sessionCookie(t, first)

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.AddCookie(old)
	second := serve(m, req, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, m.Set(w, r, uuid.New()))
	})
	fresh := sessionCookie(t, second)

	require.NotEqual(t, old.Value, fresh.Value)
	require.Equal(t, 1, store.len())
}

func TestManager_UnknownCookieIsAnonymous(t *testing.T) {
	m := newManager(newMemStore())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "forged"})
	serve(m, req, func(w http.ResponseWriter, r *http.Request) {
		_, ok := m.Get(r)
		require.False(t, ok)
	})
}

func TestManager_StoreErrorIsAnonymous(t *testing.T) {
	store := newMemStore()
	store.lookupErr = errors.New("db down")
	m := newManager(store)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "whatever"})
	rec := serve(m, req, func(w http.ResponseWriter, r *http.Request) {
		_, ok := m.Get(r)
		require.False(t, ok)
		w.WriteHeader(http.StatusOK)
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestManager_Clear(t *testing.T) {
	store := newMemStore()
	m := newManager(store)

	login := serve(m, httptest.NewRequest(http.MethodPost, "/login", nil), func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, m.Set(w, r, uuid.New()))
	})
	c := sessionCookie(t, login)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(c)
	logout := serve(m, req, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, m.Clear(w, r))
		_, ok := m.Get(r)
		require.False(t, ok)
	})

	cleared := sessionCookie(t, logout)
	require.Equal(t, -1, cleared.MaxAge)
	require.Zero(t, store.len())

	// старый токен больше не работает
	again := httptest.NewRequest(http.MethodGet, "/", nil)
	again.AddCookie(c)
	serve(m, again, func(w http.ResponseWriter, r *http.Request) {
		_, ok := m.Get(r)
		require.False(t, ok)
	})
}

func TestManager_SetRejectsNilUser(t *testing.T) {
	m := newManager(newMemStore())

	serve(m, httptest.NewRequest(http.MethodPost, "/", nil), func(w http.ResponseWriter, r *http.Request) {
		require.ErrorIs(t, m.Set(w, r, uuid.Nil), serr.ErrUserIDEmpty)
	})
}

func TestManager_RequireLogin(t *testing.T) {
	store := newMemStore()
	m := newManager(store)

	protected := m.Load(m.RequireLogin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	login := serve(m, httptest.NewRequest(http.MethodPost, "/login", nil), func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, m.Set(w, r, uuid.New()))
	})

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	req.AddCookie(sessionCookie(t, login))
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTeapot, rec.Code)
}
