package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/api"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/crypto"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/models"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/service"
	svcmocks "github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/service/mocks"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/session"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/view"
	serr "github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/shared/logger"
)

const testToken = "test-token"

// oneSession — хранилище с единственной сессией testToken -> user.
type oneSession struct {
	user    uuid.UUID
	deleted bool
}

func (s *oneSession) Create(context.Context, []byte, uuid.UUID) error { return nil }

func (s *oneSession) Lookup(_ context.Context, h []byte) (uuid.UUID, error) {
	if s.deleted || string(h) != string(crypto.HashSessionToken(testToken)) {
		return uuid.Nil, serr.ErrNotFound
	}
	return s.user, nil
}

func (s *oneSession) Delete(context.Context, []byte) error {
	s.deleted = true
	return nil
}

func (s *oneSession) DeleteAllForUser(context.Context, uuid.UUID) error { return nil }

type fixture struct {
	handler http.Handler
	users   *svcmocks.MockUsersRepo
	reports *svcmocks.MockReportsRepo
	store   *oneSession
	logs    *observer.ObservedLogs
}

func newFixture(t *testing.T, route func(h *api.Handler) http.HandlerFunc) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	users := svcmocks.NewMockUsersRepo(ctrl)
	reports := svcmocks.NewMockReportsRepo(ctrl)
	sessions := svcmocks.NewMockSessionsRepo(ctrl)

	svc := &service.Services{
		Auth:    service.NewAuthService(users, sessions, crypto.BcryptHasher{Cost: 4}),
		Reports: service.NewReportsService(reports, 100),
	}
	renderer, err := view.NewRenderer()
	require.NoError(t, err)

	core, logs := observer.New(zap.ErrorLevel)
	log := logger.New(core)

	store := &oneSession{user: uuid.New()}
	mgr := session.NewManager(store, session.Options{}, log)
	h := api.NewHandler(svc, mgr, renderer, log)

	return &fixture{
		handler: mgr.Load(route(h)),
		users:   users,
		reports: reports,
		store:   store,
		logs:    logs,
	}
}

func (f *fixture) do(req *http.Request, authed bool) *httptest.ResponseRecorder {
	if authed {
		req.AddCookie(&http.Cookie{Name: "session", Value: testToken})
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Apology(t *testing.T) {
	f := newFixture(t, func(h *api.Handler) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) { h.Apology(w, r, "nope", http.StatusTeapot) }
	})

	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil), false)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, rec.Body.String(), "nope")
	assert.Contains(t, rec.Body.String(), "418")
}

func TestHandler_HomeAnonymous(t *testing.T) {
	f := newFixture(t, func(h *api.Handler) http.HandlerFunc { return h.Home })

	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil), false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/register")
}

func TestHandler_HomeAuthenticated(t *testing.T) {
	f := newFixture(t, func(h *api.Handler) http.HandlerFunc { return h.Home })

	f.users.EXPECT().GetByID(gomock.Any(), f.store.user).
		Return(models.User{ID: f.store.user, Email: "a@x.com"}, nil)
	f.reports.EXPECT().ListByUser(gomock.Any(), f.store.user, 100).
		Return([]models.Report{{Vaccine: "Pfizer", Quantity: "10", Location: "Clinic", Date: "2026-01-01"}}, nil)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil), true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a@x.com")
	assert.Contains(t, rec.Body.String(), "Pfizer")
}

func TestHandler_HomeStaleSession(t *testing.T) {
	f := newFixture(t, func(h *api.Handler) http.HandlerFunc { return h.Home })

	f.users.EXPECT().GetByID(gomock.Any(), f.store.user).Return(models.User{}, serr.ErrNotFound)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil), true)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.True(t, f.store.deleted)
}

func TestHandler_HistoryInternalError(t *testing.T) {
	f := newFixture(t, func(h *api.Handler) http.HandlerFunc { return h.History })

	f.reports.EXPECT().ListByUser(gomock.Any(), f.store.user, 0).Return(nil, errors.New("db down"))

	rec := f.do(httptest.NewRequest(http.MethodGet, "/history", nil), true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
	assert.NotContains(t, rec.Body.String(), "db down")
	assert.Equal(t, 1, f.logs.FilterMessage("history failed").Len())
}

func TestHandler_SubmitReportBlankNotes(t *testing.T) {
	f := newFixture(t, func(h *api.Handler) http.HandlerFunc { return h.SubmitReport })

	f.reports.EXPECT().Create(gomock.Any(), f.store.user, models.NewReport{
		Vaccine: "Pfizer", Quantity: "ten", Location: "Clinic", Date: "someday",
	}).Return(uuid.New(), nil)

	form := url.Values{
		"vaccine": {"Pfizer"}, "quantity": {"ten"}, "location": {"Clinic"},
		"date": {"someday"}, "notes": {"   "},
	}
	req := httptest.NewRequest(http.MethodPost, "/report", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := f.do(req, true)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/history", rec.Header().Get("Location"))
}

func TestHandler_RegisterClearsSession(t *testing.T) {
	f := newFixture(t, func(h *api.Handler) http.HandlerFunc { return h.RegisterForm })

	rec := f.do(httptest.NewRequest(http.MethodGet, "/register", nil), true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.store.deleted)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

// brokenWriter принимает заголовки, но не даёт записать тело.
type brokenWriter struct {
	header http.Header
	codes  []int
}

func (w *brokenWriter) Header() http.Header { return w.header }

func (w *brokenWriter) WriteHeader(code int) { w.codes = append(w.codes, code) }

func (w *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestHandler_WriteFailureSendsHeaderOnce(t *testing.T) {
	f := newFixture(t, func(h *api.Handler) http.HandlerFunc { return h.LoginForm })

	w := &brokenWriter{header: http.Header{}}
	f.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))

	// без повторного http.Error поверх уже отправленного 200
	assert.Equal(t, []int{http.StatusOK}, w.codes)
	assert.Equal(t, 0, f.logs.FilterMessage("render failed").Len())
}
