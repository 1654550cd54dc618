package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lexora-legal/lexora/internal/auth"
	"github.com/lexora-legal/lexora/internal/shared"
	_ "github.com/lexora-legal/lexora/testing"
)

type stubRepo struct {
	user     *auth.User
	sessions map[string]int64
}

func newStubRepo(user *auth.User) *stubRepo {
	return &stubRepo{user: user, sessions: map[string]int64{}}
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	handler := auth.NewHandler(testLogger(), auth.NewService(repo), sessionManager, csrfManager)
	return handler, sessionManager
}

func testUser(t *testing.T) *auth.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse-1"), bcrypt.MinCost)
	require.NoError(t, err)
	return &auth.User{ID: 7, Email: "ada@windmill.law", PasswordHash: string(hash), IsActive: true}
}

func withSession(t *testing.T, sm *shared.SessionManager, req *http.Request) *http.Request {
	t.Helper()
	sess, err := sm.Load(req.Context(), req)
	require.NoError(t, err)
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestLoginSuccess(t *testing.T) {
	repo := newStubRepo(testUser(t))
	handler, sm := newAuthHandler(t, repo)

	router := routerFor(handler)
	body := `{"email":"ada@windmill.law","password":"correct-horse-1"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withSession(t, sm, req)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp struct {
		UserID    int64  `json:"userId"`
		Email     string `json:"email"`
		CSRFToken string `json:"csrfToken"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.UserID)
	assert.Equal(t, "ada@windmill.law", resp.Email)
	assert.NotEmpty(t, resp.CSRFToken)
	assert.Len(t, repo.sessions, 1)
}

func TestLoginWrongPassword(t *testing.T) {
	handler, sm := newAuthHandler(t, newStubRepo(testUser(t)))

	router := routerFor(handler)
	body := `{"email":"ada@windmill.law","password":"not-the-password"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withSession(t, sm, req)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	var resp struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "invalid email or password", resp.Error)
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	handler, sm := newAuthHandler(t, newStubRepo(testUser(t)))

	router := routerFor(handler)
	body := `{"email":"nobody@windmill.law","password":"correct-horse-1"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withSession(t, sm, req)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid email or password")
}

func TestLoginValidation(t *testing.T) {
	handler, sm := newAuthHandler(t, newStubRepo(testUser(t)))

	router := routerFor(handler)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"not-an-email","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	req = withSession(t, sm, req)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSessionEndpointRequiresLogin(t *testing.T) {
	handler, sm := newAuthHandler(t, newStubRepo(testUser(t)))

	router := routerFor(handler)
	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req = withSession(t, sm, req)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGateRejectsWithoutSession(t *testing.T) {
	repo := newStubRepo(testUser(t))
	gate := auth.Gate{Service: auth.NewService(repo), Logger: testLogger()}

	called := false
	protected := gate.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/matters", nil)
	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, called)
}

func TestGateInjectsPrincipal(t *testing.T) {
	user := testUser(t)
	repo := newStubRepo(user)
	_, sm := newAuthHandler(t, repo)
	gate := auth.Gate{Service: auth.NewService(repo), Logger: testLogger()}

	var got *shared.Principal
	protected := gate.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = shared.PrincipalFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/matters", nil)
	req = withSession(t, sm, req)
	sess := shared.SessionFromContext(req.Context())
	sess.SetUser("7")
	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.Email, got.Email)
}

func TestGateRejectsInactiveUser(t *testing.T) {
	user := testUser(t)
	user.IsActive = false
	repo := newStubRepo(user)
	_, sm := newAuthHandler(t, repo)
	gate := auth.Gate{Service: auth.NewService(repo), Logger: testLogger()}

	protected := gate.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/matters", nil)
	req = withSession(t, sm, req)
	shared.SessionFromContext(req.Context()).SetUser("7")
	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthenticateInactive(t *testing.T) {
	user := testUser(t)
	user.IsActive = false
	svc := auth.NewService(newStubRepo(user))

	_, err := svc.Authenticate(context.Background(), user.Email, "correct-horse-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidCredentials))
}
