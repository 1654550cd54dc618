package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexora-legal/lexora/internal/platform/httpx"
	"github.com/lexora-legal/lexora/internal/shared"
)

type staticResolver struct {
	firmID uuid.UUID
	err    error
	calls  int
}

func (r *staticResolver) Resolve(ctx context.Context, principalID int64) (uuid.UUID, error) {
	r.calls++
	if r.err != nil {
		return uuid.Nil, r.err
	}
	return r.firmID, nil
}

type denialCounter struct {
	denied []string
}

func (d *denialCounter) RecordPermissionDenial(permission string) {
	d.denied = append(d.denied, permission)
}

func gateFixture(t *testing.T, granted []string) (Middleware, *staticResolver, *mockRepo) {
	t.Helper()
	repo := newMockRepo()
	if granted != nil {
		repo.perms[1] = granted
	}
	resolver := &staticResolver{firmID: uuid.New()}
	mw := Middleware{
		Service:  NewService(repo),
		Resolver: resolver,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return mw, resolver, repo
}

func requestWithPrincipal(id int64) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/matters", nil)
	principal := &shared.Principal{ID: id, Email: "ada@windmill.law"}
	return req.WithContext(shared.ContextWithPrincipal(req.Context(), principal))
}

func TestRequireRejectsMissingPrincipal(t *testing.T) {
	mw, resolver, repo := gateFixture(t, nil)

	handler := mw.Require(shared.PermMattersRead)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/matters", nil))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	// The gate rejected before touching tenant or permission state.
	assert.Zero(t, resolver.calls)
	_ = repo
}

func TestRequireRejectsMissingPermission(t *testing.T) {
	mw, _, _ := gateFixture(t, []string{shared.PermMattersRead})
	metrics := &denialCounter{}
	mw.Metrics = metrics

	handler := mw.Require(shared.PermMattersWrite)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestWithPrincipal(1))

	require.Equal(t, http.StatusForbidden, rr.Code)
	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Missing permission: matters:write", body.Error)
	assert.Equal(t, httpx.CodeForbidden, body.Code)
	assert.Equal(t, []string{shared.PermMattersWrite}, metrics.denied)
}

func TestRequireNoRoleFailsClosed(t *testing.T) {
	mw, _, _ := gateFixture(t, nil)

	handler := mw.Require(shared.PermMattersRead)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestWithPrincipal(1))

	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRequirePassesAndInjectsFirm(t *testing.T) {
	mw, resolver, _ := gateFixture(t, []string{shared.PermMattersRead})

	var gotFirm uuid.UUID
	var ok bool
	handler := mw.Require(shared.PermMattersRead)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFirm, ok = shared.FirmFromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestWithPrincipal(1))

	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, ok)
	assert.Equal(t, resolver.firmID, gotFirm)
}

func TestRequireResolverFailurePropagates(t *testing.T) {
	mw, resolver, _ := gateFixture(t, []string{shared.PermMattersRead})
	resolver.err = errors.New("pool exhausted")

	handler := mw.Require(shared.PermMattersRead)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestWithPrincipal(1))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "internal error")
}
