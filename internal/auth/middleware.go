package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/lexora-legal/lexora/internal/platform/httpx"
	"github.com/lexora-legal/lexora/internal/shared"
)

// Gate terminates requests that do not carry a valid authenticated
// session. On success it attaches the resolved principal to the request
// context; downstream middleware and handlers never re-resolve it.
type Gate struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireSession rejects unauthenticated requests with 401 before any
// tenant or permission work happens.
func (g Gate) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil {
			httpx.RespondError(w, g.Logger, httpx.ErrUnauthenticated)
			return
		}
		raw := strings.TrimSpace(sess.User())
		if raw == "" {
			httpx.RespondError(w, g.Logger, httpx.ErrUnauthenticated)
			return
		}
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			if g.Logger != nil {
				g.Logger.Error("auth parse user id", slog.String("value", raw))
			}
			httpx.RespondError(w, g.Logger, httpx.ErrUnauthenticated)
			return
		}
		principal, err := g.Service.LookupPrincipal(r.Context(), userID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				httpx.RespondError(w, g.Logger, httpx.ErrUnauthenticated)
				return
			}
			httpx.RespondError(w, g.Logger, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
	})
}
