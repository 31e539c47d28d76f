// Package guard implements the synchronous navigation gate. Decisions are
// made from the already-loaded session state only; the guard never performs
// I/O and never blocks a render on a network fetch.
package guard

import (
	"log/slog"
	"net/http"

	"github.com/interviewhub/gateway/internal/authz"
	"github.com/interviewhub/gateway/internal/observability"
	"github.com/interviewhub/gateway/internal/shared"
)

// Default redirect targets.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Guard wires navigation authorization middleware for HTTP handlers.
type Guard struct {
	Logger    *slog.Logger
	Metrics   *observability.Metrics
	LoginPath string
	HomePath  string
}

// New constructs a Guard with the default redirect targets.
func New(logger *slog.Logger, metrics *observability.Metrics) Guard {
	return Guard{Logger: logger, Metrics: metrics, LoginPath: LoginPath, HomePath: HomePath}
}

// RequireAuth gates a route on an authenticated session. Unauthenticated
// navigation redirects to the login route; the attempted destination is not
// preserved for a post-login redirect.
func (g Guard) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.view(r).Authenticated() {
			g.Metrics.RecordDenial("route")
			http.Redirect(w, r, g.loginPath(), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole gates a route on an authenticated session whose role is in the
// allow list. An authenticated session with the wrong role redirects home,
// distinguishing "not authorized" from "not logged in".
func (g Guard) RequireRole(roles ...authz.Role) func(http.Handler) http.Handler {
	allowed := make(map[authz.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil || !sess.View().Authenticated() {
				g.Metrics.RecordDenial("route")
				http.Redirect(w, r, g.loginPath(), http.StatusSeeOther)
				return
			}
			if len(allowed) > 0 {
				if _, ok := allowed[sess.Auth().Role]; !ok {
					if g.Logger != nil {
						g.Logger.Warn("role denied", slog.String("path", r.URL.Path), slog.String("role", string(sess.Auth().Role)))
					}
					g.Metrics.RecordDenial("route")
					http.Redirect(w, r, g.homePath(), http.StatusSeeOther)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GuestOnly inverts the gate for the login and register routes: an active
// session is sent home instead of re-authenticating.
func (g Guard) GuestOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.view(r).Authenticated() {
			http.Redirect(w, r, g.homePath(), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NotFound is the catch-all for unmatched paths.
func (g Guard) NotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, g.homePath(), http.StatusSeeOther)
	}
}

func (g Guard) view(r *http.Request) authz.View {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return authz.ViewPublic
	}
	return sess.View()
}

func (g Guard) loginPath() string {
	if g.LoginPath == "" {
		return LoginPath
	}
	return g.LoginPath
}

func (g Guard) homePath() string {
	if g.HomePath == "" {
		return HomePath
	}
	return g.HomePath
}
