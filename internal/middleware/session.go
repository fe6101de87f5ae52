package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/HammerMeetNail/combohub/internal/handlers"
	"github.com/HammerMeetNail/combohub/internal/logging"
	"github.com/HammerMeetNail/combohub/internal/models"
	"github.com/HammerMeetNail/combohub/internal/services"
)

// SessionMiddleware resolves the viewer for a request. The session cookie is
// tried first, then a bearer token. Any failure leaves the request
// anonymous.
type SessionMiddleware struct {
	sessions   services.SessionServiceInterface
	tokens     services.TokenVerifierInterface
	users      services.UserServiceInterface
	cookieName string
	logger     *logging.Logger
}

func NewSessionMiddleware(
	sessions services.SessionServiceInterface,
	tokens services.TokenVerifierInterface,
	users services.UserServiceInterface,
	cookieName string,
	logger *logging.Logger,
) *SessionMiddleware {
	if logger == nil {
		logger = logging.Default
	}
	return &SessionMiddleware{
		sessions:   sessions,
		tokens:     tokens,
		users:      users,
		cookieName: cookieName,
		logger:     logger,
	}
}

func (m *SessionMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := m.currentSession(r)
		if session == nil {
			next.ServeHTTP(w, r)
			return
		}

		viewer, err := m.users.FindViewer(r.Context(), session.User.Email)
		if err != nil {
			if !errors.Is(err, services.ErrUserNotFound) {
				m.logger.Warn("Viewer lookup failed", map[string]interface{}{"error": err.Error()})
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(handlers.SetViewerInContext(r.Context(), viewer)))
	})
}

func (m *SessionMiddleware) currentSession(r *http.Request) *models.Session {
	if cookie, err := r.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		session, err := m.sessions.GetCurrentSession(r.Context(), cookie.Value)
		if err == nil {
			return session
		}
		if !errors.Is(err, services.ErrSessionNotFound) {
			m.logger.Warn("Session lookup failed", map[string]interface{}{"error": err.Error()})
		}
	}

	if m.tokens == nil {
		return nil
	}
	token, ok := bearerToken(r)
	if !ok {
		return nil
	}
	session, err := m.tokens.Verify(token)
	if err != nil {
		m.logger.Debug("Bearer token rejected", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return session
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireViewer rejects anonymous requests: 401 JSON for fragment and API
// callers, a redirect with an error message for plain form posts.
func (m *SessionMiddleware) RequireViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handlers.GetViewerFromContext(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("HX-Request") != "" || r.Header.Get("Authorization") != "" {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		http.Redirect(w, r, signInRedirect(r), http.StatusSeeOther)
	})
}

func signInRedirect(r *http.Request) string {
	back := r.Referer()
	if back == "" {
		back = "/combos"
	}
	u, err := url.Parse(back)
	if err != nil || (u.Host != "" && u.Host != r.Host) {
		u = &url.URL{Path: "/combos"}
	}
	q := u.Query()
	q.Set("error", "Sign in to do that.")
	u.RawQuery = q.Encode()
	return u.RequestURI()
}
