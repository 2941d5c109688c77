package server

import (
	"net/http"

	"github.com/h0rv/gpx/internal/auth"
	"github.com/h0rv/gpx/internal/session"
)

// stateCookieName holds the OAuth state between /login and /callback,
// scoped to the callback path only.
const stateCookieName = "gpx_oauth_state"

const stateCookieMaxAge = 10 * 60

// lookupSession returns the caller's session, or nil when the request has
// no valid session cookie.
func (s *Server) lookupSession(r *http.Request) *session.Session {
	c, err := r.Cookie(s.cfg.CookieName)
	if err != nil {
		return nil
	}
	sess, err := s.sessions.Lookup(c.Value)
	if err != nil {
		return nil
	}
	return sess
}

// identity resolves the caller's GitHub identity.
func (s *Server) identity(r *http.Request) (auth.Identity, error) {
	if s.cfg.TokenOverride != "" {
		return auth.Resolve(nil, s.cfg.TokenOverride)
	}
	sess := s.lookupSession(r)
	if sess == nil {
		return auth.Identity{}, auth.ErrUnauthenticated
	}
	return auth.Resolve(sess, "")
}

// The session cookie is Lax so the landing page after GitHub's login
// redirect still receives it.
func (s *Server) setSessionCookie(w http.ResponseWriter, sess *session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    s.sessions.Encode(sess.ID()),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) setStateCookie(w http.ResponseWriter, state string) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    s.sessions.Encode(state),
		Path:     "/callback",
		MaxAge:   stateCookieMaxAge,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/callback",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// expectedState returns the state issued by /login, verified against the
// cookie signature.
func (s *Server) expectedState(r *http.Request) (string, bool) {
	c, err := r.Cookie(stateCookieName)
	if err != nil {
		return "", false
	}
	state, err := s.sessions.Decode(c.Value)
	if err != nil {
		return "", false
	}
	return state, true
}
