package api

import (
	"crypto/subtle"
	"net/http"
)

// sessionCookieName carries the opaque session token.
const sessionCookieName = "session_token"

// loginHandler checks the submitted credentials against the configured
// admin pair and issues a session on success. Any mismatch yields the same
// generic message, so callers cannot probe which field was wrong.
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondWithJSON(w, http.StatusOK, apiResponse{
			Success: false,
			Message: "Invalid form data",
		})
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.config.Auth.AdminUsername))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.config.Auth.AdminPassword))

	if userOK&passOK != 1 {
		s.logger.Warn("Failed login attempt", "remoteAddr", r.RemoteAddr)
		s.respondWithJSON(w, http.StatusOK, apiResponse{
			Success: false,
			Message: "Invalid username or password",
		})
		return
	}

	sess := s.sessions.Create()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	s.logger.Info("Admin logged in", "remoteAddr", r.RemoteAddr)
	s.respondWithJSON(w, http.StatusOK, apiResponse{Success: true})
}

// logoutHandler destroys the session named by the cookie, if any, and
// always reports success.
func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		s.sessions.Destroy(cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	s.respondWithJSON(w, http.StatusOK, apiResponse{Success: true})
}

// isAdmin reports whether the request carries a live authenticated session.
func (s *Server) isAdmin(r *http.Request) bool {
	cookie, err := r.Cookie(sessionCookieName)

	if err != nil {
		return false
	}

	sess, ok := s.sessions.Get(cookie.Value)

	return ok && sess.Authenticated
}
