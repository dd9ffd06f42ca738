package server

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/Tomlord1122/taskflow/internal/auth"
	"github.com/Tomlord1122/taskflow/internal/service"
)

func (s *Server) loginFormHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login.html", map[string]any{
		"Next": r.URL.Query().Get("next"),
	})
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	next := r.PostForm.Get("next")

	verr := &service.ValidationError{}
	if username == "" {
		verr.Add("username", "This field is required.")
	}
	if password == "" {
		verr.Add("password", "This field is required.")
	}
	if verr.OrNil() != nil {
		s.render(w, r, http.StatusOK, "login.html", map[string]any{
			"Username": username,
			"Next":     next,
			"Errors":   verr,
		})
		return
	}

	user, err := s.userService.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			s.render(w, r, http.StatusOK, "login.html", map[string]any{
				"Username": username,
				"Next":     next,
				"Error":    "Invalid username or password.",
			})
			return
		}
		s.serverError(w, r, err)
		return
	}

	token, err := s.sessions.Create(r.Context(), user.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	// drop any session the browser already had
	if c, err := r.Cookie(auth.SessionCookieName); err == nil && c.Value != "" {
		if err := s.sessions.Delete(r.Context(), c.Value); err != nil {
			log.Printf("Error deleting previous session: %v", err)
		}
	}
	auth.SetSessionCookie(w, token, s.cfg.Session.TTL, s.cfg.Session.CookieSecure)
	s.setFlash(w, r, "success", "Login successful.")
	http.Redirect(w, r, safeRedirect(next), http.StatusSeeOther)
}

// safeRedirect only follows local absolute paths and falls back to home.
// Browsers drop tabs and newlines and treat backslashes as slashes, so any
// of those, raw or percent-encoded, could turn a local path into a
// protocol-relative one.
func safeRedirect(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || hasUnsafeRune(next) {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || strings.HasPrefix(u.Path, "//") || hasUnsafeRune(u.Path) {
		return "/"
	}
	return next
}

func hasUnsafeRune(s string) bool {
	return strings.ContainsFunc(s, func(c rune) bool {
		return c < 0x20 || c == 0x7f || c == '\\'
	})
}

func (s *Server) signupFormHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "signup.html", nil)
}

func (s *Server) signupHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	req := service.RegisterRequest{
		Username:        r.PostForm.Get("username"),
		Email:           r.PostForm.Get("email"),
		Password:        r.PostForm.Get("password1"),
		PasswordConfirm: r.PostForm.Get("password2"),
	}

	_, err := s.userService.Register(r.Context(), req)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			s.render(w, r, http.StatusOK, "signup.html", map[string]any{
				"Username": req.Username,
				"Email":    req.Email,
				"Errors":   verr,
			})
			return
		}
		s.serverError(w, r, err)
		return
	}

	s.setFlash(w, r, "success", "Account created. Please log in.")
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

// logoutConfirmHandler only renders the confirmation; nothing is ended on GET.
func (s *Server) logoutConfirmHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "logout_confirm.html", nil)
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(auth.SessionCookieName); err == nil && c.Value != "" {
		if err := s.sessions.Delete(r.Context(), c.Value); err != nil {
			s.serverError(w, r, err)
			return
		}
	}
	auth.ClearSessionCookie(w, s.cfg.Session.CookieSecure)
	s.setFlash(w, r, "info", "You have been logged out.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
