package server

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"github.com/Tomlord1122/taskflow/internal/auth"
	"github.com/Tomlord1122/taskflow/internal/config"
	"github.com/Tomlord1122/taskflow/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	layoutTemplate = "templates/base.html"
	flashCookie    = "messages"
)

type pageSet struct {
	pages map[string]*template.Template
}

// loadPages parses every page template together with the shared layout.
func loadPages() (*pageSet, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	funcs := template.FuncMap{
		"fieldErrors": func(verr *service.ValidationError, field string) []string {
			if verr == nil {
				return nil
			}
			return verr.For(field)
		},
	}
	ps := &pageSet{pages: make(map[string]*template.Template)}
	for _, name := range names {
		if name == layoutTemplate {
			continue
		}
		t, err := template.New("base.html").Funcs(funcs).ParseFS(templateFS, layoutTemplate, name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		ps.pages[strings.TrimPrefix(name, "templates/")] = t
	}
	return ps, nil
}

// flash is a one-shot message shown on the next rendered page.
type flash struct {
	Level   string
	Message string
}

// view is what every template receives.
type view struct {
	User    *service.UserResponse
	Flashes []flash
	Data    map[string]any
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]any) {
	t, ok := s.pages.pages[page]
	if !ok {
		log.Printf("Unknown template %q", page)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	v := view{Flashes: s.popFlashes(w, r), Data: data}
	if id := auth.UserIDFromContext(r.Context()); id != 0 {
		user, err := s.userService.GetUser(r.Context(), id)
		if err != nil && !errors.Is(err, service.ErrUnauthorized) {
			log.Printf("Error loading current user %d: %v", id, err)
		}
		v.User = user
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base.html", v); err != nil {
		log.Printf("Error rendering %s: %v", page, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) staticPage(page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, page, nil)
	}
}

func (s *Server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "error.html", map[string]any{
		"Title":   "Page not found",
		"Message": "The page you are looking for does not exist.",
	})
}

func (s *Server) methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusMethodNotAllowed, "error.html", map[string]any{
		"Title":   "Method not allowed",
		"Message": "This page does not accept " + r.Method + " requests.",
	})
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("Error handling %s %s: %v", r.Method, r.URL.Path, err)
	s.render(w, r, http.StatusInternalServerError, "error.html", map[string]any{
		"Title":   "Something went wrong",
		"Message": "Please try again later.",
	})
}

// newFlashStore returns the signed cookie store holding flash messages.
func newFlashStore(cfg config.SessionConfig) (*sessions.CookieStore, error) {
	key := []byte(cfg.Secret)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
		if key == nil {
			return nil, errors.New("generate flash cookie key")
		}
		log.Println("SESSION_SECRET not set, signing flash cookies with a random key")
	}
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	return store, nil
}

// setFlash queues a message for the next rendered page.
func (s *Server) setFlash(w http.ResponseWriter, r *http.Request, level, message string) {
	// a cookie that fails to decode still yields a fresh session
	sess, _ := s.flashes.Get(r, flashCookie)
	sess.AddFlash(level + "|" + message)
	if err := sess.Save(r, w); err != nil {
		log.Printf("Error saving flash message: %v", err)
	}
}

// popFlashes returns the pending flash messages and clears the cookie.
func (s *Server) popFlashes(w http.ResponseWriter, r *http.Request) []flash {
	if _, err := r.Cookie(flashCookie); err != nil {
		return nil
	}
	sess, err := s.flashes.Get(r, flashCookie)
	raw := sess.Flashes()
	sess.Options.MaxAge = -1
	if saveErr := sess.Save(r, w); saveErr != nil {
		log.Printf("Error clearing flash messages: %v", saveErr)
	}
	if err != nil {
		log.Printf("Discarding unreadable flash cookie: %v", err)
		return nil
	}

	out := make([]flash, 0, len(raw))
	for _, v := range raw {
		str, ok := v.(string)
		if !ok {
			continue
		}
		if level, message, ok := strings.Cut(str, "|"); ok {
			out = append(out, flash{Level: level, Message: message})
		}
	}
	return out
}
