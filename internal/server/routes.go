package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Tomlord1122/taskflow/internal/auth"
)

const loginPath = "/login/"

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.HTTP.Origins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(auth.LoadSession(s.sessions))

	r.NotFound(s.notFoundHandler)
	r.MethodNotAllowed(s.methodNotAllowedHandler)

	r.Get("/", s.staticPage("home.html"))
	r.Get("/about_us/", s.staticPage("about_us.html"))
	r.Get("/FAQ/", s.staticPage("frequently_asked.html"))
	r.Get("/contact/", s.staticPage("contact.html"))
	r.Get("/health", s.healthHandler)

	r.Get(loginPath, s.loginFormHandler)
	r.Post(loginPath, s.loginHandler)
	r.Get("/sign_up/", s.signupFormHandler)
	r.Post("/sign_up/", s.signupHandler)
	r.Get("/logout/", s.logoutConfirmHandler)
	r.Post("/logout/", s.logoutHandler)

	// every task route sits behind the login guard
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(loginPath))

		r.Get("/tasks/", s.taskListHandler)
		r.Post("/tasks/", s.toggleTaskHandler)
		r.Get("/task/{id}/", s.taskDetailHandler)
		r.Get("/task-create/", s.createTaskFormHandler)
		r.Post("/task-create/", s.createTaskHandler)
		r.Get("/task-update/{id}/", s.updateTaskFormHandler)
		r.Post("/task-update/{id}/", s.updateTaskHandler)
		r.Get("/task-delete/{id}/", s.deleteTaskConfirmHandler)
		r.Post("/task-delete/{id}/", s.deleteTaskHandler)
	})

	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := s.db.Health()
	code := http.StatusOK
	if stats["status"] == "down" {
		code = http.StatusServiceUnavailable
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()
	if err := s.sessions.Ping(ctx); err != nil {
		log.Printf("session store down: %v", err)
		stats["sessions"] = "down"
		code = http.StatusServiceUnavailable
	} else {
		stats["sessions"] = "up"
	}

	respondWithJSON(w, code, stats)
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling JSON response: %v", err)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error preparing response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
