package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/Tomlord1122/taskflow/internal/auth"
	"github.com/Tomlord1122/taskflow/internal/config"
	"github.com/Tomlord1122/taskflow/internal/database"
	"github.com/Tomlord1122/taskflow/internal/service"
)

type Server struct {
	cfg         config.Config
	taskService service.TaskService
	userService service.UserService
	sessions    auth.SessionStore
	db          database.Service
	pages       *pageSet
	flashes     *sessions.CookieStore
}

// New builds the application handler's dependencies. It fails if the
// embedded templates do not parse or no flash cookie key is available.
func New(cfg config.Config, taskService service.TaskService, userService service.UserService,
	sessions auth.SessionStore, dbService database.Service) (*Server, error) {
	pages, err := loadPages()
	if err != nil {
		return nil, err
	}
	flashes, err := newFlashStore(cfg.Session)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:         cfg,
		taskService: taskService,
		userService: userService,
		sessions:    sessions,
		db:          dbService,
		pages:       pages,
		flashes:     flashes,
	}, nil
}

// NewHTTPServer wraps s in an http.Server configured from cfg.HTTP.
func NewHTTPServer(s *Server) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.HTTP.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  s.cfg.HTTP.IdleTimeout,
		ReadTimeout:  s.cfg.HTTP.ReadTimeout,
		WriteTimeout: s.cfg.HTTP.WriteTimeout,
	}
}
