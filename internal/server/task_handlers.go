package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Tomlord1122/taskflow/internal/auth"
	"github.com/Tomlord1122/taskflow/internal/service"
)

const tasksPath = "/tasks/"

func (s *Server) taskListHandler(w http.ResponseWriter, r *http.Request) {
	list, err := s.taskService.ListTasks(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		s.taskError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "task_list.html", map[string]any{
		"Incomplete": list.Incomplete,
		"Completed":  list.Completed,
	})
}

// toggleTaskHandler flips the task named by the task_id form field. A
// missing task_id is a no-op.
func (s *Server) toggleTaskHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	raw := r.PostForm.Get("task_id")
	if raw == "" {
		http.Redirect(w, r, tasksPath, http.StatusSeeOther)
		return
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		s.notFoundHandler(w, r)
		return
	}
	if err := s.taskService.ToggleComplete(r.Context(), auth.UserIDFromContext(r.Context()), uint(id)); err != nil {
		s.taskError(w, r, err)
		return
	}
	http.Redirect(w, r, tasksPath, http.StatusSeeOther)
}

func (s *Server) taskDetailHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.taskID(w, r)
	if !ok {
		return
	}
	task, err := s.taskService.GetTaskDetail(r.Context(), auth.UserIDFromContext(r.Context()), id)
	if err != nil {
		s.taskError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "task.html", map[string]any{"Task": task})
}

func (s *Server) createTaskFormHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "task_form.html", map[string]any{
		"Action": "/task-create/",
		"Form":   service.TaskRequest{},
	})
}

func (s *Server) createTaskHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := parseTaskForm(w, r)
	if !ok {
		return
	}
	_, err := s.taskService.CreateTask(r.Context(), auth.UserIDFromContext(r.Context()), req)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			s.render(w, r, http.StatusOK, "task_form.html", map[string]any{
				"Action": "/task-create/",
				"Form":   req,
				"Errors": verr,
			})
			return
		}
		s.taskError(w, r, err)
		return
	}
	http.Redirect(w, r, tasksPath, http.StatusSeeOther)
}

func (s *Server) updateTaskFormHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.taskID(w, r)
	if !ok {
		return
	}
	task, err := s.taskService.GetTaskDetail(r.Context(), auth.UserIDFromContext(r.Context()), id)
	if err != nil {
		s.taskError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "task_form.html", map[string]any{
		"Action": "/task-update/" + strconv.FormatUint(uint64(id), 10) + "/",
		"Form": service.TaskRequest{
			Title:       task.Title,
			Description: task.Description,
			Complete:    task.Complete,
		},
	})
}

func (s *Server) updateTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.taskID(w, r)
	if !ok {
		return
	}
	req, ok := parseTaskForm(w, r)
	if !ok {
		return
	}
	_, err := s.taskService.UpdateTask(r.Context(), auth.UserIDFromContext(r.Context()), id, req)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			s.render(w, r, http.StatusOK, "task_form.html", map[string]any{
				"Action": "/task-update/" + strconv.FormatUint(uint64(id), 10) + "/",
				"Form":   req,
				"Errors": verr,
			})
			return
		}
		s.taskError(w, r, err)
		return
	}
	http.Redirect(w, r, tasksPath, http.StatusSeeOther)
}

func (s *Server) deleteTaskConfirmHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.taskID(w, r)
	if !ok {
		return
	}
	task, err := s.taskService.GetTaskDetail(r.Context(), auth.UserIDFromContext(r.Context()), id)
	if err != nil {
		s.taskError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "task_confirm_delete.html", map[string]any{"Task": task})
}

func (s *Server) deleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.taskID(w, r)
	if !ok {
		return
	}
	if err := s.taskService.DeleteTask(r.Context(), auth.UserIDFromContext(r.Context()), id); err != nil {
		s.taskError(w, r, err)
		return
	}
	http.Redirect(w, r, tasksPath, http.StatusSeeOther)
}

// taskID parses the {id} URL parameter; anything but a positive integer is
// answered with 404.
func (s *Server) taskID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		s.notFoundHandler(w, r)
		return 0, false
	}
	return uint(id), true
}

func parseTaskForm(w http.ResponseWriter, r *http.Request) (service.TaskRequest, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return service.TaskRequest{}, false
	}
	complete := r.PostForm.Get("complete")
	return service.TaskRequest{
		Title:       r.PostForm.Get("title"),
		Description: r.PostForm.Get("description"),
		Complete:    complete == "on" || complete == "true" || complete == "1",
	}, true
}

func (s *Server) taskError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		http.Redirect(w, r, loginPath, http.StatusFound)
	case errors.Is(err, service.ErrNotFoundOrForbidden):
		s.notFoundHandler(w, r)
	default:
		s.serverError(w, r, err)
	}
}
