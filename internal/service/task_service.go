package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Tomlord1122/taskflow/internal/domain"
	"github.com/Tomlord1122/taskflow/internal/repository"
)

// TaskResponse is the representation of a Task handed to the HTTP layer.
type TaskResponse struct {
	ID          uint
	Title       string
	Description string
	Complete    bool
	UserID      uint
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskListResponse splits a user's tasks by completion state.
type TaskListResponse struct {
	Incomplete []TaskResponse
	Completed  []TaskResponse
}

// TaskService is the only path from the HTTP layer to stored tasks. Every
// operation takes the acting user's id explicitly and only ever touches
// tasks owned by that user.
type TaskService interface {
	// ListTasks returns the user's incomplete and completed tasks, oldest first.
	ListTasks(ctx context.Context, userID uint) (*TaskListResponse, error)

	// ToggleComplete flips the completion flag of one of the user's tasks.
	ToggleComplete(ctx context.Context, userID, taskID uint) error

	// GetTaskDetail returns one of the user's tasks.
	GetTaskDetail(ctx context.Context, userID, taskID uint) (*TaskResponse, error)

	// CreateTask validates req and stores a new task owned by userID.
	CreateTask(ctx context.Context, userID uint, req TaskRequest) (*TaskResponse, error)

	// UpdateTask overwrites title, description and completion of one of the
	// user's tasks. The owner never changes.
	UpdateTask(ctx context.Context, userID, taskID uint, req TaskRequest) (*TaskResponse, error)

	// DeleteTask permanently removes one of the user's tasks.
	DeleteTask(ctx context.Context, userID, taskID uint) error
}

type taskService struct {
	repo repository.TaskRepository
}

// NewTaskService creates a TaskService on top of repo.
func NewTaskService(repo repository.TaskRepository) TaskService {
	return &taskService{repo: repo}
}

func (s *taskService) ListTasks(ctx context.Context, userID uint) (*TaskListResponse, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}

	incomplete, err := s.repo.ListByOwner(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("list incomplete tasks: %w", err)
	}
	completed, err := s.repo.ListByOwner(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("list completed tasks: %w", err)
	}

	return &TaskListResponse{
		Incomplete: toResponses(incomplete),
		Completed:  toResponses(completed),
	}, nil
}

func (s *taskService) ToggleComplete(ctx context.Context, userID, taskID uint) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	if err := s.repo.ToggleComplete(ctx, userID, taskID); err != nil {
		return mapRepoError(err, "toggle task %d", taskID)
	}
	return nil
}

func (s *taskService) GetTaskDetail(ctx context.Context, userID, taskID uint) (*TaskResponse, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	task, err := s.repo.FindByIDForOwner(ctx, userID, taskID)
	if err != nil {
		return nil, mapRepoError(err, "get task %d", taskID)
	}
	resp := toResponse(*task)
	return &resp, nil
}

func (s *taskService) CreateTask(ctx context.Context, userID uint, req TaskRequest) (*TaskResponse, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	req.normalize()
	if err := validateTask(req); err != nil {
		return nil, err
	}

	task := &domain.Task{
		Title:       req.Title,
		Description: req.Description,
		Complete:    req.Complete,
		UserID:      userID,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		log.Printf("Error creating task for user %d: %v", userID, err)
		return nil, fmt.Errorf("create task: %w", err)
	}

	resp := toResponse(*task)
	return &resp, nil
}

func (s *taskService) UpdateTask(ctx context.Context, userID, taskID uint, req TaskRequest) (*TaskResponse, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	req.normalize()
	if err := validateTask(req); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, userID, taskID, req.Title, req.Description, req.Complete); err != nil {
		return nil, mapRepoError(err, "update task %d", taskID)
	}
	return s.GetTaskDetail(ctx, userID, taskID)
}

func (s *taskService) DeleteTask(ctx context.Context, userID, taskID uint) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	if err := s.repo.Delete(ctx, userID, taskID); err != nil {
		return mapRepoError(err, "delete task %d", taskID)
	}
	return nil
}

// mapRepoError turns an owner-scoped miss into ErrNotFoundOrForbidden and
// wraps anything else with the operation name.
func mapRepoError(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNoRows) {
		return ErrNotFoundOrForbidden
	}
	op := fmt.Sprintf(format, args...)
	log.Printf("Error in %s: %v", op, err)
	return fmt.Errorf("%s: %w", op, err)
}

func toResponse(t domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Complete:    t.Complete,
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toResponses(tasks []domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toResponse(t))
	}
	return out
}
