package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Tomlord1122/taskflow/internal/domain"
)

// ErrNoRows is returned when an owner-scoped lookup or write matched nothing:
// the task does not exist or belongs to someone else.
var ErrNoRows = errors.New("no matching task")

// TaskRepository persists tasks. Every read and write past Create is scoped
// to (id, ownerID) so one user's statements never touch another user's rows.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	FindByIDForOwner(ctx context.Context, ownerID, id uint) (*domain.Task, error)
	ListByOwner(ctx context.Context, ownerID uint, complete bool) ([]domain.Task, error)
	Update(ctx context.Context, ownerID, id uint, title, description string, complete bool) error
	ToggleComplete(ctx context.Context, ownerID, id uint) error
	Delete(ctx context.Context, ownerID, id uint) error
}

type gormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GORM task repository
func NewGormTaskRepository(db *gorm.DB) TaskRepository {
	return &gormTaskRepository{db: db}
}

func (r *gormTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

func (r *gormTaskRepository) FindByIDForOwner(ctx context.Context, ownerID, id uint) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoRows
		}
		return nil, err
	}
	return &task, nil
}

func (r *gormTaskRepository) ListByOwner(ctx context.Context, ownerID uint, complete bool) ([]domain.Task, error) {
	tasks := []domain.Task{}
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND complete = ?", ownerID, complete).
		Order("id").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update overwrites the editable fields. A map is used so that false and
// empty values are written too.
func (r *gormTaskRepository) Update(ctx context.Context, ownerID, id uint, title, description string, complete bool) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(map[string]any{
			"title":       title,
			"description": description,
			"complete":    complete,
		})
	return rowsAffected(result)
}

// ToggleComplete flips the flag in a single statement.
func (r *gormTaskRepository) ToggleComplete(ctx context.Context, ownerID, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Update("complete", gorm.Expr("NOT complete"))
	return rowsAffected(result)
}

// Delete removes the row permanently.
func (r *gormTaskRepository) Delete(ctx context.Context, ownerID, id uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&domain.Task{})
	return rowsAffected(result)
}

func rowsAffected(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoRows
	}
	return nil
}
