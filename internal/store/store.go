// Package store defines the persistence contracts shared by the JSON-file
// and SQL backends. Every task operation is owner-scoped: a task id that
// exists but belongs to another user behaves exactly like a missing id.
package store

import (
	"errors"

	"todo-service/internal/models"
)

var (
	// ErrNotFound signals a missing record, including records owned by
	// a different user.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate signals a username or email uniqueness violation.
	ErrDuplicate = errors.New("already exists")
)

// UserStore persists account records.
type UserStore interface {
	CreateUser(user *models.User) error
	FindUserByUsername(username string) (*models.User, error)
	FindUserByID(id string) (*models.User, error)
}

// TaskStore persists task records, scoped by owner.
type TaskStore interface {
	// ListTasks returns the user's tasks ordered newest-first by created_at.
	ListTasks(userID string) ([]models.Task, error)
	CreateTask(task *models.Task) error
	GetTask(userID, taskID string) (*models.Task, error)
	// UpdateTask persists the full record identified by task.UserID and
	// task.ID; ErrNotFound if no such task is owned by that user.
	UpdateTask(task *models.Task) error
	DeleteTask(userID, taskID string) error
}
