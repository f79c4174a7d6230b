// Package service holds the business rules: registration and login on top
// of the user store, and task normalization on top of the task store.
package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"todo-service/internal/auth"
	"todo-service/internal/models"
	"todo-service/internal/store"
)

var (
	// ErrMissingFields signals a registration payload with an empty
	// username, email or password.
	ErrMissingFields = errors.New("missing required fields")

	// ErrInvalidCredentials is returned for both unknown usernames and
	// wrong passwords, so callers cannot tell which failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmptyText signals a task with no text after trimming.
	ErrEmptyText = errors.New("task text is required")
)

// Mailer sends account notifications. May be nil when SMTP is not configured.
type Mailer interface {
	SendWelcome(to, username string) error
}

// Service handles business logic.
type Service struct {
	users  store.UserStore
	tasks  store.TaskStore
	mailer Mailer
	log    *logrus.Logger
}

// New initializes a new service. mailer may be nil.
func New(users store.UserStore, tasks store.TaskStore, mailer Mailer, log *logrus.Logger) *Service {
	return &Service{users: users, tasks: tasks, mailer: mailer, log: log}
}

// Register creates a new user with a hashed password. The plaintext
// password is never stored.
func (s *Service) Register(username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(user); err != nil {
		return nil, err
	}
	s.log.Infof("User registered: %s", user.Username)

	if s.mailer != nil {
		// Best effort; the sender logs its own failures.
		go s.mailer.SendWelcome(user.Email, user.Username)
	}
	return user, nil
}

// Login authenticates a user and returns the issued bearer token.
func (s *Service) Login(username, password string) (*models.User, string, error) {
	user, err := s.users.FindUserByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	s.log.Infof("User logged in: %s", user.Username)
	return user, auth.Issue(user), nil
}

// ListTasks returns the user's tasks, newest first.
func (s *Service) ListTasks(userID string) ([]models.Task, error) {
	return s.tasks.ListTasks(userID)
}

// CreateTask normalizes the draft and stores a new task. Invalid priority
// and category values fall back to their defaults; a malformed deadline is
// dropped to null. Only empty text is an error.
func (s *Service) CreateTask(userID string, draft models.TaskDraft) (*models.Task, error) {
	text := strings.TrimSpace(draft.Text)
	if text == "" {
		return nil, ErrEmptyText
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:        "task_" + uuid.NewString(),
		UserID:    userID,
		Text:      text,
		Priority:  normalizePriority(draft.Priority),
		Category:  normalizeCategory(draft.Category),
		Deadline:  normalizeDeadline(draft.Deadline),
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tasks.CreateTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask merges the patch over the stored task. Fields left nil in the
// patch keep their prior values. Returns store.ErrNotFound when the id does
// not exist for this user, including ids owned by someone else.
func (s *Service) UpdateTask(userID, taskID string, patch models.TaskPatch) (*models.Task, error) {
	task, err := s.tasks.GetTask(userID, taskID)
	if err != nil {
		return nil, err
	}

	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		if text == "" {
			return nil, ErrEmptyText
		}
		task.Text = text
	}
	if patch.Priority != nil {
		task.Priority = normalizePriority(*patch.Priority)
	}
	if patch.Category != nil {
		task.Category = normalizeCategory(*patch.Category)
	}
	if patch.Deadline != nil {
		task.Deadline = normalizeDeadline(patch.Deadline)
	}
	if patch.Completed != nil {
		task.Completed = bool(*patch.Completed)
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.tasks.UpdateTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes the user's task; store.ErrNotFound if absent.
func (s *Service) DeleteTask(userID, taskID string) error {
	return s.tasks.DeleteTask(userID, taskID)
}

func normalizePriority(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case models.PriorityLow:
		return models.PriorityLow
	case models.PriorityHigh:
		return models.PriorityHigh
	default:
		return models.PriorityMedium
	}
}

func normalizeCategory(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case models.CategoryWork:
		return models.CategoryWork
	case models.CategoryShopping:
		return models.CategoryShopping
	case models.CategoryHealth:
		return models.CategoryHealth
	default:
		return models.CategoryPersonal
	}
}

// normalizeDeadline accepts only YYYY-MM-DD dates; anything else is
// silently dropped to null rather than rejected.
func normalizeDeadline(raw *string) *string {
	if raw == nil {
		return nil
	}
	v := strings.TrimSpace(*raw)
	if v == "" {
		return nil
	}
	if _, err := time.Parse(models.DeadlineLayout, v); err != nil {
		return nil
	}
	return &v
}
