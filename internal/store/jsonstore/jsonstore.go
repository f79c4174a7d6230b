// Package jsonstore implements the stores on top of flat JSON files:
// users.json for accounts and one tasks/<userID>.json file per user.
// The per-user task files keep concurrent writes by different users
// from touching the same file.
package jsonstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"todo-service/internal/models"
	"todo-service/internal/store"
)

const (
	usersFile = "users.json"
	tasksDir  = "tasks"
)

// Store is a file-backed implementation of store.UserStore and
// store.TaskStore. All mutations happen under a single mutex and are
// written atomically via temp-file rename.
type Store struct {
	dir string
	mu  sync.Mutex
	log *logrus.Logger
}

// userRecord is the persisted user shape. models.User hides the password
// hash from JSON, so the file format needs its own struct.
type userRecord struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// New prepares the data directory and returns a ready store.
func New(dir string, log *logrus.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, tasksDir), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir, log: log}, nil
}

// CreateUser appends a user record, enforcing username and email uniqueness.
func (s *Store) CreateUser(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadUsers()
	if err != nil {
		return err
	}
	for _, rec := range records {
		if rec.Username == user.Username || rec.Email == user.Email {
			return store.ErrDuplicate
		}
	}
	records = append(records, userRecord{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	})
	return s.saveUsers(records)
}

// FindUserByUsername looks up a user by exact username.
func (s *Store) FindUserByUsername(username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadUsers()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.Username == username {
			return rec.toUser(), nil
		}
	}
	return nil, store.ErrNotFound
}

// FindUserByID looks up a user by id.
func (s *Store) FindUserByID(id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadUsers()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec.toUser(), nil
		}
	}
	return nil, store.ErrNotFound
}

// ListTasks returns the user's tasks ordered newest-first by created_at.
func (s *Store) ListTasks(userID string) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.loadTasks(userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// CreateTask appends a task to its owner's file.
func (s *Store) CreateTask(task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.loadTasks(task.UserID)
	if err != nil {
		return err
	}
	tasks = append(tasks, *task)
	return s.saveTasks(task.UserID, tasks)
}

// GetTask returns the task with the given id owned by the given user.
func (s *Store) GetTask(userID, taskID string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.loadTasks(userID)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == taskID {
			t := tasks[i]
			return &t, nil
		}
	}
	return nil, store.ErrNotFound
}

// UpdateTask replaces the stored record matching task.ID in its owner's file.
func (s *Store) UpdateTask(task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.loadTasks(task.UserID)
	if err != nil {
		return err
	}
	for i := range tasks {
		if tasks[i].ID == task.ID {
			tasks[i] = *task
			return s.saveTasks(task.UserID, tasks)
		}
	}
	return store.ErrNotFound
}

// DeleteTask removes the task from its owner's file.
func (s *Store) DeleteTask(userID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.loadTasks(userID)
	if err != nil {
		return err
	}
	kept := tasks[:0]
	for _, t := range tasks {
		if t.ID != taskID {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(tasks) {
		return store.ErrNotFound
	}
	return s.saveTasks(userID, kept)
}

// Snapshot copies the current data files into dst, creating it as needed.
// Used by the backup scheduler.
func (s *Store) Snapshot(dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Join(dst, tasksDir), 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	if err := copyIfExists(filepath.Join(s.dir, usersFile), filepath.Join(dst, usersFile)); err != nil {
		return err
	}
	entries, err := os.ReadDir(filepath.Join(s.dir, tasksDir))
	if err != nil {
		return fmt.Errorf("read tasks dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		src := filepath.Join(s.dir, tasksDir, entry.Name())
		if err := copyIfExists(src, filepath.Join(dst, tasksDir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (r userRecord) toUser() *models.User {
	return &models.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}

func (s *Store) loadUsers() ([]userRecord, error) {
	var records []userRecord
	if err := readJSON(filepath.Join(s.dir, usersFile), &records); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return records, nil
}

func (s *Store) saveUsers(records []userRecord) error {
	if err := writeJSON(filepath.Join(s.dir, usersFile), records); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

// taskRecord adds the owner id to the on-disk shape; models.Task keeps it
// out of API responses.
type taskRecord struct {
	models.Task
	UserID string `json:"user_id"`
}

func (s *Store) taskFile(userID string) string {
	return filepath.Join(s.dir, tasksDir, userID+".json")
}

func (s *Store) loadTasks(userID string) ([]models.Task, error) {
	var records []taskRecord
	if err := readJSON(s.taskFile(userID), &records); err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	tasks := make([]models.Task, 0, len(records))
	for _, rec := range records {
		t := rec.Task
		t.UserID = rec.UserID
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (s *Store) saveTasks(userID string, tasks []models.Task) error {
	records := make([]taskRecord, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, taskRecord{Task: t, UserID: t.UserID})
	}
	if err := writeJSON(s.taskFile(userID), records); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// writeJSON writes to a temp file in the target directory and renames it
// over the destination, so readers never observe a partial file.
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func copyIfExists(src, dst string) error {
	data, err := os.ReadFile(src)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}
