// Package sqlstore implements the stores on database/sql. The schema and
// queries are portable between the sqlite3 and postgres drivers: text
// primary keys, $N placeholders, and owner-scoped WHERE clauses.
package sqlstore

import (
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"todo-service/internal/models"
	"todo-service/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id),
	text TEXT NOT NULL,
	priority TEXT NOT NULL,
	category TEXT NOT NULL,
	deadline TEXT,
	completed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);
`

// Store provides database-backed persistence.
type Store struct {
	db  *sql.DB
	log *logrus.Logger
}

// New opens the database, verifies connectivity and ensures the schema.
func New(driver, dsn string, log *logrus.Logger) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateUser inserts a user, enforcing username and email uniqueness.
func (s *Store) CreateUser(user *models.User) error {
	var existing int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM users WHERE username = $1 OR email = $2`,
		user.Username, user.Email,
	).Scan(&existing)
	if err != nil {
		return fmt.Errorf("check existing user: %w", err)
	}
	if existing > 0 {
		return store.ErrDuplicate
	}

	_, err = s.db.Exec(
		`INSERT INTO users (id, username, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindUserByUsername retrieves a user by username.
func (s *Store) FindUserByUsername(username string) (*models.User, error) {
	return s.findUser(`SELECT id, username, email, password_hash, created_at
		FROM users WHERE username = $1`, username)
}

// FindUserByID retrieves a user by id.
func (s *Store) FindUserByID(id string) (*models.User, error) {
	return s.findUser(`SELECT id, username, email, password_hash, created_at
		FROM users WHERE id = $1`, id)
}

func (s *Store) findUser(query, arg string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(query, arg).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// ListTasks returns the user's tasks, newest first.
func (s *Store) ListTasks(userID string) ([]models.Task, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, text, priority, category, deadline, completed, created_at, updated_at
		 FROM tasks WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// CreateTask inserts a task for its owner.
func (s *Store) CreateTask(task *models.Task) error {
	_, err := s.db.Exec(
		`INSERT INTO tasks (id, user_id, text, priority, category, deadline, completed, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		task.ID, task.UserID, task.Text, task.Priority, task.Category,
		nullable(task.Deadline), task.Completed, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// GetTask retrieves a task scoped to its owner.
func (s *Store) GetTask(userID, taskID string) (*models.Task, error) {
	row := s.db.QueryRow(
		`SELECT id, user_id, text, priority, category, deadline, completed, created_at, updated_at
		 FROM tasks WHERE id = $1 AND user_id = $2`,
		taskID, userID,
	)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// UpdateTask persists the full record, owner-scoped.
func (s *Store) UpdateTask(task *models.Task) error {
	res, err := s.db.Exec(
		`UPDATE tasks SET text = $1, priority = $2, category = $3, deadline = $4,
		 completed = $5, updated_at = $6
		 WHERE id = $7 AND user_id = $8`,
		task.Text, task.Priority, task.Category, nullable(task.Deadline),
		task.Completed, task.UpdatedAt, task.ID, task.UserID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteTask removes a task, owner-scoped.
func (s *Store) DeleteTask(userID, taskID string) error {
	res, err := s.db.Exec(
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`, taskID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	t := &models.Task{}
	var deadline sql.NullString
	err := row.Scan(&t.ID, &t.UserID, &t.Text, &t.Priority, &t.Category,
		&deadline, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if deadline.Valid {
		t.Deadline = &deadline.String
	}
	return t, nil
}

func nullable(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
