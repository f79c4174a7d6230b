package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"todo-service/internal/models"
	"todo-service/internal/store"
	"todo-service/internal/store/jsonstore"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	js, err := jsonstore.New(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("jsonstore.New failed: %v", err)
	}
	return New(js, js, nil, logger)
}

func register(t *testing.T, svc *Service, username string) *models.User {
	t.Helper()
	user, err := svc.Register(username, username+"@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", username, err)
	}
	return user
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)

	cases := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"empty username", "", "a@example.com", "pw"},
		{"empty email", "alice", "", "pw"},
		{"empty password", "alice", "a@example.com", ""},
		{"whitespace username", "   ", "a@example.com", "pw"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(tc.username, tc.email, tc.password)
			if !errors.Is(err, ErrMissingFields) {
				t.Errorf("Expected ErrMissingFields, got %v", err)
			}
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "alice")

	_, err := svc.Register("alice", "other@example.com", "pw")
	if !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate on second attempt, got %v", err)
	}

	// A fresh username/email pair still works.
	if _, err := svc.Register("bob", "bob@example.com", "pw"); err != nil {
		t.Errorf("Expected fresh registration to succeed, got %v", err)
	}
}

func TestRegisterNeverStoresPlaintext(t *testing.T) {
	svc := newTestService(t)
	user := register(t, svc, "alice")

	if user.PasswordHash == "s3cret" {
		t.Error("Password stored in plaintext")
	}
	if !strings.HasPrefix(user.PasswordHash, "$2") {
		t.Errorf("Expected a bcrypt hash, got %q", user.PasswordHash)
	}
}

// Unknown usernames and wrong passwords must be indistinguishable.
func TestLoginUniformFailure(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "alice")

	_, _, errWrongPassword := svc.Login("alice", "wrong")
	_, _, errNoUser := svc.Login("nobody", "s3cret")

	if !errors.Is(errWrongPassword, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for wrong password, got %v", errWrongPassword)
	}
	if !errors.Is(errNoUser, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown user, got %v", errNoUser)
	}
	if errWrongPassword.Error() != errNoUser.Error() {
		t.Error("Login failures leak which part was wrong")
	}
}

func TestLoginSuccess(t *testing.T) {
	svc := newTestService(t)
	registered := register(t, svc, "alice")

	user, token, err := svc.Login("alice", "s3cret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("Expected user id %s, got %s", registered.ID, user.ID)
	}
	if token == "" {
		t.Error("Expected a non-empty token")
	}
}

func TestCreateTaskDefaults(t *testing.T) {
	svc := newTestService(t)
	user := register(t, svc, "alice")

	task, err := svc.CreateTask(user.ID, models.TaskDraft{Text: "Buy milk"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.Priority != models.PriorityMedium {
		t.Errorf("Expected default priority medium, got %s", task.Priority)
	}
	if task.Category != models.CategoryPersonal {
		t.Errorf("Expected default category personal, got %s", task.Category)
	}
	if task.Deadline != nil {
		t.Errorf("Expected nil deadline, got %q", *task.Deadline)
	}
	if task.Completed {
		t.Error("Expected new task to be incomplete")
	}
	if !strings.HasPrefix(task.ID, "task_") {
		t.Errorf("Expected task_ id prefix, got %s", task.ID)
	}

	// Round-trips unchanged through list.
	tasks, err := svc.ListTasks(user.ID)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Text != "Buy milk" {
		t.Fatalf("Unexpected list result: %+v", tasks)
	}
	got := tasks[0]
	if got.Priority != task.Priority || got.Category != task.Category ||
		got.Deadline != nil || got.Completed != task.Completed {
		t.Errorf("Task changed through list: %+v", got)
	}
}

func TestCreateTaskNormalization(t *testing.T) {
	svc := newTestService(t)
	user := register(t, svc, "alice")

	badDeadline := "not-a-date"
	goodDeadline := "2026-09-15"

	cases := []struct {
		name         string
		draft        models.TaskDraft
		wantPriority string
		wantCategory string
		wantDeadline *string
	}{
		{
			name:         "invalid enums fall back silently",
			draft:        models.TaskDraft{Text: "a", Priority: "urgent", Category: "hobbies"},
			wantPriority: models.PriorityMedium,
			wantCategory: models.CategoryPersonal,
		},
		{
			name:         "valid values kept",
			draft:        models.TaskDraft{Text: "b", Priority: "high", Category: "work", Deadline: &goodDeadline},
			wantPriority: models.PriorityHigh,
			wantCategory: models.CategoryWork,
			wantDeadline: &goodDeadline,
		},
		{
			name:         "malformed deadline dropped to null",
			draft:        models.TaskDraft{Text: "c", Deadline: &badDeadline},
			wantPriority: models.PriorityMedium,
			wantCategory: models.CategoryPersonal,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task, err := svc.CreateTask(user.ID, tc.draft)
			if err != nil {
				t.Fatalf("CreateTask failed: %v", err)
			}
			if task.Priority != tc.wantPriority {
				t.Errorf("Priority = %s, want %s", task.Priority, tc.wantPriority)
			}
			if task.Category != tc.wantCategory {
				t.Errorf("Category = %s, want %s", task.Category, tc.wantCategory)
			}
			if tc.wantDeadline == nil && task.Deadline != nil {
				t.Errorf("Deadline = %q, want null", *task.Deadline)
			}
			if tc.wantDeadline != nil && (task.Deadline == nil || *task.Deadline != *tc.wantDeadline) {
				t.Errorf("Deadline = %v, want %q", task.Deadline, *tc.wantDeadline)
			}
		})
	}
}

func TestCreateTaskEmptyText(t *testing.T) {
	svc := newTestService(t)
	user := register(t, svc, "alice")

	for _, text := range []string{"", "   ", "\t\n"} {
		if _, err := svc.CreateTask(user.ID, models.TaskDraft{Text: text}); !errors.Is(err, ErrEmptyText) {
			t.Errorf("Expected ErrEmptyText for %q, got %v", text, err)
		}
	}
}

func TestUpdateTaskPartialMerge(t *testing.T) {
	svc := newTestService(t)
	user := register(t, svc, "alice")
	deadline := "2026-09-15"
	task, err := svc.CreateTask(user.ID, models.TaskDraft{
		Text: "original", Priority: "high", Category: "work", Deadline: &deadline,
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	completed := models.FlexBool(true)
	updated, err := svc.UpdateTask(user.ID, task.ID, models.TaskPatch{Completed: &completed})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if !updated.Completed {
		t.Error("Expected completed to flip to true")
	}
	// Unspecified fields retain prior values.
	if updated.Text != "original" || updated.Priority != models.PriorityHigh ||
		updated.Category != models.CategoryWork {
		t.Errorf("Unpatched fields changed: %+v", updated)
	}
	if updated.Deadline == nil || *updated.Deadline != deadline {
		t.Errorf("Deadline changed: %v", updated.Deadline)
	}
	if !updated.UpdatedAt.After(task.UpdatedAt) && !updated.UpdatedAt.Equal(task.UpdatedAt) {
		t.Error("Expected updated_at to be re-stamped")
	}
}

func TestUpdateTaskMalformedDeadlineCleared(t *testing.T) {
	svc := newTestService(t)
	user := register(t, svc, "alice")
	deadline := "2026-09-15"
	task, err := svc.CreateTask(user.ID, models.TaskDraft{Text: "a", Deadline: &deadline})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	bad := "tomorrow-ish"
	updated, err := svc.UpdateTask(user.ID, task.ID, models.TaskPatch{Deadline: &bad})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if updated.Deadline != nil {
		t.Errorf("Expected malformed deadline to clear to null, got %q", *updated.Deadline)
	}
}

func TestCrossUserIsolation(t *testing.T) {
	svc := newTestService(t)
	alice := register(t, svc, "alice")
	bob := register(t, svc, "bob")

	task, err := svc.CreateTask(bob.ID, models.TaskDraft{Text: "bob's secret"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	// Alice's list never includes Bob's task.
	aliceTasks, err := svc.ListTasks(alice.ID)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(aliceTasks) != 0 {
		t.Errorf("Expected empty list for alice, got %d tasks", len(aliceTasks))
	}

	// Update and delete on Bob's id look like nonexistence.
	text := "stolen"
	if _, err := svc.UpdateTask(alice.ID, task.ID, models.TaskPatch{Text: &text}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for cross-user update, got %v", err)
	}
	if err := svc.DeleteTask(alice.ID, task.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for cross-user delete, got %v", err)
	}

	// Bob's task is untouched.
	bobTasks, err := svc.ListTasks(bob.ID)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(bobTasks) != 1 || bobTasks[0].Text != "bob's secret" {
		t.Errorf("Bob's task was affected: %+v", bobTasks)
	}
}

func TestDeleteTwice(t *testing.T) {
	svc := newTestService(t)
	user := register(t, svc, "alice")
	task, err := svc.CreateTask(user.ID, models.TaskDraft{Text: "once"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if err := svc.DeleteTask(user.ID, task.ID); err != nil {
		t.Fatalf("First delete failed: %v", err)
	}
	if err := svc.DeleteTask(user.ID, task.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}
