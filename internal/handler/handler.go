package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"todo-service/internal/export"
	"todo-service/internal/middleware"
	"todo-service/internal/models"
	"todo-service/internal/service"
	"todo-service/internal/store"
)

// Handler exposes the HTTP API on top of the service layer.
type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register handles user registration.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	decodeBody(r, &req)

	_, err := h.svc.Register(req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrMissingFields):
		respondError(w, http.StatusBadRequest, "username, email and password are required")
	case errors.Is(err, store.ErrDuplicate):
		respondError(w, http.StatusBadRequest, "username or email already exists")
	case err != nil:
		h.serverError(w, "register", err)
	default:
		respondJSON(w, http.StatusCreated, map[string]string{"message": "user registered"})
	}
}

// Login handles user authentication and returns a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	decodeBody(r, &req)

	user, token, err := h.svc.Login(req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		respondError(w, http.StatusBadRequest, "invalid credentials")
		return
	}
	if err != nil {
		h.serverError(w, "login", err)
		return
	}
	respondJSON(w, http.StatusOK, models.LoginResponse{
		Token: token,
		User:  models.UserInfo{ID: user.ID, Username: user.Username},
	})
}

// ListTasks returns the caller's tasks, newest first.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	tasks, err := h.svc.ListTasks(user.ID)
	if err != nil {
		h.serverError(w, "list tasks", err)
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

// CreateTask stores a new task for the caller.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var draft models.TaskDraft
	decodeBody(r, &draft)

	task, err := h.svc.CreateTask(user.ID, draft)
	if errors.Is(err, service.ErrEmptyText) {
		respondError(w, http.StatusBadRequest, "task text is required")
		return
	}
	if err != nil {
		h.serverError(w, "create task", err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":      task.ID,
		"message": "task created",
		"task":    task,
	})
}

// UpdateTask applies a partial update to the caller's task.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var patch models.TaskPatch
	decodeBody(r, &patch)

	_, err := h.svc.UpdateTask(user.ID, mux.Vars(r)["id"], patch)
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "task not found")
	case errors.Is(err, service.ErrEmptyText):
		respondError(w, http.StatusBadRequest, "task text is required")
	case err != nil:
		h.serverError(w, "update task", err)
	default:
		respondJSON(w, http.StatusOK, map[string]string{"message": "task updated"})
	}
}

// DeleteTask removes the caller's task.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	err := h.svc.DeleteTask(user.ID, mux.Vars(r)["id"])
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		h.serverError(w, "delete task", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "task deleted"})
}

// ExportTasks renders the caller's tasks as an XML document.
func (h *Handler) ExportTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	tasks, err := h.svc.ListTasks(user.ID)
	if err != nil {
		h.serverError(w, "export tasks", err)
		return
	}
	body, err := export.TasksXML(user, tasks)
	if err != nil {
		h.serverError(w, "export tasks", err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// NotFound answers unknown /api/* routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "not found")
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.log.Errorf("%s failed: %v", op, err)
	respondError(w, http.StatusInternalServerError, "internal server error")
}

// decodeBody parses the request body into v. A body that is missing or
// fails to parse is treated as an empty object, never rejected.
func decodeBody(r *http.Request, v interface{}) {
	if r.Body == nil {
		return
	}
	defer r.Body.Close()
	_ = json.NewDecoder(r.Body).Decode(v)
}

func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]string{"error": message})
}
