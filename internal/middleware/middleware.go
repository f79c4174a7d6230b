package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"todo-service/internal/auth"
	"todo-service/internal/models"
	"todo-service/internal/store"
)

// contextKey is a custom type to avoid context key collisions.
type contextKey string

const userContextKey contextKey = "user"

// Legacy clients send the codec token under a "Basic " scheme label even
// though the payload is not RFC 7617 Basic auth. The prefix is part of
// the wire contract.
const bearerPrefix = "Basic "

// CORS sets the cross-origin headers on every response and answers all
// OPTIONS requests with an empty 200.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Auth validates the bearer credential and resolves it to a stored user,
// which is placed in the request context for handlers.
func Auth(users store.UserStore, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				unauthorized(w)
				return
			}
			userID, username, err := auth.Decode(strings.TrimPrefix(header, bearerPrefix))
			if err != nil {
				log.Debugf("Token decode failed: %v", err)
				unauthorized(w)
				return
			}
			user, err := users.FindUserByID(userID)
			if err != nil || user.Username != username {
				unauthorized(w)
				return
			}
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom returns the authenticated user stored by Auth.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error": "unauthorized"}`))
}
