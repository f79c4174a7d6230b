package models

// RegisterRequest carries the registration payload.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest carries the login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TaskDraft is the payload for creating a task. Priority, category and
// deadline are optional; invalid values fall back to defaults rather
// than erroring.
type TaskDraft struct {
	Text     string  `json:"text"`
	Priority string  `json:"priority"`
	Category string  `json:"category"`
	Deadline *string `json:"deadline"`
}

// TaskPatch is a partial update: nil fields keep their prior values.
type TaskPatch struct {
	Text      *string   `json:"text"`
	Priority  *string   `json:"priority"`
	Category  *string   `json:"category"`
	Deadline  *string   `json:"deadline"`
	Completed *FlexBool `json:"completed"`
}

// UserInfo is the public subset of a user returned by login.
type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}
