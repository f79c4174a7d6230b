package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task categories.
const (
	CategoryPersonal = "personal"
	CategoryWork     = "work"
	CategoryShopping = "shopping"
	CategoryHealth   = "health"
)

// DeadlineLayout is the accepted ISO date format for task deadlines.
const DeadlineLayout = "2006-01-02"

// Task represents a single to-do item owned by exactly one user.
type Task struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"` // owner, never exposed in responses
	Text      string    `json:"text"`
	Priority  string    `json:"priority"`
	Category  string    `json:"category"`
	Deadline  *string   `json:"deadline"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FlexBool unmarshals a boolean from any JSON scalar: booleans are taken
// as-is, strings and numbers are coerced by truthiness ("true"/"1" and
// non-zero numbers are true). Legacy clients send completed flags in all
// three shapes.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch s {
	case "null", "false":
		*b = false
		return nil
	case "true":
		*b = true
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		if v, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(str))); err == nil {
			*b = FlexBool(v)
		} else {
			// Any other non-empty string counts as true.
			*b = FlexBool(strings.TrimSpace(str) != "")
		}
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*b = FlexBool(n != 0)
	return nil
}
