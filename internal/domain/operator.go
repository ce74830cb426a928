package domain

import "time"

// Operator is a user allowed to drive incident and maintenance lifecycles.
// Role and permission checks beyond authentication belong to the caller.
type Operator struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
