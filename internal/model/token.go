package model

import "time"

// Token is the opaque bearer credential bound to exactly one user
type Token struct {
	Key       string    `json:"key"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
