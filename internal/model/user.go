package model

import "time"

// User is the minimal account record the engine needs: an id to own
// habits and notifications, and an address for the email channel.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
