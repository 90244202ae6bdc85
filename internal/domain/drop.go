package domain

import "time"

// Drop is an upcoming limited release announced on the drops screen.
type Drop struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ReleaseAt   time.Time `json:"release_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Released reports whether the drop's release time has passed.
func (d *Drop) Released(now time.Time) bool {
	return !now.Before(d.ReleaseAt)
}

// DropSubscription registers a user for alerts about one drop.
type DropSubscription struct {
	ID        string    `json:"id"`
	DropID    string    `json:"drop_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
