package domain

import "time"

// Session tracks per-user session state: its existence and the most
// recently asked question. It is a single slot, not a history;
// asking again overwrites the previous question. Sessions live only
// in memory and are destroyed when the user's cache is cleared.
type Session struct {
	// UserID is the owning user.
	UserID UserID

	// LastQuestion is the most recently asked question.
	LastQuestion string

	// CreatedAt is when the session was first created.
	CreatedAt time.Time

	// UpdatedAt is when the last question was recorded.
	UpdatedAt time.Time
}
