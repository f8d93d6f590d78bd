// Package model defines the plain data records persisted by the forum.
//
// Models carry no behaviour and no ORM machinery. Relationships (a
// question's author, an answer's question) are followed by explicit
// repository lookups on the foreign key, never by lazy traversal.
package model

import "time"

// User is a registered forum account.
//
// Local accounts authenticate with a bcrypt password hash. Accounts
// created through GitHub login have GitHubID set and an empty
// PasswordHash; GitHubID 0 means "local account".
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	IsAdmin        bool      `json:"isAdmin"`
	Reputation     int       `json:"reputation"`
	Bio            string    `json:"bio"`
	ProfilePicture string    `json:"profilePicture"`
	GitHubID       int64     `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
}
