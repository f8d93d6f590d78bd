package model

import "time"

// Question is a post asking for answers.
//
// CategoryID is empty when the question has no category. IsApproved
// gates visibility in public listings (moderation); new questions are
// approved by default.
type Question struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Views      int       `json:"views"`
	IsApproved bool      `json:"isApproved"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	UserID     string    `json:"userId"`
	CategoryID string    `json:"categoryId,omitempty"`
}
