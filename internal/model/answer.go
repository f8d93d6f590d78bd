package model

import "time"

// Answer is a reply to a question. At most one answer per question has
// IsAccepted set; the swap is enforced transactionally by the repository.
type Answer struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	IsApproved bool      `json:"isApproved"`
	IsAccepted bool      `json:"isAccepted"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	UserID     string    `json:"userId"`
	QuestionID string    `json:"questionId"`
}
