package model

import "time"

// Vote types. A vote is worth +1 (up) or -1 (down) toward a target's score.
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// Vote is a directional marker cast by one user on exactly one target:
// either a question or an answer, never both.
//
// The absent target ID is stored as the empty string rather than NULL so
// that the UNIQUE(user_id, question_id, answer_id) index reliably
// enforces one vote per (user, target) pair.
type Vote struct {
	ID         string    `json:"id"`
	VoteType   string    `json:"voteType"`
	CreatedAt  time.Time `json:"createdAt"`
	UserID     string    `json:"userId"`
	QuestionID string    `json:"questionId,omitempty"`
	AnswerID   string    `json:"answerId,omitempty"`
}
