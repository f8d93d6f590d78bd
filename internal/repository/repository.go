// Package repository declares the storage interfaces the service layer
// depends on. The sqlite subpackage provides the concrete implementation;
// tests substitute in-memory fakes where useful.
package repository

import (
	"context"

	"github.com/sakif/stackit/internal/model"
)

// QuestionFilter narrows ListQuestions. Zero values mean "no filter".
type QuestionFilter struct {
	Search       string // substring match on title or content
	CategoryID   string
	OnlyApproved bool
	Limit        int
}

// VoteOutcome reports what ToggleVote did with an incoming vote.
type VoteOutcome int

const (
	VoteCreated  VoteOutcome = iota // no prior vote, one was inserted
	VoteRemoved                     // prior vote of the same type, deleted (toggle-off)
	VoteSwitched                    // prior vote of the other type, flipped in place
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UpsertGitHubUser inserts or refreshes a user keyed by GitHubID,
	// populating user.ID either way.
	UpsertGitHubUser(ctx context.Context, user *model.User) error
	CountUsers(ctx context.Context) (int, error)
	ListRecentUsers(ctx context.Context, limit int) ([]model.User, error)
}

type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategoryByID(ctx context.Context, id string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
}

type QuestionRepository interface {
	CreateQuestion(ctx context.Context, question *model.Question) error
	GetQuestionByID(ctx context.Context, id string) (*model.Question, error)
	ListQuestions(ctx context.Context, filter QuestionFilter) ([]model.Question, error)
	ListQuestionsByUser(ctx context.Context, userID string, onlyApproved bool, limit int) ([]model.Question, error)
	UpdateQuestion(ctx context.Context, question *model.Question) error
	// DeleteQuestion removes the question and, in the same transaction,
	// its answers, all votes on the question or its answers, and its tag
	// links. Tags themselves survive.
	DeleteQuestion(ctx context.Context, id string) error
	// IncrementViews bumps the view counter. Not idempotent: every call
	// counts, including repeats from the same viewer.
	IncrementViews(ctx context.Context, id string) error
	ApproveQuestion(ctx context.Context, id string) error
	CountQuestions(ctx context.Context) (int, error)
	CountPendingQuestions(ctx context.Context) (int, error)
	ListRecentQuestions(ctx context.Context, limit int) ([]model.Question, error)
}

type AnswerRepository interface {
	CreateAnswer(ctx context.Context, answer *model.Answer) error
	GetAnswerByID(ctx context.Context, id string) (*model.Answer, error)
	ListAnswersForQuestion(ctx context.Context, questionID string, onlyApproved bool) ([]model.Answer, error)
	ListAnswersByUser(ctx context.Context, userID string, onlyApproved bool, limit int) ([]model.Answer, error)
	UpdateAnswer(ctx context.Context, answer *model.Answer) error
	// DeleteAnswer removes the answer and its votes in one transaction.
	DeleteAnswer(ctx context.Context, id string) error
	// MarkAccepted clears the accepted flag on every other answer of
	// questionID and sets it on answerID as a single transaction, so no
	// reader ever observes two accepted answers or a gap in between.
	MarkAccepted(ctx context.Context, questionID, answerID string) error
	ApproveAnswer(ctx context.Context, id string) error
	CountAnswers(ctx context.Context) (int, error)
	CountPendingAnswers(ctx context.Context) (int, error)
}

type VoteRepository interface {
	// ToggleVote applies the three-way vote rule for (userID, target)
	// inside one transaction: no existing vote creates one, an existing
	// vote of the same type is deleted, an existing vote of the other
	// type is flipped in place. Exactly one of questionID/answerID must
	// be non-empty; the caller validates that.
	ToggleVote(ctx context.Context, userID, questionID, answerID, voteType string) (VoteOutcome, error)
	// QuestionScore and AnswerScore recompute upvotes minus downvotes on
	// demand. O(votes) per call; nothing is denormalized.
	QuestionScore(ctx context.Context, questionID string) (int, error)
	AnswerScore(ctx context.Context, answerID string) (int, error)
}

type TagRepository interface {
	FindOrCreateTag(ctx context.Context, name string) (*model.Tag, error)
	ListQuestionTags(ctx context.Context, questionID string) ([]model.QuestionTag, error)
	LinkTag(ctx context.Context, questionID, tagID string) error
	UnlinkTag(ctx context.Context, questionTagID string) error
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *model.Notification) error
	ListUnreadNotifications(ctx context.Context, userID string, limit int) ([]model.Notification, error)
	// MarkNotificationRead sets the read flag only when userID is the
	// addressee. It returns false (with no error and no mutation) when
	// someone else's notification is targeted.
	MarkNotificationRead(ctx context.Context, id, userID string) (bool, error)
}
