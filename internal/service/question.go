// Package service contains the forum's business logic: validation,
// authorization, tag bookkeeping, vote scoring, and notification fanout.
// Services accept plain values, call repositories, and return domain
// errors; they know nothing about HTTP.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/stackit/internal/apperror"
	"github.com/sakif/stackit/internal/model"
	"github.com/sakif/stackit/internal/repository"
)

const (
	MaxTitleLength   = 200
	FrontPageLimit   = 20
	ProfileListLimit = 10
)

// QuestionService handles asking, browsing, editing, and deleting
// questions, including their tag links.
type QuestionService struct {
	questions  repository.QuestionRepository
	answers    repository.AnswerRepository
	tags       repository.TagRepository
	users      repository.UserRepository
	votes      repository.VoteRepository
	categories repository.CategoryRepository
	logger     *slog.Logger
}

func NewQuestionService(
	questions repository.QuestionRepository,
	answers repository.AnswerRepository,
	tags repository.TagRepository,
	users repository.UserRepository,
	votes repository.VoteRepository,
	categories repository.CategoryRepository,
	logger *slog.Logger,
) *QuestionService {
	return &QuestionService{
		questions:  questions,
		answers:    answers,
		tags:       tags,
		users:      users,
		votes:      votes,
		categories: categories,
		logger:     logger,
	}
}

// Ask validates and creates a question, then links its tags.
func (s *QuestionService) Ask(ctx context.Context, userID, title, content, categoryID, rawTags string) (*model.Question, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if content == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}

	question := &model.Question{
		Title:      title,
		Content:    content,
		UserID:     userID,
		CategoryID: categoryID,
	}
	if err := s.questions.CreateQuestion(ctx, question); err != nil {
		s.logger.Error("failed to create question",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating question: %w", err)
	}

	for _, name := range ParseTagNames(rawTags) {
		tag, err := s.tags.FindOrCreateTag(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolving tag %q: %w", name, err)
		}
		if err := s.tags.LinkTag(ctx, question.ID, tag.ID); err != nil {
			return nil, fmt.Errorf("linking tag %q: %w", name, err)
		}
	}

	s.logger.Info("question posted",
		slog.String("id", question.ID),
		slog.String("userID", userID),
	)
	return question, nil
}

// View returns a question and bumps its view counter. Every call counts
// as a view, repeat visits included.
func (s *QuestionService) View(ctx context.Context, id string) (*model.Question, error) {
	question, err := s.questions.GetQuestionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.questions.IncrementViews(ctx, id); err != nil {
		return nil, fmt.Errorf("incrementing views: %w", err)
	}
	question.Views++
	return question, nil
}

// Get returns a question without counting a view.
func (s *QuestionService) Get(ctx context.Context, id string) (*model.Question, error) {
	return s.questions.GetQuestionByID(ctx, id)
}

// List returns approved questions for the front page, newest first,
// optionally filtered by a search substring and category.
func (s *QuestionService) List(ctx context.Context, search, categoryID string) ([]model.Question, error) {
	questions, err := s.questions.ListQuestions(ctx, repository.QuestionFilter{
		Search:       search,
		CategoryID:   categoryID,
		OnlyApproved: true,
		Limit:        FrontPageLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("listing questions: %w", err)
	}
	return questions, nil
}

// Categories returns all categories for the front page filter.
func (s *QuestionService) Categories(ctx context.Context) ([]model.Category, error) {
	return s.categories.ListCategories(ctx)
}

// ListByUser returns a user's recent approved questions for their profile.
func (s *QuestionService) ListByUser(ctx context.Context, userID string) ([]model.Question, error) {
	questions, err := s.questions.ListQuestionsByUser(ctx, userID, true, ProfileListLimit)
	if err != nil {
		return nil, fmt.Errorf("listing questions for user %s: %w", userID, err)
	}
	return questions, nil
}

// Tags returns the question's tag links in insertion order.
func (s *QuestionService) Tags(ctx context.Context, questionID string) ([]model.QuestionTag, error) {
	return s.tags.ListQuestionTags(ctx, questionID)
}

// Score recomputes the question's vote score.
func (s *QuestionService) Score(ctx context.Context, questionID string) (int, error) {
	return s.votes.QuestionScore(ctx, questionID)
}

// Edit updates a question's title, content, category, and tags. Only the
// owner or an admin may edit; the check runs before any write.
//
// Tag changes are applied as a set difference against the current tag
// names: links for dropped names are removed, links for new names are
// created, and unchanged tags keep their existing join rows.
func (s *QuestionService) Edit(ctx context.Context, callerID, questionID, title, content, categoryID, rawTags string) (*model.Question, error) {
	question, err := s.questions.GetQuestionByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, callerID, question.UserID, "edit this question"); err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if content == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}

	question.Title = title
	question.Content = content
	question.CategoryID = categoryID
	if err := s.questions.UpdateQuestion(ctx, question); err != nil {
		return nil, fmt.Errorf("updating question: %w", err)
	}

	if err := s.applyTagDiff(ctx, questionID, rawTags); err != nil {
		return nil, err
	}

	s.logger.Info("question updated",
		slog.String("id", questionID),
		slog.String("callerID", callerID),
	)
	return question, nil
}

// applyTagDiff reconciles the question's tag links with the submitted tag
// string, touching only the links that actually changed.
func (s *QuestionService) applyTagDiff(ctx context.Context, questionID, rawTags string) error {
	current, err := s.tags.ListQuestionTags(ctx, questionID)
	if err != nil {
		return fmt.Errorf("listing current tags: %w", err)
	}

	newNames := make(map[string]bool)
	for _, name := range ParseTagNames(rawTags) {
		newNames[name] = true
	}
	currentNames := make(map[string]bool, len(current))
	for _, qt := range current {
		currentNames[qt.TagName] = true
	}

	for _, qt := range current {
		if !newNames[qt.TagName] {
			if err := s.tags.UnlinkTag(ctx, qt.ID); err != nil {
				return fmt.Errorf("unlinking tag %q: %w", qt.TagName, err)
			}
		}
	}

	for _, name := range ParseTagNames(rawTags) {
		if currentNames[name] {
			continue
		}
		tag, err := s.tags.FindOrCreateTag(ctx, name)
		if err != nil {
			return fmt.Errorf("resolving tag %q: %w", name, err)
		}
		if err := s.tags.LinkTag(ctx, questionID, tag.ID); err != nil {
			return fmt.Errorf("linking tag %q: %w", name, err)
		}
	}
	return nil
}

// Delete removes a question with all of its answers, votes, and tag
// links. Only the owner or an admin may delete.
func (s *QuestionService) Delete(ctx context.Context, callerID, questionID string) error {
	question, err := s.questions.GetQuestionByID(ctx, questionID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, callerID, question.UserID, "delete this question"); err != nil {
		return err
	}

	if err := s.questions.DeleteQuestion(ctx, questionID); err != nil {
		return fmt.Errorf("deleting question: %w", err)
	}

	s.logger.Info("question deleted",
		slog.String("id", questionID),
		slog.String("callerID", callerID),
	)
	return nil
}

// authorize fails with ErrForbidden unless the caller owns the content or
// is an admin.
func (s *QuestionService) authorize(ctx context.Context, callerID, ownerID, action string) error {
	if callerID == ownerID {
		return nil
	}
	caller, err := s.users.GetUserByID(ctx, callerID)
	if err != nil {
		return err
	}
	if !caller.IsAdmin {
		return apperror.Forbidden("you are not authorized to " + action)
	}
	return nil
}
