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

// AnswerService handles posting, editing, deleting, and accepting
// answers.
type AnswerService struct {
	answers       repository.AnswerRepository
	questions     repository.QuestionRepository
	users         repository.UserRepository
	votes         repository.VoteRepository
	notifications *NotificationService
	logger        *slog.Logger
}

func NewAnswerService(
	answers repository.AnswerRepository,
	questions repository.QuestionRepository,
	users repository.UserRepository,
	votes repository.VoteRepository,
	notifications *NotificationService,
	logger *slog.Logger,
) *AnswerService {
	return &AnswerService{
		answers:       answers,
		questions:     questions,
		users:         users,
		votes:         votes,
		notifications: notifications,
		logger:        logger,
	}
}

// Post creates an answer and notifies the question's author, unless the
// author is answering their own question. The notification is best-effort
// and never fails the post.
func (s *AnswerService) Post(ctx context.Context, userID, questionID, content string) (*model.Answer, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}

	question, err := s.questions.GetQuestionByID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	answer := &model.Answer{
		Content:    content,
		UserID:     userID,
		QuestionID: questionID,
	}
	if err := s.answers.CreateAnswer(ctx, answer); err != nil {
		s.logger.Error("failed to create answer",
			slog.String("questionID", questionID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating answer: %w", err)
	}

	if question.UserID != userID {
		authorName := userID
		if author, err := s.users.GetUserByID(ctx, userID); err == nil {
			authorName = author.Username
		}
		s.notifications.Notify(ctx, question.UserID,
			fmt.Sprintf("%s answered your question: %s", authorName, question.Title),
			"/question/"+questionID,
		)
	}

	s.logger.Info("answer posted",
		slog.String("id", answer.ID),
		slog.String("questionID", questionID),
		slog.String("userID", userID),
	)
	return answer, nil
}

// ListForQuestion returns a question's approved answers, newest first,
// each paired with its current score.
func (s *AnswerService) ListForQuestion(ctx context.Context, questionID string) ([]model.Answer, error) {
	return s.answers.ListAnswersForQuestion(ctx, questionID, true)
}

// ListByUser returns a user's recent approved answers for their profile.
func (s *AnswerService) ListByUser(ctx context.Context, userID string) ([]model.Answer, error) {
	answers, err := s.answers.ListAnswersByUser(ctx, userID, true, ProfileListLimit)
	if err != nil {
		return nil, fmt.Errorf("listing answers for user %s: %w", userID, err)
	}
	return answers, nil
}

// Score recomputes the answer's vote score.
func (s *AnswerService) Score(ctx context.Context, answerID string) (int, error) {
	return s.votes.AnswerScore(ctx, answerID)
}

// Edit updates an answer's content; owner or admin only, checked before
// any write.
func (s *AnswerService) Edit(ctx context.Context, callerID, answerID, content string) (*model.Answer, error) {
	answer, err := s.answers.GetAnswerByID(ctx, answerID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, callerID, answer.UserID, "edit this answer"); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}

	answer.Content = content
	if err := s.answers.UpdateAnswer(ctx, answer); err != nil {
		return nil, fmt.Errorf("updating answer: %w", err)
	}

	s.logger.Info("answer updated",
		slog.String("id", answerID),
		slog.String("callerID", callerID),
	)
	return answer, nil
}

// Delete removes an answer and its votes; owner or admin only.
func (s *AnswerService) Delete(ctx context.Context, callerID, answerID string) error {
	answer, err := s.answers.GetAnswerByID(ctx, answerID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, callerID, answer.UserID, "delete this answer"); err != nil {
		return err
	}

	if err := s.answers.DeleteAnswer(ctx, answerID); err != nil {
		return fmt.Errorf("deleting answer: %w", err)
	}

	s.logger.Info("answer deleted",
		slog.String("id", answerID),
		slog.String("callerID", callerID),
	)
	return nil
}

// Accept marks an answer as the question's solution. Only the question's
// author or an admin may accept. The previous accepted answer, if any, is
// cleared in the same transaction, so the question never shows two
// accepted answers.
//
// Accepting an already-accepted answer succeeds and re-notifies the
// answer's author; acceptance is rare enough that the duplicate
// notification is tolerated.
func (s *AnswerService) Accept(ctx context.Context, callerID, answerID string) error {
	answer, err := s.answers.GetAnswerByID(ctx, answerID)
	if err != nil {
		return err
	}
	question, err := s.questions.GetQuestionByID(ctx, answer.QuestionID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, callerID, question.UserID, "accept answers for this question"); err != nil {
		return err
	}

	if err := s.answers.MarkAccepted(ctx, question.ID, answerID); err != nil {
		return fmt.Errorf("accepting answer: %w", err)
	}

	if answer.UserID != callerID {
		s.notifications.Notify(ctx, answer.UserID,
			fmt.Sprintf("Your answer was accepted for: %s", question.Title),
			"/question/"+question.ID,
		)
	}

	s.logger.Info("answer accepted",
		slog.String("id", answerID),
		slog.String("questionID", question.ID),
		slog.String("callerID", callerID),
	)
	return nil
}

func (s *AnswerService) authorize(ctx context.Context, callerID, ownerID, action string) error {
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
