package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/stackit/internal/apperror"
	"github.com/sakif/stackit/internal/model"
	"github.com/sakif/stackit/internal/repository"
)

// VoteService applies votes and recomputes scores.
type VoteService struct {
	votes         repository.VoteRepository
	questions     repository.QuestionRepository
	answers       repository.AnswerRepository
	users         repository.UserRepository
	notifications *NotificationService
	logger        *slog.Logger
}

func NewVoteService(
	votes repository.VoteRepository,
	questions repository.QuestionRepository,
	answers repository.AnswerRepository,
	users repository.UserRepository,
	notifications *NotificationService,
	logger *slog.Logger,
) *VoteService {
	return &VoteService{
		votes:         votes,
		questions:     questions,
		answers:       answers,
		users:         users,
		notifications: notifications,
		logger:        logger,
	}
}

// Cast applies a vote by userID on exactly one of questionID/answerID and
// returns the target's score recomputed after the mutation.
//
// A request naming both targets, neither target, or an unknown vote type
// is rejected outright rather than best-effort scored. A repeated vote of
// the same type toggles the previous one off.
//
// Votes on answers notify the answer's author, except when the voter is
// the author or the vote was a toggle-off. Question votes never notify.
func (s *VoteService) Cast(ctx context.Context, userID, questionID, answerID, voteType string) (int, error) {
	if voteType != model.VoteUp && voteType != model.VoteDown {
		return 0, apperror.ValidationFailed("type", "vote type must be \"up\" or \"down\"")
	}
	if (questionID == "") == (answerID == "") {
		return 0, apperror.ValidationFailed("target", "exactly one of question_id or answer_id is required")
	}

	if questionID != "" {
		return s.castQuestionVote(ctx, userID, questionID, voteType)
	}
	return s.castAnswerVote(ctx, userID, answerID, voteType)
}

func (s *VoteService) castQuestionVote(ctx context.Context, userID, questionID, voteType string) (int, error) {
	if _, err := s.questions.GetQuestionByID(ctx, questionID); err != nil {
		return 0, err
	}

	if _, err := s.votes.ToggleVote(ctx, userID, questionID, "", voteType); err != nil {
		return 0, fmt.Errorf("toggling question vote: %w", err)
	}

	score, err := s.votes.QuestionScore(ctx, questionID)
	if err != nil {
		return 0, fmt.Errorf("computing question score: %w", err)
	}

	s.logger.Info("vote cast",
		slog.String("userID", userID),
		slog.String("questionID", questionID),
		slog.String("type", voteType),
		slog.Int("score", score),
	)
	return score, nil
}

func (s *VoteService) castAnswerVote(ctx context.Context, userID, answerID, voteType string) (int, error) {
	answer, err := s.answers.GetAnswerByID(ctx, answerID)
	if err != nil {
		return 0, err
	}

	outcome, err := s.votes.ToggleVote(ctx, userID, "", answerID, voteType)
	if err != nil {
		return 0, fmt.Errorf("toggling answer vote: %w", err)
	}

	score, err := s.votes.AnswerScore(ctx, answerID)
	if err != nil {
		return 0, fmt.Errorf("computing answer score: %w", err)
	}

	// Toggle-off stays silent; only a new or flipped vote notifies.
	if outcome != repository.VoteRemoved && answer.UserID != userID {
		voterName := userID
		if voter, err := s.users.GetUserByID(ctx, userID); err == nil {
			voterName = voter.Username
		}
		s.notifications.Notify(ctx, answer.UserID,
			fmt.Sprintf("%s voted on your answer", voterName),
			"/question/"+answer.QuestionID,
		)
	}

	s.logger.Info("vote cast",
		slog.String("userID", userID),
		slog.String("answerID", answerID),
		slog.String("type", voteType),
		slog.Int("score", score),
	)
	return score, nil
}
