package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/stackit/internal/apperror"
	"github.com/sakif/stackit/internal/model"
	"github.com/sakif/stackit/internal/repository"
)

// DashboardStats is the admin dashboard summary.
type DashboardStats struct {
	TotalUsers       int `json:"totalUsers"`
	TotalQuestions   int `json:"totalQuestions"`
	TotalAnswers     int `json:"totalAnswers"`
	PendingQuestions int `json:"pendingQuestions"`
	PendingAnswers   int `json:"pendingAnswers"`
}

// Dashboard is the full admin dashboard payload.
type Dashboard struct {
	Stats           DashboardStats   `json:"stats"`
	RecentQuestions []model.Question `json:"recentQuestions"`
	RecentUsers     []model.User     `json:"recentUsers"`
}

// AdminService implements the moderation surface: dashboard stats and
// content approval. Every method re-checks the caller's admin flag.
type AdminService struct {
	users     repository.UserRepository
	questions repository.QuestionRepository
	answers   repository.AnswerRepository
	logger    *slog.Logger
}

func NewAdminService(
	users repository.UserRepository,
	questions repository.QuestionRepository,
	answers repository.AnswerRepository,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		users:     users,
		questions: questions,
		answers:   answers,
		logger:    logger,
	}
}

// GetDashboard returns counts plus the five most recent questions and
// users. Admin only.
func (s *AdminService) GetDashboard(ctx context.Context, callerID string) (*Dashboard, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	var (
		d   Dashboard
		err error
	)
	if d.Stats.TotalUsers, err = s.users.CountUsers(ctx); err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}
	if d.Stats.TotalQuestions, err = s.questions.CountQuestions(ctx); err != nil {
		return nil, fmt.Errorf("counting questions: %w", err)
	}
	if d.Stats.TotalAnswers, err = s.answers.CountAnswers(ctx); err != nil {
		return nil, fmt.Errorf("counting answers: %w", err)
	}
	if d.Stats.PendingQuestions, err = s.questions.CountPendingQuestions(ctx); err != nil {
		return nil, fmt.Errorf("counting pending questions: %w", err)
	}
	if d.Stats.PendingAnswers, err = s.answers.CountPendingAnswers(ctx); err != nil {
		return nil, fmt.Errorf("counting pending answers: %w", err)
	}

	if d.RecentQuestions, err = s.questions.ListRecentQuestions(ctx, 5); err != nil {
		return nil, fmt.Errorf("listing recent questions: %w", err)
	}
	if d.RecentUsers, err = s.users.ListRecentUsers(ctx, 5); err != nil {
		return nil, fmt.Errorf("listing recent users: %w", err)
	}

	return &d, nil
}

// Approve sets the approval flag on a question or answer, making it
// visible in public listings. contentType is "question" or "answer".
func (s *AdminService) Approve(ctx context.Context, callerID, contentType, id string) error {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return err
	}

	switch contentType {
	case "question":
		if err := s.questions.ApproveQuestion(ctx, id); err != nil {
			return err
		}
	case "answer":
		if err := s.answers.ApproveAnswer(ctx, id); err != nil {
			return err
		}
	default:
		return apperror.ValidationFailed("type", "content type must be \"question\" or \"answer\"")
	}

	s.logger.Info("content approved",
		slog.String("type", contentType),
		slog.String("id", id),
		slog.String("callerID", callerID),
	)
	return nil
}

func (s *AdminService) requireAdmin(ctx context.Context, callerID string) error {
	caller, err := s.users.GetUserByID(ctx, callerID)
	if err != nil {
		return err
	}
	if !caller.IsAdmin {
		return apperror.Forbidden("admin access required")
	}
	return nil
}
