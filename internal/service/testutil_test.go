package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/stackit/internal/auth"
	"github.com/sakif/stackit/internal/model"
	"github.com/sakif/stackit/internal/repository/sqlite"
)

// testEnv wires every service against one in-memory database. Service
// tests run against the real repositories: the interesting behavior
// (tag diffing, vote toggles, cascades) lives in the interplay between
// the two layers, and fakes would just restate the repository tests.
type testEnv struct {
	db            *sqlite.DB
	notifications *NotificationService
	questions     *QuestionService
	answers       *AnswerService
	votes         *VoteService
	auth          *AuthService
	admin         *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens, err := auth.NewTokenService("test-secret-at-least-16-bytes-long")
	if err != nil {
		t.Fatalf("failed to create token service: %v", err)
	}
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)

	notifications := NewNotificationService(db, logger)
	return &testEnv{
		db:            db,
		notifications: notifications,
		questions:     NewQuestionService(db, db, db, db, db, db, logger),
		answers:       NewAnswerService(db, db, db, db, notifications, logger),
		votes:         NewVoteService(db, db, db, db, notifications, logger),
		auth:          NewAuthService(db, tokens, passwords, logger),
		admin:         NewAdminService(db, db, db, logger),
	}
}

func (e *testEnv) createUser(t *testing.T, username string, isAdmin bool) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "x",
		IsAdmin:      isAdmin,
	}
	if err := e.db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %q: %v", username, err)
	}
	return user
}

func (e *testEnv) askQuestion(t *testing.T, userID, title, tags string) *model.Question {
	t.Helper()
	question, err := e.questions.Ask(context.Background(), userID, title, "content", "", tags)
	if err != nil {
		t.Fatalf("failed to ask question: %v", err)
	}
	return question
}

func (e *testEnv) unread(t *testing.T, userID string) []model.Notification {
	t.Helper()
	notifications, err := e.notifications.Unread(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to list notifications: %v", err)
	}
	return notifications
}
