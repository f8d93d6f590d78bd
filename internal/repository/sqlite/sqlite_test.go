package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/sakif/stackit/internal/model"
)

// newTestDB opens a fresh in-memory database. The single-connection pool
// keeps it alive for the duration of the test.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "not-a-real-hash",
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user %q: %v", username, err)
	}
	return user
}

func createTestQuestion(t *testing.T, db *DB, userID, title string) *model.Question {
	t.Helper()
	question := &model.Question{
		Title:   title,
		Content: "content of " + title,
		UserID:  userID,
	}
	if err := db.CreateQuestion(context.Background(), question); err != nil {
		t.Fatalf("failed to create test question %q: %v", title, err)
	}
	return question
}

func createTestAnswer(t *testing.T, db *DB, userID, questionID, content string) *model.Answer {
	t.Helper()
	answer := &model.Answer{
		Content:    content,
		UserID:     userID,
		QuestionID: questionID,
	}
	if err := db.CreateAnswer(context.Background(), answer); err != nil {
		t.Fatalf("failed to create test answer: %v", err)
	}
	return answer
}
