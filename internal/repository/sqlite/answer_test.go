package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/stackit/internal/apperror"
	"github.com/sakif/stackit/internal/model"
)

func TestCreateAnswer(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	question := createTestQuestion(t, db, user.ID, "q")

	answer := &model.Answer{
		Content:    "use a mutex",
		UserID:     user.ID,
		QuestionID: question.ID,
	}
	if err := db.CreateAnswer(context.Background(), answer); err != nil {
		t.Fatalf("CreateAnswer() error = %v", err)
	}
	if answer.ID == "" {
		t.Error("CreateAnswer() did not set ID")
	}
	if answer.IsAccepted {
		t.Error("new answers must not be accepted")
	}
}

// Accepting a second answer must atomically clear the first: a question
// never has two accepted answers, no matter the acceptance order.
func TestMarkAccepted_SwapsPrevious(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "alice")
	question := createTestQuestion(t, db, user.ID, "q")
	first := createTestAnswer(t, db, user.ID, question.ID, "first")
	second := createTestAnswer(t, db, user.ID, question.ID, "second")

	if err := db.MarkAccepted(ctx, question.ID, first.ID); err != nil {
		t.Fatalf("MarkAccepted(first) error = %v", err)
	}
	if err := db.MarkAccepted(ctx, question.ID, second.ID); err != nil {
		t.Fatalf("MarkAccepted(second) error = %v", err)
	}

	got1, err := db.GetAnswerByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetAnswerByID() error = %v", err)
	}
	got2, err := db.GetAnswerByID(ctx, second.ID)
	if err != nil {
		t.Fatalf("GetAnswerByID() error = %v", err)
	}

	if got1.IsAccepted {
		t.Error("first answer should have been un-accepted")
	}
	if !got2.IsAccepted {
		t.Error("second answer should be accepted")
	}
}

func TestMarkAccepted_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "alice")
	question := createTestQuestion(t, db, user.ID, "q")
	answer := createTestAnswer(t, db, user.ID, question.ID, "a")

	if err := db.MarkAccepted(ctx, question.ID, answer.ID); err != nil {
		t.Fatalf("MarkAccepted() error = %v", err)
	}
	if err := db.MarkAccepted(ctx, question.ID, answer.ID); err != nil {
		t.Fatalf("MarkAccepted() repeat error = %v", err)
	}

	got, err := db.GetAnswerByID(ctx, answer.ID)
	if err != nil {
		t.Fatalf("GetAnswerByID() error = %v", err)
	}
	if !got.IsAccepted {
		t.Error("answer should remain accepted")
	}
}

func TestMarkAccepted_WrongQuestion(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "alice")
	q1 := createTestQuestion(t, db, user.ID, "q1")
	q2 := createTestQuestion(t, db, user.ID, "q2")
	answer := createTestAnswer(t, db, user.ID, q1.ID, "a")

	// The answer belongs to q1, so accepting it under q2 must fail and
	// leave it untouched.
	err := db.MarkAccepted(ctx, q2.ID, answer.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}

	got, err := db.GetAnswerByID(ctx, answer.ID)
	if err != nil {
		t.Fatalf("GetAnswerByID() error = %v", err)
	}
	if got.IsAccepted {
		t.Error("answer should not be accepted")
	}
}

func TestDeleteAnswer_RemovesVotes(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createTestUser(t, db, "author")
	voter := createTestUser(t, db, "voter")
	question := createTestQuestion(t, db, author.ID, "q")
	answer := createTestAnswer(t, db, author.ID, question.ID, "a")

	if _, err := db.ToggleVote(ctx, voter.ID, "", answer.ID, model.VoteUp); err != nil {
		t.Fatalf("ToggleVote() error = %v", err)
	}

	if err := db.DeleteAnswer(ctx, answer.ID); err != nil {
		t.Fatalf("DeleteAnswer() error = %v", err)
	}

	var votes int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM votes WHERE answer_id = ?`, answer.ID).Scan(&votes); err != nil {
		t.Fatalf("counting votes: %v", err)
	}
	if votes != 0 {
		t.Errorf("votes remaining = %d, want 0", votes)
	}
}

func TestListAnswersForQuestion(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "alice")
	question := createTestQuestion(t, db, user.ID, "q")
	other := createTestQuestion(t, db, user.ID, "other")

	createTestAnswer(t, db, user.ID, question.ID, "a1")
	createTestAnswer(t, db, user.ID, question.ID, "a2")
	createTestAnswer(t, db, user.ID, other.ID, "elsewhere")

	answers, err := db.ListAnswersForQuestion(ctx, question.ID, true)
	if err != nil {
		t.Fatalf("ListAnswersForQuestion() error = %v", err)
	}
	if len(answers) != 2 {
		t.Errorf("got %d answers, want 2", len(answers))
	}
}
