package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/stackit/internal/model"
	"github.com/sakif/stackit/internal/repository"
)

func TestToggleVote_CreateRemoveSwitch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createTestUser(t, db, "author")
	voter := createTestUser(t, db, "voter")
	question := createTestQuestion(t, db, author.ID, "how do slices work")

	// First vote creates.
	outcome, err := db.ToggleVote(ctx, voter.ID, question.ID, "", model.VoteUp)
	if err != nil {
		t.Fatalf("ToggleVote() error = %v", err)
	}
	if outcome != repository.VoteCreated {
		t.Errorf("outcome = %v, want VoteCreated", outcome)
	}
	assertQuestionScore(t, db, question.ID, 1)

	// Same vote again removes it.
	outcome, err = db.ToggleVote(ctx, voter.ID, question.ID, "", model.VoteUp)
	if err != nil {
		t.Fatalf("ToggleVote() error = %v", err)
	}
	if outcome != repository.VoteRemoved {
		t.Errorf("outcome = %v, want VoteRemoved", outcome)
	}
	assertQuestionScore(t, db, question.ID, 0)

	// Recreate, then cast the opposite: the vote flips, never doubles.
	if _, err := db.ToggleVote(ctx, voter.ID, question.ID, "", model.VoteUp); err != nil {
		t.Fatalf("ToggleVote() error = %v", err)
	}
	outcome, err = db.ToggleVote(ctx, voter.ID, question.ID, "", model.VoteDown)
	if err != nil {
		t.Fatalf("ToggleVote() error = %v", err)
	}
	if outcome != repository.VoteSwitched {
		t.Errorf("outcome = %v, want VoteSwitched", outcome)
	}
	assertQuestionScore(t, db, question.ID, -1)
}

func TestToggleVote_OneVotePerTarget(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createTestUser(t, db, "author")
	voter := createTestUser(t, db, "voter")
	question := createTestQuestion(t, db, author.ID, "q")
	answer := createTestAnswer(t, db, author.ID, question.ID, "a")

	// A question vote and an answer vote by the same user are distinct
	// rows; neither collides with the other.
	if _, err := db.ToggleVote(ctx, voter.ID, question.ID, "", model.VoteUp); err != nil {
		t.Fatalf("question vote error = %v", err)
	}
	if _, err := db.ToggleVote(ctx, voter.ID, "", answer.ID, model.VoteUp); err != nil {
		t.Fatalf("answer vote error = %v", err)
	}

	assertQuestionScore(t, db, question.ID, 1)

	score, err := db.AnswerScore(ctx, answer.ID)
	if err != nil {
		t.Fatalf("AnswerScore() error = %v", err)
	}
	if score != 1 {
		t.Errorf("AnswerScore() = %d, want 1", score)
	}
}

func TestScore_SumsAllVoters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createTestUser(t, db, "author")
	question := createTestQuestion(t, db, author.ID, "q")

	for i, voteType := range []string{model.VoteUp, model.VoteUp, model.VoteDown} {
		voter := createTestUser(t, db, "voter"+string(rune('a'+i)))
		if _, err := db.ToggleVote(ctx, voter.ID, question.ID, "", voteType); err != nil {
			t.Fatalf("ToggleVote() error = %v", err)
		}
	}

	assertQuestionScore(t, db, question.ID, 1)
}

func TestScore_NoVotesIsZero(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author")
	question := createTestQuestion(t, db, author.ID, "q")

	assertQuestionScore(t, db, question.ID, 0)
}

func assertQuestionScore(t *testing.T, db *DB, questionID string, want int) {
	t.Helper()
	score, err := db.QuestionScore(context.Background(), questionID)
	if err != nil {
		t.Fatalf("QuestionScore() error = %v", err)
	}
	if score != want {
		t.Errorf("QuestionScore() = %d, want %d", score, want)
	}
}
