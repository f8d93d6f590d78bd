package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/stackit/internal/repository"
)

var _ repository.VoteRepository = (*DB)(nil)

// ToggleVote reads the caller's existing vote for the target and applies
// the toggle rule, all inside one transaction:
//
//	no vote            → insert one
//	same type          → delete it (toggle-off)
//	different type     → flip it in place
//
// The single-connection pool serializes concurrent writers; the UNIQUE
// (user_id, question_id, answer_id) index backstops the check-then-insert
// so two racing requests can never leave duplicate votes.
func (db *DB) ToggleVote(ctx context.Context, userID, questionID, answerID, voteType string) (repository.VoteOutcome, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: beginning vote transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		existingID   string
		existingType string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT id, vote_type FROM votes
		 WHERE user_id = ? AND question_id = ? AND answer_id = ?`,
		userID, questionID, answerID,
	).Scan(&existingID, &existingType)

	var outcome repository.VoteOutcome
	switch {
	case err == sql.ErrNoRows:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO votes (id, vote_type, created_at, user_id, question_id, answer_id)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			xid.New().String(), voteType, time.Now().UTC(), userID, questionID, answerID)
		if err != nil {
			return 0, fmt.Errorf("sqlite: inserting vote: %w", err)
		}
		outcome = repository.VoteCreated

	case err != nil:
		return 0, fmt.Errorf("sqlite: looking up existing vote: %w", err)

	case existingType == voteType:
		if _, err := tx.ExecContext(ctx, `DELETE FROM votes WHERE id = ?`, existingID); err != nil {
			return 0, fmt.Errorf("sqlite: removing vote %s: %w", existingID, err)
		}
		outcome = repository.VoteRemoved

	default:
		if _, err := tx.ExecContext(ctx,
			`UPDATE votes SET vote_type = ? WHERE id = ?`, voteType, existingID); err != nil {
			return 0, fmt.Errorf("sqlite: switching vote %s: %w", existingID, err)
		}
		outcome = repository.VoteSwitched
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: committing vote: %w", err)
	}
	return outcome, nil
}

func (db *DB) QuestionScore(ctx context.Context, questionID string) (int, error) {
	return db.score(ctx, "question_id", questionID)
}

func (db *DB) AnswerScore(ctx context.Context, answerID string) (int, error) {
	return db.score(ctx, "answer_id", answerID)
}

// score recomputes upvotes minus downvotes for the target on every call.
func (db *DB) score(ctx context.Context, column, id string) (int, error) {
	var score int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE vote_type WHEN 'up' THEN 1 ELSE -1 END), 0)
		 FROM votes WHERE `+column+` = ?`, id,
	).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("sqlite: computing score for %s %s: %w", column, id, err)
	}
	return score, nil
}
