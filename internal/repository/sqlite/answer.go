package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/stackit/internal/apperror"
	"github.com/sakif/stackit/internal/model"
	"github.com/sakif/stackit/internal/repository"
)

var _ repository.AnswerRepository = (*DB)(nil)

const answerColumns = `id, content, is_approved, is_accepted,
	created_at, updated_at, user_id, question_id`

func scanAnswer(row interface{ Scan(...any) error }) (*model.Answer, error) {
	var a model.Answer
	err := row.Scan(
		&a.ID,
		&a.Content,
		&a.IsApproved,
		&a.IsAccepted,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.UserID,
		&a.QuestionID,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (db *DB) CreateAnswer(ctx context.Context, answer *model.Answer) error {
	answer.ID = xid.New().String()
	now := time.Now().UTC()
	answer.CreatedAt = now
	answer.UpdatedAt = now
	answer.IsApproved = true

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO answers (id, content, is_approved, is_accepted,
			created_at, updated_at, user_id, question_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		answer.ID,
		answer.Content,
		answer.IsApproved,
		answer.IsAccepted,
		answer.CreatedAt,
		answer.UpdatedAt,
		answer.UserID,
		answer.QuestionID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting answer: %w", err)
	}
	return nil
}

func (db *DB) GetAnswerByID(ctx context.Context, id string) (*model.Answer, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+answerColumns+` FROM answers WHERE id = ?`, id)
	a, err := scanAnswer(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("answer", id)
		}
		return nil, fmt.Errorf("sqlite: getting answer %s: %w", id, err)
	}
	return a, nil
}

func (db *DB) ListAnswersForQuestion(ctx context.Context, questionID string, onlyApproved bool) ([]model.Answer, error) {
	query := `SELECT ` + answerColumns + ` FROM answers WHERE question_id = ?`
	if onlyApproved {
		query += ` AND is_approved = 1`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.conn.QueryContext(ctx, query, questionID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing answers for question %s: %w", questionID, err)
	}
	defer rows.Close()

	return collectAnswers(rows)
}

func (db *DB) ListAnswersByUser(ctx context.Context, userID string, onlyApproved bool, limit int) ([]model.Answer, error) {
	query := `SELECT ` + answerColumns + ` FROM answers WHERE user_id = ?`
	if onlyApproved {
		query += ` AND is_approved = 1`
	}
	query += ` ORDER BY created_at DESC LIMIT ?`

	rows, err := db.conn.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing answers for user %s: %w", userID, err)
	}
	defer rows.Close()

	return collectAnswers(rows)
}

func (db *DB) UpdateAnswer(ctx context.Context, answer *model.Answer) error {
	answer.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE answers SET content = ?, updated_at = ? WHERE id = ?`,
		answer.Content,
		answer.UpdatedAt,
		answer.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating answer %s: %w", answer.ID, err)
	}
	return requireRowAffected(result, "answer", answer.ID)
}

// DeleteAnswer removes the answer and its votes in one transaction.
func (db *DB) DeleteAnswer(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM votes WHERE answer_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting votes for answer %s: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM answers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting answer %s: %w", id, err)
	}
	if err := requireRowAffected(result, "answer", id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing answer delete: %w", err)
	}
	return nil
}

// MarkAccepted clears the accepted flag on the question's other answers
// and sets it on the target, as one transaction. A reader can never
// observe two accepted answers for the question, nor zero mid-swap.
func (db *DB) MarkAccepted(ctx context.Context, questionID, answerID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning accept transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE answers SET is_accepted = 0 WHERE question_id = ? AND is_accepted = 1`,
		questionID)
	if err != nil {
		return fmt.Errorf("sqlite: clearing accepted answers for question %s: %w", questionID, err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE answers SET is_accepted = 1 WHERE id = ? AND question_id = ?`,
		answerID, questionID)
	if err != nil {
		return fmt.Errorf("sqlite: accepting answer %s: %w", answerID, err)
	}
	if err := requireRowAffected(result, "answer", answerID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing accept: %w", err)
	}
	return nil
}

func (db *DB) ApproveAnswer(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE answers SET is_approved = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: approving answer %s: %w", id, err)
	}
	return requireRowAffected(result, "answer", id)
}

func (db *DB) CountAnswers(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM answers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting answers: %w", err)
	}
	return n, nil
}

func (db *DB) CountPendingAnswers(ctx context.Context) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM answers WHERE is_approved = 0`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting pending answers: %w", err)
	}
	return n, nil
}

func collectAnswers(rows *sql.Rows) ([]model.Answer, error) {
	var answers []model.Answer
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning answer row: %w", err)
		}
		answers = append(answers, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating answers: %w", err)
	}
	return answers, nil
}
