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

var _ repository.QuestionRepository = (*DB)(nil)

const questionColumns = `id, title, content, views, is_approved,
	created_at, updated_at, user_id, category_id`

func scanQuestion(row interface{ Scan(...any) error }) (*model.Question, error) {
	var q model.Question
	err := row.Scan(
		&q.ID,
		&q.Title,
		&q.Content,
		&q.Views,
		&q.IsApproved,
		&q.CreatedAt,
		&q.UpdatedAt,
		&q.UserID,
		&q.CategoryID,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (db *DB) CreateQuestion(ctx context.Context, question *model.Question) error {
	question.ID = xid.New().String()
	now := time.Now().UTC()
	question.CreatedAt = now
	question.UpdatedAt = now
	question.IsApproved = true

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO questions (id, title, content, views, is_approved,
			created_at, updated_at, user_id, category_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		question.ID,
		question.Title,
		question.Content,
		question.Views,
		question.IsApproved,
		question.CreatedAt,
		question.UpdatedAt,
		question.UserID,
		question.CategoryID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting question: %w", err)
	}
	return nil
}

func (db *DB) GetQuestionByID(ctx context.Context, id string) (*model.Question, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ?`, id)
	q, err := scanQuestion(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("question", id)
		}
		return nil, fmt.Errorf("sqlite: getting question %s: %w", id, err)
	}
	return q, nil
}

// ListQuestions returns questions newest-first. The search filter does a
// substring match against title or content, mirroring the front-page
// search box.
func (db *DB) ListQuestions(ctx context.Context, filter repository.QuestionFilter) ([]model.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE 1=1`
	var args []any

	if filter.OnlyApproved {
		query += ` AND is_approved = 1`
	}
	if filter.Search != "" {
		query += ` AND (title LIKE ? OR content LIKE ?)`
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	if filter.CategoryID != "" {
		query += ` AND category_id = ?`
		args = append(args, filter.CategoryID)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing questions: %w", err)
	}
	defer rows.Close()

	return collectQuestions(rows, limit)
}

func (db *DB) ListQuestionsByUser(ctx context.Context, userID string, onlyApproved bool, limit int) ([]model.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE user_id = ?`
	if onlyApproved {
		query += ` AND is_approved = 1`
	}
	query += ` ORDER BY created_at DESC LIMIT ?`

	rows, err := db.conn.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing questions for user %s: %w", userID, err)
	}
	defer rows.Close()

	return collectQuestions(rows, limit)
}

func (db *DB) UpdateQuestion(ctx context.Context, question *model.Question) error {
	question.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE questions SET title = ?, content = ?, category_id = ?, updated_at = ?
		 WHERE id = ?`,
		question.Title,
		question.Content,
		question.CategoryID,
		question.UpdatedAt,
		question.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating question %s: %w", question.ID, err)
	}
	return requireRowAffected(result, "question", question.ID)
}

// DeleteQuestion cascades through answers, votes, and tag links in one
// transaction. SQLite foreign keys here have no ON DELETE clause, so the
// cascade is explicit, children first.
func (db *DB) DeleteQuestion(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning delete transaction: %w", err)
	}
	defer tx.Rollback()

	steps := []struct {
		desc  string
		query string
	}{
		{"deleting answer votes", `DELETE FROM votes WHERE answer_id IN
			(SELECT id FROM answers WHERE question_id = ?)`},
		{"deleting question votes", `DELETE FROM votes WHERE question_id = ?`},
		{"deleting answers", `DELETE FROM answers WHERE question_id = ?`},
		{"deleting tag links", `DELETE FROM question_tags WHERE question_id = ?`},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.query, id); err != nil {
			return fmt.Errorf("sqlite: %s for question %s: %w", step.desc, id, err)
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting question %s: %w", id, err)
	}
	if err := requireRowAffected(result, "question", id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing question delete: %w", err)
	}
	return nil
}

func (db *DB) IncrementViews(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE questions SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: incrementing views for question %s: %w", id, err)
	}
	return requireRowAffected(result, "question", id)
}

func (db *DB) ApproveQuestion(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE questions SET is_approved = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: approving question %s: %w", id, err)
	}
	return requireRowAffected(result, "question", id)
}

func (db *DB) CountQuestions(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting questions: %w", err)
	}
	return n, nil
}

func (db *DB) CountPendingQuestions(ctx context.Context) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM questions WHERE is_approved = 0`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting pending questions: %w", err)
	}
	return n, nil
}

func (db *DB) ListRecentQuestions(ctx context.Context, limit int) ([]model.Question, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+questionColumns+` FROM questions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing recent questions: %w", err)
	}
	defer rows.Close()

	return collectQuestions(rows, limit)
}

func collectQuestions(rows *sql.Rows, capacity int) ([]model.Question, error) {
	questions := make([]model.Question, 0, capacity)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning question row: %w", err)
		}
		questions = append(questions, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating questions: %w", err)
	}
	return questions, nil
}

// requireRowAffected turns a zero-row UPDATE/DELETE into a NotFound error.
func requireRowAffected(result sql.Result, resource, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
