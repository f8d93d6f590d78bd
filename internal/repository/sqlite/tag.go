package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/xid"
	"github.com/sakif/stackit/internal/apperror"
	"github.com/sakif/stackit/internal/model"
	"github.com/sakif/stackit/internal/repository"
)

var _ repository.TagRepository = (*DB)(nil)

// FindOrCreateTag returns the tag with the given name, creating it on
// first use. Tag names are globally unique.
func (db *DB) FindOrCreateTag(ctx context.Context, name string) (*model.Tag, error) {
	var tag model.Tag
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name FROM tags WHERE name = ?`, name,
	).Scan(&tag.ID, &tag.Name)
	if err == nil {
		return &tag, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("sqlite: looking up tag %q: %w", name, err)
	}

	tag = model.Tag{ID: xid.New().String(), Name: name}
	if _, err := db.conn.ExecContext(ctx,
		`INSERT INTO tags (id, name) VALUES (?, ?)`, tag.ID, tag.Name); err != nil {
		return nil, fmt.Errorf("sqlite: inserting tag %q: %w", name, err)
	}
	return &tag, nil
}

// ListQuestionTags returns the question's join rows with the tag name
// denormalized in, ordered by insertion (xid ids sort by creation time).
func (db *DB) ListQuestionTags(ctx context.Context, questionID string) ([]model.QuestionTag, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT qt.id, qt.question_id, qt.tag_id, t.name
		 FROM question_tags qt
		 JOIN tags t ON t.id = qt.tag_id
		 WHERE qt.question_id = ?
		 ORDER BY qt.id`,
		questionID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tags for question %s: %w", questionID, err)
	}
	defer rows.Close()

	var links []model.QuestionTag
	for rows.Next() {
		var qt model.QuestionTag
		if err := rows.Scan(&qt.ID, &qt.QuestionID, &qt.TagID, &qt.TagName); err != nil {
			return nil, fmt.Errorf("sqlite: scanning question tag row: %w", err)
		}
		links = append(links, qt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating question tags: %w", err)
	}
	return links, nil
}

func (db *DB) LinkTag(ctx context.Context, questionID, tagID string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO question_tags (id, question_id, tag_id) VALUES (?, ?, ?)`,
		xid.New().String(), questionID, tagID)
	if err != nil {
		return fmt.Errorf("sqlite: linking tag %s to question %s: %w", tagID, questionID, err)
	}
	return nil
}

func (db *DB) UnlinkTag(ctx context.Context, questionTagID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM question_tags WHERE id = ?`, questionTagID)
	if err != nil {
		return fmt.Errorf("sqlite: unlinking question tag %s: %w", questionTagID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("question tag", questionTagID)
	}
	return nil
}
