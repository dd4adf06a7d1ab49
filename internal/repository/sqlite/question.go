package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/americare/flourish/pkg/models"
)

func (r *SQLiteRepo) CreateQuestion(ctx context.Context, q *models.Question) (int64, error) {
	if q == nil {
		return 0, fmt.Errorf("question is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO questions (text, section_id, survey_entity_id) VALUES (?, ?, ?)`, q.Text, q.SectionID, q.SurveyEntityID)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetQuestionByID(ctx context.Context, id int64) (*models.Question, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, text, section_id, survey_entity_id FROM questions WHERE id = ?`, id)
	var q models.Question
	if err := row.Scan(&q.ID, &q.Text, &q.SectionID, &q.SurveyEntityID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &q, nil
}

func (r *SQLiteRepo) ListQuestionsByEntity(ctx context.Context, entityID int64) ([]models.Question, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, text, section_id, survey_entity_id FROM questions WHERE survey_entity_id = ? ORDER BY id`, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.SectionID, &q.SurveyEntityID); err != nil {
			return nil, err
		}

		out = append(out, q)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) CountQuestionsByEntity(ctx context.Context, entityID int64) (int64, error) {
	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM questions WHERE survey_entity_id = ?`, entityID)
	var cnt int64
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *SQLiteRepo) UpdateQuestionText(ctx context.Context, id int64, text string) error {
	_, err := r.conn.Exec(ctx, `UPDATE questions SET text = ? WHERE id = ?`, text, id)
	return err
}

func (r *SQLiteRepo) DeleteQuestionCascade(ctx context.Context, id int64) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM responses WHERE question_id = ?`, id); err != nil {
		return fmt.Errorf("delete question responses: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete question: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}
