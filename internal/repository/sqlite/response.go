package sqlite

import (
	"context"
	"fmt"

	"github.com/americare/flourish/pkg/models"
)

func (r *SQLiteRepo) ListResponsesByUserEntity(ctx context.Context, userID, entityID int64) ([]models.Response, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, answer, question_id, user_id, survey_entity_id FROM responses WHERE user_id = ? AND survey_entity_id = ? ORDER BY id`, userID, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Response
	for rows.Next() {
		var resp models.Response
		if err := rows.Scan(&resp.ID, &resp.Answer, &resp.QuestionID, &resp.UserID, &resp.SurveyEntityID); err != nil {
			return nil, err
		}

		out = append(out, resp)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) ListResponsesByEntity(ctx context.Context, entityID int64) ([]models.ResponseWithUser, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT r.id, r.answer, r.question_id, r.user_id, r.survey_entity_id, u.full_name, u.email
		FROM responses r JOIN users u ON u.id = r.user_id
		WHERE r.survey_entity_id = ? ORDER BY r.question_id, r.user_id`, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ResponseWithUser
	for rows.Next() {
		var resp models.ResponseWithUser
		if err := rows.Scan(&resp.ID, &resp.Answer, &resp.QuestionID, &resp.UserID, &resp.SurveyEntityID, &resp.UserFullName, &resp.UserEmail); err != nil {
			return nil, err
		}

		out = append(out, resp)
	}

	return out, rows.Err()
}

// SaveResponseBatch applies a reconciled batch: inserts for questions
// the user had not answered, updates for the ones they had. One
// transaction so the batch is all-or-nothing.
func (r *SQLiteRepo) SaveResponseBatch(ctx context.Context, inserts []models.Response, updates []models.Response) error {
	if len(inserts) == 0 && len(updates) == 0 {
		return nil
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, in := range inserts {
		if _, err := tx.ExecContext(ctx, `INSERT INTO responses (answer, question_id, user_id, survey_entity_id) VALUES (?, ?, ?, ?)`, in.Answer, in.QuestionID, in.UserID, in.SurveyEntityID); err != nil {
			return fmt.Errorf("insert response: %w", err)
		}
	}

	for _, up := range updates {
		if _, err := tx.ExecContext(ctx, `UPDATE responses SET answer = ? WHERE id = ?`, up.Answer, up.ID); err != nil {
			return fmt.Errorf("update response %d: %w", up.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func (r *SQLiteRepo) CountDistinctAnswered(ctx context.Context, userID, entityID int64) (int64, error) {
	row := r.conn.QueryRow(ctx, `SELECT COUNT(DISTINCT question_id) FROM responses WHERE user_id = ? AND survey_entity_id = ? AND TRIM(answer) <> ''`, userID, entityID)
	var cnt int64
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

// ClearEntityResponses bulk-deletes the entity's responses and flips
// its status rows back to incomplete. The cached flag on users is left
// alone on purpose; see models.User.
func (r *SQLiteRepo) ClearEntityResponses(ctx context.Context, entityID int64) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM responses WHERE survey_entity_id = ?`, entityID); err != nil {
		return fmt.Errorf("delete entity responses: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE user_survey_statuses SET is_completed = 0, updated = ? WHERE survey_entity_id = ?`, now(), entityID); err != nil {
		return fmt.Errorf("reset status rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}
