package sqlite

import (
	"context"
	"database/sql"

	"github.com/americare/flourish/pkg/models"
)

func (r *SQLiteRepo) GetStatus(ctx context.Context, userID, entityID int64) (*models.UserSurveyStatus, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, user_id, survey_entity_id, is_completed, updated FROM user_survey_statuses WHERE user_id = ? AND survey_entity_id = ?`, userID, entityID)
	var s models.UserSurveyStatus
	var completed int
	if err := row.Scan(&s.ID, &s.UserID, &s.SurveyEntityID, &completed, &s.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	s.IsCompleted = completed != 0
	return &s, nil
}

// UpsertStatus relies on the UNIQUE(user_id, survey_entity_id) index.
func (r *SQLiteRepo) UpsertStatus(ctx context.Context, userID, entityID int64, completed bool) error {
	c := 0
	if completed {
		c = 1
	}
	_, err := r.conn.Exec(ctx, `INSERT INTO user_survey_statuses (user_id, survey_entity_id, is_completed, updated) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, survey_entity_id) DO UPDATE SET is_completed=excluded.is_completed, updated=excluded.updated`, userID, entityID, c, now())
	return err
}
