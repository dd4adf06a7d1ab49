package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/americare/flourish/pkg/models"
	"github.com/americare/flourish/pkg/repository"
)

func (r *SQLiteRepo) CreateEntity(ctx context.Context, e *models.SurveyEntity) (int64, error) {
	if e == nil {
		return 0, fmt.Errorf("survey entity is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO survey_entities (year, status, created) VALUES (?, ?, ?)`, e.Year, e.Status, now())
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("entity for year %d: %w", e.Year, repository.ErrDuplicate)
		}
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetEntityByID(ctx context.Context, id int64) (*models.SurveyEntity, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, year, status, created FROM survey_entities WHERE id = ?`, id)
	return scanEntity(row)
}

func (r *SQLiteRepo) GetEntityByYear(ctx context.Context, year int) (*models.SurveyEntity, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, year, status, created FROM survey_entities WHERE year = ?`, year)
	return scanEntity(row)
}

// GetActiveEntity picks the most recent year when more than one row is
// flagged active. The schema does not enforce a single active entity.
func (r *SQLiteRepo) GetActiveEntity(ctx context.Context) (*models.SurveyEntity, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, year, status, created FROM survey_entities WHERE status = ? ORDER BY year DESC LIMIT 1`, models.EntityStatusActive)
	return scanEntity(row)
}

func (r *SQLiteRepo) ListEntities(ctx context.Context) ([]models.SurveyEntity, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, year, status, created FROM survey_entities ORDER BY year DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SurveyEntity
	for rows.Next() {
		var e models.SurveyEntity
		if err := rows.Scan(&e.ID, &e.Year, &e.Status, &e.Created); err != nil {
			return nil, err
		}

		out = append(out, e)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateEntityStatus(ctx context.Context, id int64, status string) error {
	_, err := r.conn.Exec(ctx, `UPDATE survey_entities SET status = ? WHERE id = ?`, status, id)
	return err
}

func scanEntity(row *sql.Row) (*models.SurveyEntity, error) {
	var e models.SurveyEntity
	if err := row.Scan(&e.ID, &e.Year, &e.Status, &e.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &e, nil
}
