package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/americare/flourish/pkg/models"
)

func (r *SQLiteRepo) CreateSection(ctx context.Context, s *models.Section) (int64, error) {
	if s == nil {
		return 0, fmt.Errorf("section is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO sections (name, parent_section_id, survey_entity_id) VALUES (?, ?, ?)`, s.Name, s.ParentSectionID, s.SurveyEntityID)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetSectionByID(ctx context.Context, id int64) (*models.Section, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, name, parent_section_id, survey_entity_id FROM sections WHERE id = ?`, id)
	var s models.Section
	var parent sql.NullInt64
	if err := row.Scan(&s.ID, &s.Name, &parent, &s.SurveyEntityID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	if parent.Valid {
		s.ParentSectionID = &parent.Int64
	}

	return &s, nil
}

func (r *SQLiteRepo) ListSectionsByEntity(ctx context.Context, entityID int64) ([]models.Section, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, name, parent_section_id, survey_entity_id FROM sections WHERE survey_entity_id = ? ORDER BY id`, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Section
	for rows.Next() {
		var s models.Section
		var parent sql.NullInt64
		if err := rows.Scan(&s.ID, &s.Name, &parent, &s.SurveyEntityID); err != nil {
			return nil, err
		}
		if parent.Valid {
			s.ParentSectionID = &parent.Int64
		}

		out = append(out, s)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateSectionName(ctx context.Context, id int64, name string) error {
	_, err := r.conn.Exec(ctx, `UPDATE sections SET name = ? WHERE id = ?`, name, id)
	return err
}

// sectionTreeCTE selects the ids of a section and all of its
// descendants. Depth is unbounded in the model even though observed
// data is two levels deep.
const sectionTreeCTE = `WITH RECURSIVE tree(id) AS (
	SELECT id FROM sections WHERE id = ?
	UNION ALL
	SELECT s.id FROM sections s JOIN tree t ON s.parent_section_id = t.id
)`

// DeleteSectionTree removes the subtree rooted at id: responses of the
// subtree's questions first, then the questions, then the sections.
func (r *SQLiteRepo) DeleteSectionTree(ctx context.Context, id int64) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, sectionTreeCTE+` DELETE FROM responses WHERE question_id IN (SELECT q.id FROM questions q WHERE q.section_id IN (SELECT id FROM tree))`, id); err != nil {
		return fmt.Errorf("delete subtree responses: %w", err)
	}

	if _, err := tx.ExecContext(ctx, sectionTreeCTE+` DELETE FROM questions WHERE section_id IN (SELECT id FROM tree)`, id); err != nil {
		return fmt.Errorf("delete subtree questions: %w", err)
	}

	if _, err := tx.ExecContext(ctx, sectionTreeCTE+` DELETE FROM sections WHERE id IN (SELECT id FROM tree)`, id); err != nil {
		return fmt.Errorf("delete subtree sections: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}
