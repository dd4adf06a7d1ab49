package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/americare/flourish/pkg/models"
	"github.com/americare/flourish/pkg/repository"
)

func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if u == nil {
		return 0, fmt.Errorf("user is nil")
	}

	role := u.Role
	if role == "" {
		role = models.RoleEmployee
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO users (email, full_name, role, is_survey_completed, created, password_hash) VALUES (?, ?, ?, 0, ?, ?)`, u.Email, u.FullName, role, now(), u.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("user email %q: %w", u.Email, repository.ErrDuplicate)
		}
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, email, full_name, role, is_survey_completed, created, password_hash FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *SQLiteRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, email, full_name, role, is_survey_completed, created, password_hash FROM users WHERE email = ? COLLATE NOCASE`, email)
	return scanUser(row)
}

func (r *SQLiteRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, email, full_name, role, is_survey_completed, created, password_hash FROM users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		var u models.User
		var completed int
		var pw sql.NullString
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &completed, &u.Created, &pw); err != nil {
			return nil, err
		}
		u.IsSurveyCompleted = completed != 0
		if pw.Valid {
			u.PasswordHash = pw.String
		}

		out = append(out, u)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateUserRole(ctx context.Context, id int64, role string) error {
	_, err := r.conn.Exec(ctx, `UPDATE users SET role = ? WHERE id = ?`, role, id)
	return err
}

func (r *SQLiteRepo) SetUserSurveyCompleted(ctx context.Context, id int64, completed bool) error {
	c := 0
	if completed {
		c = 1
	}
	_, err := r.conn.Exec(ctx, `UPDATE users SET is_survey_completed = ? WHERE id = ?`, c, id)
	return err
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var completed int
	var pw sql.NullString
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &completed, &u.Created, &pw); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	u.IsSurveyCompleted = completed != 0
	if pw.Valid {
		u.PasswordHash = pw.String
	}

	return &u, nil
}
