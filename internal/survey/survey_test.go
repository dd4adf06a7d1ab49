package survey_test

import (
	"context"
	"path/filepath"
	"testing"

	dbfs "github.com/americare/flourish/db"
	dbpkg "github.com/americare/flourish/internal/db"
	sqlite "github.com/americare/flourish/internal/repository/sqlite"
	"github.com/americare/flourish/internal/survey"
	"github.com/americare/flourish/pkg/models"
)

// setupService builds a Service over a real sqlite store in a temp
// directory, so lifecycle, clone and reconciliation behavior is tested
// against the actual SQL.
func setupService(t *testing.T) (*survey.Service, *sqlite.SQLiteRepo) {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "flourish.db")

	d, err := dbpkg.New(ctx, dbPath)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	repo := sqlite.New(d, nil)
	svc := survey.New(repo, dbPath, filepath.Join(dir, "backups"), nil)
	return svc, repo
}

func createEntity(t *testing.T, repo *sqlite.SQLiteRepo, year int, status string) int64 {
	t.Helper()
	id, err := repo.CreateEntity(context.Background(), &models.SurveyEntity{Year: year, Status: status})
	if err != nil {
		t.Fatalf("CreateEntity(%d) error: %v", year, err)
	}
	return id
}

func createUser(t *testing.T, repo *sqlite.SQLiteRepo, email string) int64 {
	t.Helper()
	id, err := repo.CreateUser(context.Background(), &models.User{Email: email, FullName: email})
	if err != nil {
		t.Fatalf("CreateUser(%s) error: %v", email, err)
	}
	return id
}
