package survey

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ClearResponsesWithBackup bulk-deletes every response of the active
// entity and resets its status rows to incomplete, but only after a
// full copy of the database file has been durably written to the backup
// directory. The cached completion flag on user rows is left as-is; it
// drifts until the next completion writes it.
func (s *Service) ClearResponsesWithBackup(ctx context.Context) (string, error) {
	active, err := s.ActiveEntity(ctx)
	if err != nil {
		return "", err
	}

	backupPath, err := s.backupDatabase()
	if err != nil {
		return "", fmt.Errorf("backup database: %w", err)
	}

	if err := s.store.ClearEntityResponses(ctx, active.ID); err != nil {
		return "", fmt.Errorf("clear responses for entity %d: %w", active.ID, err)
	}

	s.logger.Info("cleared survey responses", "year", active.Year, "backup", backupPath)
	return backupPath, nil
}

func (s *Service) backupDatabase() (string, error) {
	if s.dbPath == "" {
		return "", fmt.Errorf("database path not configured")
	}

	src, err := os.Open(s.dbPath)
	if err != nil {
		return "", fmt.Errorf("open database file: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	base := filepath.Base(s.dbPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	stamp := time.Now().Format("20060102-150405")
	backupPath := filepath.Join(s.backupDir, fmt.Sprintf("%s-backup-%s.db", name, stamp))

	dst, err := os.Create(backupPath)
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("copy database file: %w", err)
	}
	// the delete must not proceed unless the copy is on disk
	if err := dst.Sync(); err != nil {
		return "", fmt.Errorf("sync backup file: %w", err)
	}

	return backupPath, nil
}
