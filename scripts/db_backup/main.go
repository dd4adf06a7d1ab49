package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/americare/flourish/internal/config"
)

// Copies the database file into the configured backup directory using
// the same timestamped naming the in-service backup produces, so both
// kinds of backup land in one place.
func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	src, err := os.Open(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}
	defer src.Close()

	if err := os.MkdirAll(cfg.BackupDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}

	base := filepath.Base(cfg.DatabasePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	stamp := time.Now().Format("20060102-150405")
	backupPath := filepath.Join(cfg.BackupDir, fmt.Sprintf("%s-backup-%s.db", name, stamp))

	dst, err := os.Create(backupPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}
	if err := dst.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database backup written to %s\n", backupPath)
}
