// Package survey owns the yearly survey lifecycle, the hierarchy clone
// algorithm and the response/completion reconciliation rules. Every
// operation re-resolves the active entity within its own call; nothing
// is cached across requests.
package survey

import (
	"errors"
	"log/slog"

	"github.com/americare/flourish/pkg/repository"
)

// Lookup failures inside the active scope surface as ErrNotFound;
// rejected preconditions (completing an empty survey) as
// ErrInvalidState. Duplicate unique keys bubble up from the store as
// repository.ErrDuplicate; ErrConflict aliases it so callers of this
// package match one sentinel set.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = repository.ErrDuplicate
)

// Store is the persistence surface the service needs. The sqlite
// repository satisfies it with one struct.
type Store interface {
	repository.SurveyEntityRepo
	repository.SectionRepo
	repository.QuestionRepo
	repository.ResponseRepo
	repository.StatusRepo
	repository.UserRepo
}

type Service struct {
	store     Store
	logger    *slog.Logger
	dbPath    string
	backupDir string
}

// New creates a Service. dbPath and backupDir are only used by the
// backup-and-clear operation; they may be empty in deployments that
// never call it.
func New(store Store, dbPath, backupDir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger, dbPath: dbPath, backupDir: backupDir}
}
