package repository

import (
	"context"
	"errors"

	"github.com/americare/flourish/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
//
// Lookups return (nil, nil) when the row does not exist; callers decide
// whether absence is an error.

// ErrDuplicate wraps unique-constraint violations (duplicate user
// email, duplicate entity year). Match with errors.Is.
var ErrDuplicate = errors.New("duplicate")

type SurveyEntityRepo interface {
	CreateEntity(ctx context.Context, e *models.SurveyEntity) (int64, error)
	GetEntityByID(ctx context.Context, id int64) (*models.SurveyEntity, error)
	GetEntityByYear(ctx context.Context, year int) (*models.SurveyEntity, error)
	// GetActiveEntity returns the active entity with the highest year.
	// Ordering by year is the defensive tie-break for the (unenforced)
	// single-active invariant.
	GetActiveEntity(ctx context.Context) (*models.SurveyEntity, error)
	ListEntities(ctx context.Context) ([]models.SurveyEntity, error)
	UpdateEntityStatus(ctx context.Context, id int64, status string) error
}

type SectionRepo interface {
	CreateSection(ctx context.Context, s *models.Section) (int64, error)
	GetSectionByID(ctx context.Context, id int64) (*models.Section, error)
	ListSectionsByEntity(ctx context.Context, entityID int64) ([]models.Section, error)
	UpdateSectionName(ctx context.Context, id int64, name string) error
	// DeleteSectionTree removes the section, its descendant sections,
	// their questions and those questions' responses in one transaction.
	DeleteSectionTree(ctx context.Context, id int64) error
}

type QuestionRepo interface {
	CreateQuestion(ctx context.Context, q *models.Question) (int64, error)
	GetQuestionByID(ctx context.Context, id int64) (*models.Question, error)
	ListQuestionsByEntity(ctx context.Context, entityID int64) ([]models.Question, error)
	CountQuestionsByEntity(ctx context.Context, entityID int64) (int64, error)
	UpdateQuestionText(ctx context.Context, id int64, text string) error
	// DeleteQuestionCascade removes the question and its responses in one
	// transaction.
	DeleteQuestionCascade(ctx context.Context, id int64) error
}

type ResponseRepo interface {
	ListResponsesByUserEntity(ctx context.Context, userID, entityID int64) ([]models.Response, error)
	ListResponsesByEntity(ctx context.Context, entityID int64) ([]models.ResponseWithUser, error)
	// SaveResponseBatch applies all inserts and updates in one transaction.
	SaveResponseBatch(ctx context.Context, inserts []models.Response, updates []models.Response) error
	// CountDistinctAnswered counts distinct questions the user answered
	// with non-blank text within the entity.
	CountDistinctAnswered(ctx context.Context, userID, entityID int64) (int64, error)
	// ClearEntityResponses deletes every response of the entity and
	// resets its status rows to incomplete, in one transaction.
	ClearEntityResponses(ctx context.Context, entityID int64) error
}

type StatusRepo interface {
	GetStatus(ctx context.Context, userID, entityID int64) (*models.UserSurveyStatus, error)
	UpsertStatus(ctx context.Context, userID, entityID int64, completed bool) error
}

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, id int64, role string) error
	// SetUserSurveyCompleted writes the cached completion flag on the
	// user row. The flag mirrors the active entity's status row and is
	// only trusted inside the reconciler.
	SetUserSurveyCompleted(ctx context.Context, id int64, completed bool) error
}
