package models

// Domain models matching the database schema in db/migrations/0001_init.sql

// Survey entity status values. Exactly one entity is expected to be
// active at a time; the invariant is enforced by the lifecycle code,
// not by the schema.
const (
	EntityStatusArchived = "archived"
	EntityStatusActive   = "active"
)

// User roles, least privilege first.
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

// SurveyEntity is one yearly instance of the survey. Year is unique.
type SurveyEntity struct {
	ID      int64  `json:"id" db:"id"`
	Year    int    `json:"year" db:"year"`
	Status  string `json:"status" db:"status"`
	Created int64  `json:"created" db:"created"`
}

// Section is a node in the section forest of one survey entity.
// ParentSectionID is nil for root sections. A parent, when present,
// must belong to the same survey entity.
type Section struct {
	ID              int64  `json:"id" db:"id"`
	Name            string `json:"name" db:"name"`
	ParentSectionID *int64 `json:"parent_section_id,omitempty" db:"parent_section_id"`
	SurveyEntityID  int64  `json:"survey_entity_id" db:"survey_entity_id"`
}

// Question belongs to one section. SurveyEntityID duplicates the
// section's entity id and is always copied from the section on insert.
type Question struct {
	ID             int64  `json:"id" db:"id"`
	Text           string `json:"text" db:"text"`
	SectionID      int64  `json:"section_id" db:"section_id"`
	SurveyEntityID int64  `json:"survey_entity_id" db:"survey_entity_id"`
}

// Response is one user's answer to one question. At most one row per
// (user, question) within an entity, kept by find-or-update logic.
type Response struct {
	ID             int64  `json:"id" db:"id"`
	Answer         string `json:"answer" db:"answer"`
	QuestionID     int64  `json:"question_id" db:"question_id"`
	UserID         int64  `json:"user_id" db:"user_id"`
	SurveyEntityID int64  `json:"survey_entity_id" db:"survey_entity_id"`
}

// ResponseWithUser is a response joined with the answering user, used
// by the aggregated review screen.
type ResponseWithUser struct {
	Response
	UserFullName string `json:"user_full_name" db:"user_full_name"`
	UserEmail    string `json:"user_email" db:"user_email"`
}

// UserSurveyStatus is the per (user, entity) completion row, unique by
// DB index. Created lazily when completion is first recorded.
type UserSurveyStatus struct {
	ID             int64 `json:"id" db:"id"`
	UserID         int64 `json:"user_id" db:"user_id"`
	SurveyEntityID int64 `json:"survey_entity_id" db:"survey_entity_id"`
	IsCompleted    bool  `json:"is_completed" db:"is_completed"`
	Updated        int64 `json:"updated" db:"updated"`
}

// User is an account. IsSurveyCompleted caches the completion status
// for the currently active entity; user_survey_statuses is the source
// of truth and the flag can drift when status rows are mutated outside
// the reconciler (the backup-and-clear operation does exactly that).
// Derive, don't trust, this flag outside the reconciler.
type User struct {
	ID                int64  `json:"id" db:"id"`
	Email             string `json:"email" db:"email"`
	FullName          string `json:"full_name" db:"full_name"`
	Role              string `json:"role" db:"role"`
	IsSurveyCompleted bool   `json:"is_survey_completed" db:"is_survey_completed"`
	Created           int64  `json:"created" db:"created"`
	PasswordHash      string `json:"-" db:"password_hash"`
}
