package survey_test

import (
	"context"
	"errors"
	"testing"

	"github.com/americare/flourish/internal/survey"
	"github.com/americare/flourish/pkg/models"
)

func TestSaveUserResponses_BlankNeverOverwrites(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	entityID := createEntity(t, repo, 2030, models.EntityStatusActive)
	userID := createUser(t, repo, "ana@example.com")

	secID, _ := repo.CreateSection(ctx, &models.Section{Name: "General", SurveyEntityID: entityID})
	q1, _ := repo.CreateQuestion(ctx, &models.Question{Text: "Q1", SectionID: secID, SurveyEntityID: entityID})
	q2, _ := repo.CreateQuestion(ctx, &models.Question{Text: "Q2", SectionID: secID, SurveyEntityID: entityID})

	if err := svc.SaveUserResponses(ctx, userID, map[int64]string{q1: "first", q2: "keep me"}); err != nil {
		t.Fatalf("SaveUserResponses error: %v", err)
	}

	// blank for q2 must leave the stored answer alone, whitespace counts
	// as blank too
	if err := svc.SaveUserResponses(ctx, userID, map[int64]string{q1: "updated", q2: "   "}); err != nil {
		t.Fatalf("SaveUserResponses error: %v", err)
	}

	got, err := svc.UserResponses(ctx, userID)
	if err != nil {
		t.Fatalf("UserResponses error: %v", err)
	}
	if got[q1] != "updated" {
		t.Fatalf("expected q1 updated, got %q", got[q1])
	}
	if got[q2] != "keep me" {
		t.Fatalf("blank submission must not overwrite, got %q", got[q2])
	}
}

func TestSaveUserResponses_BlankNeverPersists(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	entityID := createEntity(t, repo, 2030, models.EntityStatusActive)
	userID := createUser(t, repo, "ana@example.com")

	secID, _ := repo.CreateSection(ctx, &models.Section{Name: "General", SurveyEntityID: entityID})
	q1, _ := repo.CreateQuestion(ctx, &models.Question{Text: "Q1", SectionID: secID, SurveyEntityID: entityID})

	if err := svc.SaveUserResponses(ctx, userID, map[int64]string{q1: ""}); err != nil {
		t.Fatalf("SaveUserResponses error: %v", err)
	}

	rows, err := repo.ListResponsesByUserEntity(ctx, userID, entityID)
	if err != nil {
		t.Fatalf("ListResponsesByUserEntity error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("blank answers must never create rows, got %#v", rows)
	}
}

func TestSaveUserResponses_SkipsStaleQuestionIDs(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	entityID := createEntity(t, repo, 2030, models.EntityStatusActive)
	userID := createUser(t, repo, "ana@example.com")

	secID, _ := repo.CreateSection(ctx, &models.Section{Name: "General", SurveyEntityID: entityID})
	q1, _ := repo.CreateQuestion(ctx, &models.Question{Text: "Q1", SectionID: secID, SurveyEntityID: entityID})

	// 9999 does not belong to the active entity; the valid answer still
	// goes through
	if err := svc.SaveUserResponses(ctx, userID, map[int64]string{q1: "valid", 9999: "stale"}); err != nil {
		t.Fatalf("SaveUserResponses error: %v", err)
	}

	got, err := svc.UserResponses(ctx, userID)
	if err != nil {
		t.Fatalf("UserResponses error: %v", err)
	}
	if len(got) != 1 || got[q1] != "valid" {
		t.Fatalf("expected only the valid answer, got %#v", got)
	}
}

func TestCompleteSurvey_ZeroQuestionsNeverCompletable(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	createEntity(t, repo, 2030, models.EntityStatusActive)
	userID := createUser(t, repo, "ana@example.com")

	err := svc.CompleteSurvey(ctx, userID)
	if !errors.Is(err, survey.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	done, err := svc.IsCompleted(ctx, userID)
	if err != nil {
		t.Fatalf("IsCompleted error: %v", err)
	}
	if done {
		t.Fatal("zero-question survey must never read as completed")
	}
}

func TestCompleteSurvey_RequiresEveryQuestionAnswered(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	entityID := createEntity(t, repo, 2030, models.EntityStatusActive)
	userID := createUser(t, repo, "ana@example.com")

	secID, _ := repo.CreateSection(ctx, &models.Section{Name: "General", SurveyEntityID: entityID})
	q1, _ := repo.CreateQuestion(ctx, &models.Question{Text: "Q1", SectionID: secID, SurveyEntityID: entityID})
	q2, _ := repo.CreateQuestion(ctx, &models.Question{Text: "Q2", SectionID: secID, SurveyEntityID: entityID})

	if err := svc.SaveUserResponses(ctx, userID, map[int64]string{q1: "only one"}); err != nil {
		t.Fatalf("SaveUserResponses error: %v", err)
	}
	if err := svc.CompleteSurvey(ctx, userID); !errors.Is(err, survey.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState with unanswered questions, got %v", err)
	}

	if err := svc.SaveUserResponses(ctx, userID, map[int64]string{q2: "both now"}); err != nil {
		t.Fatalf("SaveUserResponses error: %v", err)
	}
	if err := svc.CompleteSurvey(ctx, userID); err != nil {
		t.Fatalf("CompleteSurvey error: %v", err)
	}

	done, err := svc.IsCompleted(ctx, userID)
	if err != nil {
		t.Fatalf("IsCompleted error: %v", err)
	}
	if !done {
		t.Fatal("expected completed status after all questions answered")
	}

	// completion also refreshes the cached flag on the user row
	u, err := repo.GetUserByID(ctx, userID)
	if err != nil {
		t.Fatalf("GetUserByID error: %v", err)
	}
	if !u.IsSurveyCompleted {
		t.Fatal("expected user cached completion flag to be set")
	}
}

func TestCompleteSurvey_UnknownUser(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	entityID := createEntity(t, repo, 2030, models.EntityStatusActive)
	secID, _ := repo.CreateSection(ctx, &models.Section{Name: "General", SurveyEntityID: entityID})
	repo.CreateQuestion(ctx, &models.Question{Text: "Q1", SectionID: secID, SurveyEntityID: entityID})

	if err := svc.CompleteSurvey(ctx, 404); !errors.Is(err, survey.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIsCompleted_DefaultsToFalse(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	createEntity(t, repo, 2030, models.EntityStatusActive)
	userID := createUser(t, repo, "ana@example.com")

	done, err := svc.IsCompleted(ctx, userID)
	if err != nil {
		t.Fatalf("IsCompleted error: %v", err)
	}
	if done {
		t.Fatal("user without a status row must read as not completed")
	}
}
