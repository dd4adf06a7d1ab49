package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	dbfs "github.com/americare/flourish/db"
	dbpkg "github.com/americare/flourish/internal/db"
	sqlite "github.com/americare/flourish/internal/repository/sqlite"
	"github.com/americare/flourish/pkg/models"
	"github.com/americare/flourish/pkg/repository"
)

func setupRepo(t *testing.T) *sqlite.SQLiteRepo {
	t.Helper()
	ctx := context.Background()

	d, err := dbpkg.New(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return sqlite.New(d, nil)
}

func mustCreateEntity(t *testing.T, repo *sqlite.SQLiteRepo, year int, status string) int64 {
	t.Helper()
	id, err := repo.CreateEntity(context.Background(), &models.SurveyEntity{Year: year, Status: status})
	if err != nil {
		t.Fatalf("CreateEntity(%d) error: %v", year, err)
	}
	return id
}

func TestEntityQueries(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	// nil entity should error
	if _, err := repo.CreateEntity(ctx, nil); err == nil {
		t.Fatalf("expected error when creating nil entity")
	}

	// empty table: lookups return nil, nil
	got, err := repo.GetActiveEntity(ctx)
	if err != nil || got != nil {
		t.Fatalf("expected nil active entity, got %#v err %v", got, err)
	}

	id2023 := mustCreateEntity(t, repo, 2023, models.EntityStatusArchived)
	id2024 := mustCreateEntity(t, repo, 2024, models.EntityStatusActive)

	byYear, err := repo.GetEntityByYear(ctx, 2023)
	if err != nil {
		t.Fatalf("GetEntityByYear error: %v", err)
	}
	if byYear == nil || byYear.ID != id2023 {
		t.Fatalf("GetEntityByYear wrong result: %#v", byYear)
	}

	active, err := repo.GetActiveEntity(ctx)
	if err != nil {
		t.Fatalf("GetActiveEntity error: %v", err)
	}
	if active == nil || active.ID != id2024 {
		t.Fatalf("GetActiveEntity wrong result: %#v", active)
	}

	// two actives: highest year wins (defensive tie-break)
	mustCreateEntity(t, repo, 2025, models.EntityStatusActive)
	active, err = repo.GetActiveEntity(ctx)
	if err != nil {
		t.Fatalf("GetActiveEntity error: %v", err)
	}
	if active == nil || active.Year != 2025 {
		t.Fatalf("expected year 2025 to win, got %#v", active)
	}

	list, err := repo.ListEntities(ctx)
	if err != nil {
		t.Fatalf("ListEntities error: %v", err)
	}
	if len(list) != 3 || list[0].Year != 2025 || list[2].Year != 2023 {
		t.Fatalf("ListEntities wrong order: %#v", list)
	}

	// year uniqueness is schema-enforced and surfaces as ErrDuplicate
	if _, err := repo.CreateEntity(ctx, &models.SurveyEntity{Year: 2024, Status: models.EntityStatusArchived}); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for repeated year, got %v", err)
	}

	if err := repo.UpdateEntityStatus(ctx, id2024, models.EntityStatusArchived); err != nil {
		t.Fatalf("UpdateEntityStatus error: %v", err)
	}
	e, err := repo.GetEntityByID(ctx, id2024)
	if err != nil || e == nil {
		t.Fatalf("GetEntityByID error: %v (%#v)", err, e)
	}
	if e.Status != models.EntityStatusArchived {
		t.Fatalf("expected archived, got %q", e.Status)
	}
}

func TestSectionAndQuestionCRUD(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	entityID := mustCreateEntity(t, repo, 2025, models.EntityStatusActive)

	if _, err := repo.CreateSection(ctx, nil); err == nil {
		t.Fatalf("expected error when creating nil section")
	}

	rootID, err := repo.CreateSection(ctx, &models.Section{Name: "Wellbeing", SurveyEntityID: entityID})
	if err != nil {
		t.Fatalf("CreateSection error: %v", err)
	}
	childID, err := repo.CreateSection(ctx, &models.Section{Name: "Workload", ParentSectionID: &rootID, SurveyEntityID: entityID})
	if err != nil {
		t.Fatalf("CreateSection child error: %v", err)
	}

	child, err := repo.GetSectionByID(ctx, childID)
	if err != nil {
		t.Fatalf("GetSectionByID error: %v", err)
	}
	if child == nil || child.ParentSectionID == nil || *child.ParentSectionID != rootID {
		t.Fatalf("child section wrong: %#v", child)
	}

	sections, err := repo.ListSectionsByEntity(ctx, entityID)
	if err != nil {
		t.Fatalf("ListSectionsByEntity error: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections got %d", len(sections))
	}

	if err := repo.UpdateSectionName(ctx, rootID, "Wellbeing 2.0"); err != nil {
		t.Fatalf("UpdateSectionName error: %v", err)
	}
	root, _ := repo.GetSectionByID(ctx, rootID)
	if root.Name != "Wellbeing 2.0" {
		t.Fatalf("rename not applied: %#v", root)
	}

	if _, err := repo.CreateQuestion(ctx, nil); err == nil {
		t.Fatalf("expected error when creating nil question")
	}

	qID, err := repo.CreateQuestion(ctx, &models.Question{Text: "How are you?", SectionID: rootID, SurveyEntityID: entityID})
	if err != nil {
		t.Fatalf("CreateQuestion error: %v", err)
	}

	q, err := repo.GetQuestionByID(ctx, qID)
	if err != nil || q == nil {
		t.Fatalf("GetQuestionByID error: %v (%#v)", err, q)
	}

	if err := repo.UpdateQuestionText(ctx, qID, "How do you feel?"); err != nil {
		t.Fatalf("UpdateQuestionText error: %v", err)
	}

	count, err := repo.CountQuestionsByEntity(ctx, entityID)
	if err != nil || count != 1 {
		t.Fatalf("CountQuestionsByEntity = %d, err %v", count, err)
	}

	qs, err := repo.ListQuestionsByEntity(ctx, entityID)
	if err != nil || len(qs) != 1 || qs[0].Text != "How do you feel?" {
		t.Fatalf("ListQuestionsByEntity wrong: %#v err %v", qs, err)
	}
}

func TestDeleteSectionTree_Cascades(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	entityID := mustCreateEntity(t, repo, 2025, models.EntityStatusActive)
	userID, err := repo.CreateUser(ctx, &models.User{Email: "dana@example.com", FullName: "Dana"})
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}

	// root -> child -> grandchild, question at every level
	rootID, _ := repo.CreateSection(ctx, &models.Section{Name: "A", SurveyEntityID: entityID})
	childID, _ := repo.CreateSection(ctx, &models.Section{Name: "B", ParentSectionID: &rootID, SurveyEntityID: entityID})
	grandID, _ := repo.CreateSection(ctx, &models.Section{Name: "C", ParentSectionID: &childID, SurveyEntityID: entityID})

	var qids []int64
	for _, sid := range []int64{rootID, childID, grandID} {
		qid, err := repo.CreateQuestion(ctx, &models.Question{Text: "q", SectionID: sid, SurveyEntityID: entityID})
		if err != nil {
			t.Fatalf("CreateQuestion error: %v", err)
		}
		qids = append(qids, qid)
	}

	var inserts []models.Response
	for _, qid := range qids {
		inserts = append(inserts, models.Response{Answer: "a", QuestionID: qid, UserID: userID, SurveyEntityID: entityID})
	}
	if err := repo.SaveResponseBatch(ctx, inserts, nil); err != nil {
		t.Fatalf("SaveResponseBatch error: %v", err)
	}

	// keep a sibling root to prove the delete is scoped
	otherID, _ := repo.CreateSection(ctx, &models.Section{Name: "other", SurveyEntityID: entityID})
	otherQ, _ := repo.CreateQuestion(ctx, &models.Question{Text: "other q", SectionID: otherID, SurveyEntityID: entityID})

	if err := repo.DeleteSectionTree(ctx, rootID); err != nil {
		t.Fatalf("DeleteSectionTree error: %v", err)
	}

	sections, _ := repo.ListSectionsByEntity(ctx, entityID)
	if len(sections) != 1 || sections[0].ID != otherID {
		t.Fatalf("expected only sibling section left, got %#v", sections)
	}

	qs, _ := repo.ListQuestionsByEntity(ctx, entityID)
	if len(qs) != 1 || qs[0].ID != otherQ {
		t.Fatalf("expected only sibling question left, got %#v", qs)
	}

	resps, _ := repo.ListResponsesByUserEntity(ctx, userID, entityID)
	if len(resps) != 0 {
		t.Fatalf("expected subtree responses deleted, got %#v", resps)
	}
}

func TestResponseBatchAndCounts(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	entityID := mustCreateEntity(t, repo, 2025, models.EntityStatusActive)
	userID, _ := repo.CreateUser(ctx, &models.User{Email: "eve@example.com", FullName: "Eve"})
	secID, _ := repo.CreateSection(ctx, &models.Section{Name: "S", SurveyEntityID: entityID})
	q1, _ := repo.CreateQuestion(ctx, &models.Question{Text: "q1", SectionID: secID, SurveyEntityID: entityID})
	q2, _ := repo.CreateQuestion(ctx, &models.Question{Text: "q2", SectionID: secID, SurveyEntityID: entityID})

	inserts := []models.Response{
		{Answer: "first", QuestionID: q1, UserID: userID, SurveyEntityID: entityID},
		{Answer: "   ", QuestionID: q2, UserID: userID, SurveyEntityID: entityID},
	}
	if err := repo.SaveResponseBatch(ctx, inserts, nil); err != nil {
		t.Fatalf("SaveResponseBatch error: %v", err)
	}

	// blank answers do not count as answered
	answered, err := repo.CountDistinctAnswered(ctx, userID, entityID)
	if err != nil {
		t.Fatalf("CountDistinctAnswered error: %v", err)
	}
	if answered != 1 {
		t.Fatalf("expected 1 answered got %d", answered)
	}

	existing, err := repo.ListResponsesByUserEntity(ctx, userID, entityID)
	if err != nil || len(existing) != 2 {
		t.Fatalf("ListResponsesByUserEntity wrong: %#v err %v", existing, err)
	}

	// update path
	var toUpdate models.Response
	for _, resp := range existing {
		if resp.QuestionID == q2 {
			toUpdate = resp
		}
	}
	toUpdate.Answer = "second"
	if err := repo.SaveResponseBatch(ctx, nil, []models.Response{toUpdate}); err != nil {
		t.Fatalf("SaveResponseBatch update error: %v", err)
	}

	answered, _ = repo.CountDistinctAnswered(ctx, userID, entityID)
	if answered != 2 {
		t.Fatalf("expected 2 answered got %d", answered)
	}

	// empty batch is a no-op
	if err := repo.SaveResponseBatch(ctx, nil, nil); err != nil {
		t.Fatalf("empty batch should not error: %v", err)
	}

	joined, err := repo.ListResponsesByEntity(ctx, entityID)
	if err != nil {
		t.Fatalf("ListResponsesByEntity error: %v", err)
	}
	if len(joined) != 2 || joined[0].UserEmail != "eve@example.com" {
		t.Fatalf("ListResponsesByEntity wrong: %#v", joined)
	}
}

func TestClearEntityResponses(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	entityID := mustCreateEntity(t, repo, 2025, models.EntityStatusActive)
	otherEntityID := mustCreateEntity(t, repo, 2024, models.EntityStatusArchived)
	userID, _ := repo.CreateUser(ctx, &models.User{Email: "finn@example.com", FullName: "Finn"})
	secID, _ := repo.CreateSection(ctx, &models.Section{Name: "S", SurveyEntityID: entityID})
	q1, _ := repo.CreateQuestion(ctx, &models.Question{Text: "q", SectionID: secID, SurveyEntityID: entityID})

	if err := repo.SaveResponseBatch(ctx, []models.Response{
		{Answer: "keep me out", QuestionID: q1, UserID: userID, SurveyEntityID: entityID},
		{Answer: "archived answer", QuestionID: q1, UserID: userID, SurveyEntityID: otherEntityID},
	}, nil); err != nil {
		t.Fatalf("SaveResponseBatch error: %v", err)
	}
	if err := repo.UpsertStatus(ctx, userID, entityID, true); err != nil {
		t.Fatalf("UpsertStatus error: %v", err)
	}

	if err := repo.ClearEntityResponses(ctx, entityID); err != nil {
		t.Fatalf("ClearEntityResponses error: %v", err)
	}

	left, _ := repo.ListResponsesByUserEntity(ctx, userID, entityID)
	if len(left) != 0 {
		t.Fatalf("expected active entity responses cleared, got %#v", left)
	}
	other, _ := repo.ListResponsesByUserEntity(ctx, userID, otherEntityID)
	if len(other) != 1 {
		t.Fatalf("expected archived entity responses untouched, got %#v", other)
	}

	status, err := repo.GetStatus(ctx, userID, entityID)
	if err != nil || status == nil {
		t.Fatalf("GetStatus error: %v (%#v)", err, status)
	}
	if status.IsCompleted {
		t.Fatalf("expected status reset to incomplete")
	}
}

func TestStatusUpsertUniquePerUserEntity(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	entityID := mustCreateEntity(t, repo, 2025, models.EntityStatusActive)
	userID, _ := repo.CreateUser(ctx, &models.User{Email: "gil@example.com", FullName: "Gil"})

	// absent row reads as nil
	status, err := repo.GetStatus(ctx, userID, entityID)
	if err != nil || status != nil {
		t.Fatalf("expected nil status, got %#v err %v", status, err)
	}

	if err := repo.UpsertStatus(ctx, userID, entityID, true); err != nil {
		t.Fatalf("UpsertStatus error: %v", err)
	}
	if err := repo.UpsertStatus(ctx, userID, entityID, false); err != nil {
		t.Fatalf("UpsertStatus second error: %v", err)
	}

	status, err = repo.GetStatus(ctx, userID, entityID)
	if err != nil || status == nil {
		t.Fatalf("GetStatus error: %v", err)
	}
	if status.IsCompleted {
		t.Fatalf("expected latest upsert to win")
	}

	// still exactly one row
	statusID := status.ID
	if err := repo.UpsertStatus(ctx, userID, entityID, true); err != nil {
		t.Fatalf("UpsertStatus third error: %v", err)
	}
	status, _ = repo.GetStatus(ctx, userID, entityID)
	if status.ID != statusID {
		t.Fatalf("expected single status row, id changed %d -> %d", statusID, status.ID)
	}
}

func TestUserCRUD(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateUser(ctx, nil); err == nil {
		t.Fatalf("expected error when creating nil user")
	}

	got, err := repo.GetUserByEmail(ctx, "nobody@example.com")
	if err != nil || got != nil {
		t.Fatalf("expected nil for unknown email, got %#v err %v", got, err)
	}

	id, err := repo.CreateUser(ctx, &models.User{Email: "Hana@Example.com", FullName: "Hana", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}

	// role defaults to employee
	u, err := repo.GetUserByID(ctx, id)
	if err != nil || u == nil {
		t.Fatalf("GetUserByID error: %v", err)
	}
	if u.Role != models.RoleEmployee {
		t.Fatalf("expected default employee role, got %q", u.Role)
	}

	// email lookup is case-insensitive
	u, err = repo.GetUserByEmail(ctx, "hana@example.com")
	if err != nil || u == nil || u.ID != id {
		t.Fatalf("GetUserByEmail case-insensitive lookup failed: %#v err %v", u, err)
	}

	// duplicate email rejected by unique index, surfaced as ErrDuplicate
	if _, err := repo.CreateUser(ctx, &models.User{Email: "Hana@Example.com"}); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for repeated email, got %v", err)
	}

	if err := repo.UpdateUserRole(ctx, id, models.RoleAdmin); err != nil {
		t.Fatalf("UpdateUserRole error: %v", err)
	}
	if err := repo.SetUserSurveyCompleted(ctx, id, true); err != nil {
		t.Fatalf("SetUserSurveyCompleted error: %v", err)
	}

	u, _ = repo.GetUserByID(ctx, id)
	if u.Role != models.RoleAdmin || !u.IsSurveyCompleted {
		t.Fatalf("updates not applied: %#v", u)
	}

	users, err := repo.ListUsers(ctx)
	if err != nil || len(users) != 1 {
		t.Fatalf("ListUsers wrong: %#v err %v", users, err)
	}
}
