package survey

import (
	"context"
	"fmt"
	"strings"

	"github.com/americare/flourish/pkg/models"
)

// SaveUserResponses reconciles a batch of answers against the user's
// stored responses for the active entity. Blank answers are skipped and
// never overwrite an existing one; question ids that do not belong to
// the active entity (stale ids from a prior entity) are skipped
// silently. The surviving edits are committed as one batch.
func (s *Service) SaveUserResponses(ctx context.Context, userID int64, answers map[int64]string) error {
	active, err := s.ActiveEntity(ctx)
	if err != nil {
		return err
	}

	existing, err := s.store.ListResponsesByUserEntity(ctx, userID, active.ID)
	if err != nil {
		return fmt.Errorf("list user responses: %w", err)
	}
	byQuestion := make(map[int64]models.Response, len(existing))
	for _, resp := range existing {
		byQuestion[resp.QuestionID] = resp
	}

	questions, err := s.store.ListQuestionsByEntity(ctx, active.ID)
	if err != nil {
		return fmt.Errorf("list entity questions: %w", err)
	}
	valid := make(map[int64]struct{}, len(questions))
	for _, q := range questions {
		valid[q.ID] = struct{}{}
	}

	var inserts, updates []models.Response
	for questionID, text := range answers {
		if strings.TrimSpace(text) == "" {
			continue
		}
		if _, ok := valid[questionID]; !ok {
			continue
		}

		if prev, ok := byQuestion[questionID]; ok {
			prev.Answer = text
			updates = append(updates, prev)
		} else {
			inserts = append(inserts, models.Response{
				Answer:         text,
				QuestionID:     questionID,
				UserID:         userID,
				SurveyEntityID: active.ID,
			})
		}
	}

	return s.store.SaveResponseBatch(ctx, inserts, updates)
}

// UserResponses returns the user's answers for the active entity keyed
// by question id.
func (s *Service) UserResponses(ctx context.Context, userID int64) (map[int64]string, error) {
	active, err := s.ActiveEntity(ctx)
	if err != nil {
		return nil, err
	}

	responses, err := s.store.ListResponsesByUserEntity(ctx, userID, active.ID)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]string, len(responses))
	for _, resp := range responses {
		out[resp.QuestionID] = resp.Answer
	}
	return out, nil
}

// CompleteSurvey marks the survey complete for the user once every
// question of the active entity has a non-blank answer. An entity with
// zero questions can never be completed. On success the status row is
// upserted and the user's cached flag set; on failure nothing is
// mutated.
func (s *Service) CompleteSurvey(ctx context.Context, userID int64) error {
	active, err := s.ActiveEntity(ctx)
	if err != nil {
		return err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	total, err := s.store.CountQuestionsByEntity(ctx, active.ID)
	if err != nil {
		return fmt.Errorf("count questions: %w", err)
	}
	answered, err := s.store.CountDistinctAnswered(ctx, userID, active.ID)
	if err != nil {
		return fmt.Errorf("count answered: %w", err)
	}

	if total == 0 {
		return fmt.Errorf("survey year %d has no questions: %w", active.Year, ErrInvalidState)
	}
	if answered < total {
		return fmt.Errorf("answered %d of %d questions: %w", answered, total, ErrInvalidState)
	}

	if err := s.store.UpsertStatus(ctx, userID, active.ID, true); err != nil {
		return fmt.Errorf("upsert status: %w", err)
	}
	if err := s.store.SetUserSurveyCompleted(ctx, userID, true); err != nil {
		return fmt.Errorf("set user completion flag: %w", err)
	}

	s.logger.Info("survey completed", "user_id", userID, "year", active.Year)
	return nil
}

// IsCompleted reads the status row for (user, active entity). An absent
// row means not completed; no row is created by reading.
func (s *Service) IsCompleted(ctx context.Context, userID int64) (bool, error) {
	active, err := s.ActiveEntity(ctx)
	if err != nil {
		return false, err
	}

	status, err := s.store.GetStatus(ctx, userID, active.ID)
	if err != nil {
		return false, err
	}
	if status == nil {
		return false, nil
	}
	return status.IsCompleted, nil
}
