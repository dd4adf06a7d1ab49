package survey

import (
	"context"
	"fmt"
	"strings"

	"github.com/americare/flourish/pkg/models"
)

// The hierarchy editor mutates sections and questions of the active
// entity only. Ids belonging to an archived entity are treated as not
// found so frozen content cannot be edited. Entity ids are stamped
// here, never taken from the caller.

// AddSection creates a section in the active entity. A parent, when
// given, must itself belong to the active entity.
func (s *Service) AddSection(ctx context.Context, name string, parentSectionID *int64) (*models.Section, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("section name is empty: %w", ErrInvalidState)
	}

	active, err := s.ActiveEntity(ctx)
	if err != nil {
		return nil, err
	}

	if parentSectionID != nil {
		parent, err := s.store.GetSectionByID(ctx, *parentSectionID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.SurveyEntityID != active.ID {
			return nil, fmt.Errorf("parent section %d: %w", *parentSectionID, ErrNotFound)
		}
	}

	sec := &models.Section{Name: name, ParentSectionID: parentSectionID, SurveyEntityID: active.ID}
	id, err := s.store.CreateSection(ctx, sec)
	if err != nil {
		return nil, err
	}
	sec.ID = id
	return sec, nil
}

func (s *Service) RenameSection(ctx context.Context, sectionID int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("section name is empty: %w", ErrInvalidState)
	}

	if _, err := s.activeSection(ctx, sectionID); err != nil {
		return err
	}
	return s.store.UpdateSectionName(ctx, sectionID, name)
}

// DeleteSection removes the section with its descendant sections, their
// questions and those questions' responses.
func (s *Service) DeleteSection(ctx context.Context, sectionID int64) error {
	if _, err := s.activeSection(ctx, sectionID); err != nil {
		return err
	}
	return s.store.DeleteSectionTree(ctx, sectionID)
}

// AddQuestion creates a question under the section, copying the
// section's entity id onto the question.
func (s *Service) AddQuestion(ctx context.Context, sectionID int64, text string) (*models.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("question text is empty: %w", ErrInvalidState)
	}

	section, err := s.activeSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	q := &models.Question{Text: text, SectionID: section.ID, SurveyEntityID: section.SurveyEntityID}
	id, err := s.store.CreateQuestion(ctx, q)
	if err != nil {
		return nil, err
	}
	q.ID = id
	return q, nil
}

func (s *Service) UpdateQuestion(ctx context.Context, questionID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("question text is empty: %w", ErrInvalidState)
	}

	if err := s.activeQuestion(ctx, questionID); err != nil {
		return err
	}
	return s.store.UpdateQuestionText(ctx, questionID, text)
}

// DeleteQuestion removes the question and its responses.
func (s *Service) DeleteQuestion(ctx context.Context, questionID int64) error {
	if err := s.activeQuestion(ctx, questionID); err != nil {
		return err
	}
	return s.store.DeleteQuestionCascade(ctx, questionID)
}

func (s *Service) activeSection(ctx context.Context, sectionID int64) (*models.Section, error) {
	active, err := s.ActiveEntity(ctx)
	if err != nil {
		return nil, err
	}

	section, err := s.store.GetSectionByID(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if section == nil || section.SurveyEntityID != active.ID {
		return nil, fmt.Errorf("section %d: %w", sectionID, ErrNotFound)
	}
	return section, nil
}

func (s *Service) activeQuestion(ctx context.Context, questionID int64) error {
	active, err := s.ActiveEntity(ctx)
	if err != nil {
		return err
	}

	question, err := s.store.GetQuestionByID(ctx, questionID)
	if err != nil {
		return err
	}
	if question == nil || question.SurveyEntityID != active.ID {
		return fmt.Errorf("question %d: %w", questionID, ErrNotFound)
	}
	return nil
}
