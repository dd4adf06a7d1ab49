package survey

import (
	"context"
	"fmt"
	"time"

	"github.com/americare/flourish/pkg/models"
)

// ActiveEntity resolves the current active survey entity, creating one
// for the current calendar year when none exists. When (by invariant
// violation) more than one entity is active, the most recent year wins.
// The call is idempotent: without intervening mutation it keeps
// returning the same entity.
func (s *Service) ActiveEntity(ctx context.Context) (*models.SurveyEntity, error) {
	active, err := s.store.GetActiveEntity(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve active entity: %w", err)
	}
	if active != nil {
		return active, nil
	}

	year := time.Now().UTC().Year()

	// an archived entity for the current year is reactivated rather
	// than duplicated; year is unique
	existing, err := s.store.GetEntityByYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("lookup entity for year %d: %w", year, err)
	}
	if existing != nil {
		if err := s.store.UpdateEntityStatus(ctx, existing.ID, models.EntityStatusActive); err != nil {
			return nil, fmt.Errorf("activate entity %d: %w", existing.ID, err)
		}
		existing.Status = models.EntityStatusActive
		return existing, nil
	}

	id, err := s.store.CreateEntity(ctx, &models.SurveyEntity{Year: year, Status: models.EntityStatusActive})
	if err != nil {
		return nil, fmt.Errorf("create entity for year %d: %w", year, err)
	}

	s.logger.Info("created survey entity", "year", year, "id", id)

	created, err := s.store.GetEntityByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RotateToNext archives the active entity, creates the next one at the
// first unused year above it and clones the section/question hierarchy
// forward. Responses are never carried over. Cloning is not atomic
// beyond per-row writes; a failure partway leaves partial content in
// the new entity.
func (s *Service) RotateToNext(ctx context.Context) (*models.SurveyEntity, error) {
	active, err := s.ActiveEntity(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateEntityStatus(ctx, active.ID, models.EntityStatusArchived); err != nil {
		return nil, fmt.Errorf("archive entity %d: %w", active.ID, err)
	}

	// first unused year strictly greater than the archived one; manual
	// entries may occupy arbitrary years
	nextYear := active.Year + 1
	for {
		occupied, err := s.store.GetEntityByYear(ctx, nextYear)
		if err != nil {
			return nil, fmt.Errorf("lookup entity for year %d: %w", nextYear, err)
		}
		if occupied == nil {
			break
		}
		nextYear++
	}

	id, err := s.store.CreateEntity(ctx, &models.SurveyEntity{Year: nextYear, Status: models.EntityStatusActive})
	if err != nil {
		return nil, fmt.Errorf("create entity for year %d: %w", nextYear, err)
	}

	next, err := s.store.GetEntityByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cloneHierarchy(ctx, active.ID, next.ID); err != nil {
		return nil, fmt.Errorf("clone hierarchy %d -> %d: %w", active.ID, next.ID, err)
	}

	s.logger.Info("rotated survey entity", "from_year", active.Year, "to_year", nextYear)
	return next, nil
}

// SetActive archives whichever entity currently holds active status and
// activates the target. The target must exist. No content is cloned or
// modified.
func (s *Service) SetActive(ctx context.Context, entityID int64) error {
	target, err := s.store.GetEntityByID(ctx, entityID)
	if err != nil {
		return err
	}
	if target == nil {
		return fmt.Errorf("survey entity %d: %w", entityID, ErrNotFound)
	}

	current, err := s.store.GetActiveEntity(ctx)
	if err != nil {
		return err
	}
	if current != nil && current.ID != target.ID {
		if err := s.store.UpdateEntityStatus(ctx, current.ID, models.EntityStatusArchived); err != nil {
			return fmt.Errorf("archive entity %d: %w", current.ID, err)
		}
	}

	return s.store.UpdateEntityStatus(ctx, target.ID, models.EntityStatusActive)
}

// Entities lists every survey entity, most recent year first.
func (s *Service) Entities(ctx context.Context) ([]models.SurveyEntity, error) {
	return s.store.ListEntities(ctx)
}
