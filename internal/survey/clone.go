package survey

import (
	"context"
	"fmt"

	"github.com/americare/flourish/pkg/models"
)

// cloneHierarchy copies the section/question forest of the source
// entity into the target entity. Sections are cloned strictly top-down
// so a child's ParentSectionID always references the already-created
// clone of its parent, never a source id. Names and question texts are
// copied verbatim; responses are not cloned. Depth is unbounded; zero
// sections is a no-op.
func (s *Service) cloneHierarchy(ctx context.Context, sourceID, targetID int64) error {
	sections, err := s.store.ListSectionsByEntity(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("list source sections: %w", err)
	}
	if len(sections) == 0 {
		return nil
	}

	questions, err := s.store.ListQuestionsByEntity(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("list source questions: %w", err)
	}

	questionsBySection := make(map[int64][]models.Question, len(sections))
	for _, q := range questions {
		questionsBySection[q.SectionID] = append(questionsBySection[q.SectionID], q)
	}

	childrenByParent := make(map[int64][]models.Section)
	var roots []models.Section
	for _, sec := range sections {
		if sec.ParentSectionID == nil {
			roots = append(roots, sec)
			continue
		}
		childrenByParent[*sec.ParentSectionID] = append(childrenByParent[*sec.ParentSectionID], sec)
	}

	// breadth-first walk carrying the old->new id map
	type pending struct {
		src       models.Section
		newParent *int64
	}

	queue := make([]pending, 0, len(sections))
	for _, root := range roots {
		queue = append(queue, pending{src: root})
	}

	idMap := make(map[int64]int64, len(sections))
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		newID, err := s.store.CreateSection(ctx, &models.Section{
			Name:            cur.src.Name,
			ParentSectionID: cur.newParent,
			SurveyEntityID:  targetID,
		})
		if err != nil {
			return fmt.Errorf("clone section %d: %w", cur.src.ID, err)
		}
		idMap[cur.src.ID] = newID

		for _, q := range questionsBySection[cur.src.ID] {
			if _, err := s.store.CreateQuestion(ctx, &models.Question{
				Text:           q.Text,
				SectionID:      newID,
				SurveyEntityID: targetID,
			}); err != nil {
				return fmt.Errorf("clone question %d: %w", q.ID, err)
			}
		}

		parentID := newID
		for _, child := range childrenByParent[cur.src.ID] {
			queue = append(queue, pending{src: child, newParent: &parentID})
		}
	}

	s.logger.Info("cloned survey hierarchy",
		"source_entity", sourceID,
		"target_entity", targetID,
		"sections", len(idMap),
		"questions", len(questions),
	)
	return nil
}
