package survey

import (
	"context"
	"fmt"

	"github.com/americare/flourish/pkg/models"
)

// QuestionNode is a question with, optionally, everyone's responses
// attached. Responses include the answering user for the review screen.
type QuestionNode struct {
	models.Question
	Responses []models.ResponseWithUser `json:"responses,omitempty"`
}

// SectionNode is a section with its questions and child sections.
type SectionNode struct {
	models.Section
	Questions   []QuestionNode `json:"questions"`
	Subsections []*SectionNode `json:"subsections"`
}

// SectionTree returns the active entity's section forest, root sections
// first, each carrying its questions. With withResponses set, every
// question also carries all users' responses (the manager/admin review
// view).
func (s *Service) SectionTree(ctx context.Context, withResponses bool) ([]*SectionNode, error) {
	active, err := s.ActiveEntity(ctx)
	if err != nil {
		return nil, err
	}

	sections, err := s.store.ListSectionsByEntity(ctx, active.ID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	questions, err := s.store.ListQuestionsByEntity(ctx, active.ID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	responsesByQuestion := map[int64][]models.ResponseWithUser{}
	if withResponses {
		responses, err := s.store.ListResponsesByEntity(ctx, active.ID)
		if err != nil {
			return nil, fmt.Errorf("list responses: %w", err)
		}
		for _, resp := range responses {
			responsesByQuestion[resp.QuestionID] = append(responsesByQuestion[resp.QuestionID], resp)
		}
	}

	nodes := make(map[int64]*SectionNode, len(sections))
	for _, sec := range sections {
		nodes[sec.ID] = &SectionNode{Section: sec, Questions: []QuestionNode{}, Subsections: []*SectionNode{}}
	}

	for _, q := range questions {
		node, ok := nodes[q.SectionID]
		if !ok {
			continue
		}
		node.Questions = append(node.Questions, QuestionNode{Question: q, Responses: responsesByQuestion[q.ID]})
	}

	var roots []*SectionNode
	for _, sec := range sections {
		node := nodes[sec.ID]
		if sec.ParentSectionID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*sec.ParentSectionID]; ok {
			parent.Subsections = append(parent.Subsections, node)
		}
	}

	if roots == nil {
		roots = []*SectionNode{}
	}
	return roots, nil
}
