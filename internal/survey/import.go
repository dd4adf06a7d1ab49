package survey

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/americare/flourish/pkg/models"
	"github.com/qri-io/jsonschema"
)

//go:embed import_schema.json
var importSchemaJSON []byte

// ImportSection is one node of an import document. Nesting is
// unbounded.
type ImportSection struct {
	Name        string          `json:"name"`
	Questions   []string        `json:"questions,omitempty"`
	Subsections []ImportSection `json:"subsections,omitempty"`
}

// ImportDocument is the payload accepted by ImportHierarchy.
type ImportDocument struct {
	Sections []ImportSection `json:"sections"`
}

// ImportResult reports what an import created.
type ImportResult struct {
	Sections  int `json:"sections"`
	Questions int `json:"questions"`
}

// ImportHierarchy bulk-creates a section/question forest in the active
// entity from a JSON document. The document is validated against the
// embedded JSON Schema before any row is written; an invalid document
// is rejected whole.
func (s *Service) ImportHierarchy(ctx context.Context, raw []byte) (*ImportResult, error) {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(importSchemaJSON, rs); err != nil {
		return nil, fmt.Errorf("load import schema: %w", err)
	}

	keyErrs, err := rs.ValidateBytes(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("import document is not valid JSON: %v: %w", err, ErrInvalidState)
	}
	if len(keyErrs) > 0 {
		msgs := make([]string, 0, len(keyErrs))
		for _, ke := range keyErrs {
			msgs = append(msgs, ke.Error())
		}
		return nil, fmt.Errorf("import document rejected: %s: %w", strings.Join(msgs, "; "), ErrInvalidState)
	}

	var doc ImportDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode import document: %w", err)
	}

	active, err := s.ActiveEntity(ctx)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{}
	for _, sec := range doc.Sections {
		if err := s.importSection(ctx, active.ID, nil, sec, res); err != nil {
			return nil, err
		}
	}

	s.logger.Info("imported survey hierarchy", "year", active.Year, "sections", res.Sections, "questions", res.Questions)
	return res, nil
}

func (s *Service) importSection(ctx context.Context, entityID int64, parentID *int64, sec ImportSection, res *ImportResult) error {
	id, err := s.store.CreateSection(ctx, &models.Section{
		Name:            sec.Name,
		ParentSectionID: parentID,
		SurveyEntityID:  entityID,
	})
	if err != nil {
		return fmt.Errorf("import section %q: %w", sec.Name, err)
	}
	res.Sections++

	for _, text := range sec.Questions {
		if _, err := s.store.CreateQuestion(ctx, &models.Question{
			Text:           text,
			SectionID:      id,
			SurveyEntityID: entityID,
		}); err != nil {
			return fmt.Errorf("import question under %q: %w", sec.Name, err)
		}
		res.Questions++
	}

	for _, child := range sec.Subsections {
		if err := s.importSection(ctx, entityID, &id, child, res); err != nil {
			return err
		}
	}
	return nil
}
