package indexer

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/poiesic/scout/core"
	"github.com/poiesic/scout/storage"
)

// Document is one record ready for embedding.
type Document struct {
	ID      core.ID
	Text    string
	Payload map[string]any
}

// LoadCandidates decodes a JSON array of candidate profiles.
func LoadCandidates(r io.Reader) ([]core.Candidate, error) {
	var candidates []core.Candidate
	if err := json.NewDecoder(r).Decode(&candidates); err != nil {
		return nil, fmt.Errorf("%w: candidates: %w", ErrInvalidInput, err)
	}
	return candidates, nil
}

// LoadStandards decodes a JSON array of professional standards.
func LoadStandards(r io.Reader) ([]core.Standard, error) {
	var standards []core.Standard
	if err := json.NewDecoder(r).Decode(&standards); err != nil {
		return nil, fmt.Errorf("%w: standards: %w", ErrInvalidInput, err)
	}
	return standards, nil
}

// CandidatePassage builds the text embedded for a candidate.
// Empty fields are skipped and the rest joined with single spaces.
func CandidatePassage(c *core.Candidate) string {
	parts := []string{
		c.Name,
		c.Industry,
		c.Category,
		c.Role,
		c.RoleEn,
		strings.Join(c.Skills, " "),
		strconv.Itoa(c.ExperienceYears),
		c.Education.Level + " " + c.Education.Field + " " + c.Education.Institution,
		c.Summary,
		c.Location.City,
		c.Location.PostalCode,
	}
	for _, lic := range c.Licenses {
		parts = append(parts, lic.Name)
	}
	for _, lang := range c.Languages {
		parts = append(parts, lang.Language)
	}
	return joinNonEmpty(parts)
}

// StandardPassage builds the text embedded for a professional standard.
func StandardPassage(s *core.Standard) string {
	parts := []string{
		s.Industry,
		s.IndustryEn,
		s.RoleFi,
		s.RoleEn,
		s.MinEducation,
		s.MinEducationEn,
		s.IssuingAuthority,
		s.ApplicableTES,
		s.ApplicableTESEn,
	}
	for _, lic := range s.MandatoryLicenses {
		parts = append(parts, lic.Name, lic.NameEn)
	}
	return joinNonEmpty(parts)
}

func joinNonEmpty(parts []string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// CandidateDocuments converts candidates into documents.
// The point ID derives from the candidate id, or from the passage when
// the candidate has none.
func CandidateDocuments(candidates []core.Candidate) ([]Document, error) {
	docs := make([]Document, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		c.Normalize()

		text := CandidatePassage(c)
		key := c.ID
		if key == "" {
			key = text
		}
		payload, err := storage.ToPayload(c)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		docs = append(docs, Document{ID: core.IDFromContent(key), Text: text, Payload: payload})
	}
	return docs, nil
}

// StandardDocuments converts professional standards into documents.
func StandardDocuments(standards []core.Standard) ([]Document, error) {
	docs := make([]Document, 0, len(standards))
	for i := range standards {
		s := &standards[i]
		text := StandardPassage(s)
		payload, err := storage.ToPayload(s)
		if err != nil {
			return nil, fmt.Errorf("standard %d: %w", i, err)
		}
		docs = append(docs, Document{ID: core.IDFromContent("standard:" + text), Text: text, Payload: payload})
	}
	return docs, nil
}
