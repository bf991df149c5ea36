package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/go-crypt/x/blake2b"
)

const (
	// DefaultTopK is the result count used when a request does not set one.
	DefaultTopK = 5
	// MaxTopK is the largest result count a request may ask for.
	MaxTopK = 20
)

// ID is a numeric point identifier used by vector indexes.
// Candidate and standard records carry string identifiers; ID is derived from them.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Education describes a candidate's primary degree.
type Education struct {
	Level       string `json:"level" mapstructure:"level"`
	Field       string `json:"field" mapstructure:"field"`
	Institution string `json:"institution" mapstructure:"institution"`
}

// AdditionalEducation is a supplementary qualification (course, certificate, further degree).
type AdditionalEducation struct {
	Type        string `json:"type" mapstructure:"type"`
	Name        string `json:"name" mapstructure:"name"`
	Institution string `json:"institution,omitempty" mapstructure:"institution"`
	Year        int    `json:"year,omitempty" mapstructure:"year"`
}

// License is a professional license or certification with a native and English name.
type License struct {
	Name   string `json:"name" mapstructure:"name"`
	NameEn string `json:"name_en" mapstructure:"name_en"`
}

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64 `json:"lat" mapstructure:"lat"`
	Lon float64 `json:"lon" mapstructure:"lon"`
}

// Location is where a candidate lives. Coordinates are optional.
type Location struct {
	City        string    `json:"city" mapstructure:"city"`
	PostalCode  string    `json:"postal code" mapstructure:"postal code"`
	Coordinates *GeoPoint `json:"coordinates,omitempty" mapstructure:"coordinates"`
}

// Language is a spoken language with an optional proficiency level.
type Language struct {
	Language    string `json:"language" mapstructure:"language"`
	Proficiency string `json:"proficiency,omitempty" mapstructure:"proficiency"`
}

// Candidate is a candidate profile as stored in the candidate index.
// Every list field may be absent in a stored payload; see Normalize.
type Candidate struct {
	ID                  string                `json:"id" mapstructure:"id"`
	Name                string                `json:"name" mapstructure:"name"`
	Industry            string                `json:"industry" mapstructure:"industry"`
	Category            string                `json:"category" mapstructure:"category"`
	Role                string                `json:"role" mapstructure:"role"`
	RoleEn              string                `json:"role_en" mapstructure:"role_en"`
	Skills              []string              `json:"skills" mapstructure:"skills"`
	ExperienceYears     int                   `json:"experience_years" mapstructure:"experience_years"`
	Education           Education             `json:"education" mapstructure:"education"`
	AdditionalEducation []AdditionalEducation `json:"additional_education" mapstructure:"additional_education"`
	Licenses            []License             `json:"licenses" mapstructure:"licenses"`
	Location            Location              `json:"location" mapstructure:"location"`
	Languages           []Language            `json:"languages" mapstructure:"languages"`
	Salary              int                   `json:"salary" mapstructure:"salary"`
	Availability        string                `json:"availability" mapstructure:"availability"`
	ApplicableTES       string                `json:"applicable_tes" mapstructure:"applicable_tes"`
	Summary             string                `json:"summary" mapstructure:"summary"`
	QualificationIssues []string              `json:"qualification_issues" mapstructure:"qualification_issues"`
}

// Normalize replaces nil list fields with empty slices so that the
// candidate always serializes with a fixed shape.
func (c *Candidate) Normalize() {
	if c.Skills == nil {
		c.Skills = []string{}
	}
	if c.AdditionalEducation == nil {
		c.AdditionalEducation = []AdditionalEducation{}
	}
	if c.Licenses == nil {
		c.Licenses = []License{}
	}
	if c.Languages == nil {
		c.Languages = []Language{}
	}
	if c.QualificationIssues == nil {
		c.QualificationIssues = []string{}
	}
}

// Standard is a professional standard record for an industry.
type Standard struct {
	Industry          string    `json:"industry" mapstructure:"industry"`
	IndustryEn        string    `json:"industry_en" mapstructure:"industry_en"`
	RoleFi            string    `json:"role_fi" mapstructure:"role_fi"`
	RoleEn            string    `json:"role_en" mapstructure:"role_en"`
	MinEducation      string    `json:"min_education" mapstructure:"min_education"`
	MinEducationEn    string    `json:"min_education_en" mapstructure:"min_education_en"`
	MandatoryLicenses []License `json:"mandatory_licenses" mapstructure:"mandatory_licenses"`
	IssuingAuthority  string    `json:"issuing_authority" mapstructure:"issuing_authority"`
	ApplicableTES     string    `json:"applicable_tes" mapstructure:"applicable_tes"`
	ApplicableTESEn   string    `json:"applicable_tes_en" mapstructure:"applicable_tes_en"`
}

// IsEmpty reports whether the standard carries no enrichment data.
func (s Standard) IsEmpty() bool {
	return s.Industry == "" && s.MinEducation == "" && s.MinEducationEn == "" && len(s.MandatoryLicenses) == 0
}

// Hit is a candidate returned by one retrieval pass.
type Hit struct {
	Candidate Candidate
	Score     float64 // 0-100, weighted when a weight map was supplied
	Rank      int     // 1-based position within the pass
}

// WeightMap maps candidate IDs to multiplicative score weights.
// A missing entry means a weight of 1.0.
type WeightMap map[string]float64

// Weight returns the weight for id, or 1.0 when none is recorded.
func (w WeightMap) Weight(id string) float64 {
	if v, ok := w[id]; ok {
		return v
	}
	return 1.0
}

// SalaryRange is an inclusive monthly salary range.
type SalaryRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// SearchRequest is a candidate search as received from a caller.
type SearchRequest struct {
	Query          string       `json:"query"`
	TopK           int          `json:"top_k"`
	Industry       string       `json:"industry,omitempty"`
	SalaryRange    *SalaryRange `json:"salary_range,omitempty"`
	LocationFilter *float64     `json:"location_filter,omitempty"` // radius in km
}

// Query is a single retrieval pass against the candidate index.
type Query struct {
	Text     string
	Limit    int
	Industry string
	Salary   *SalaryRange
	RadiusKm *float64
	Weights  WeightMap
}

// RankedResult is a candidate in the final search response.
type RankedResult struct {
	Candidate
	MatchScore  float64 `json:"match_score"`
	Explanation string  `json:"explanation"`
}

// SearchResponse is the result of a candidate search.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []RankedResult `json:"results"`
}

// FeedbackType is the direction of a feedback vote.
type FeedbackType string

const (
	// FeedbackUp is a positive vote.
	FeedbackUp FeedbackType = "up"
	// FeedbackDown is a negative vote.
	FeedbackDown FeedbackType = "down"
)

// FeedbackEvent is a single vote on a candidate.
type FeedbackEvent struct {
	ID          uint64       `json:"id"`
	CandidateID string       `json:"candidate_id"`
	Type        FeedbackType `json:"feedback_type"`
	Reason      string       `json:"reason"`
	Tags        []string     `json:"auto_tags"`
	CreatedAt   time.Time    `json:"created_at"`
}

// FeedbackCounts aggregates votes for one candidate.
type FeedbackCounts struct {
	Up   int
	Down int
}

// CollectionMeta describes a vector collection held by an embedded index.
type CollectionMeta struct {
	Name       string
	VectorSize uint64
	CreatedAt  time.Time
}

// TagCount is the number of feedback events sharing an identical tag set.
type TagCount struct {
	Tags  []string `json:"tags"`
	Count int      `json:"count"`
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
