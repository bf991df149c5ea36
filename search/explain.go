package search

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/scout/ai"
	"github.com/poiesic/scout/core"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultGenerationTimeout bounds one explanation request.
const DefaultGenerationTimeout = 30 * time.Second

// maxListedQualifications is how many additional qualifications a candidate
// block lists before summarizing the rest.
const maxListedQualifications = 3

var candidateSeparator = "\n" + strings.Repeat("-", 80) + "\n\n"

const explanationPrompt = `You are a professional recruitment assistant analyzing candidate matches.

Job requirement / search query: "%s"

Here are the top matching candidates:

%s

Your task:
- For EACH candidate, explain in 4-5 sentences why they match (or don't match) the job requirement
- Focus on: relevant experience, key skills, education level, licenses/certifications, language abilities, salary...
- Use the exact candidate name as provided
- Be specific and reference actual qualifications

Output format (strictly follow):
**Candidate Name 1**
4-5 sentence explanation...

**Candidate Name 2**
4-5 sentence explanation...

(No introduction or conclusion, just the list.)
`

// Explanation is the outcome of one generation request.
// When Degraded is set Text is empty and Reason says what went wrong.
type Explanation struct {
	Text     string
	Degraded bool
	Reason   string
}

// Explainer asks a generator to justify each ranked candidate.
type Explainer struct {
	generator ai.Generator
	timeout   time.Duration
	logger    *slog.Logger
}

// ExplainerOption configures an Explainer.
type ExplainerOption func(*Explainer) error

// WithGenerationTimeout bounds each generation request. Default is DefaultGenerationTimeout.
func WithGenerationTimeout(timeout time.Duration) ExplainerOption {
	return func(e *Explainer) error {
		if timeout <= 0 {
			return fmt.Errorf("generation timeout must be positive, got %s", timeout)
		}
		e.timeout = timeout
		return nil
	}
}

// WithExplainerLogger sets a custom logger.
func WithExplainerLogger(logger *slog.Logger) ExplainerOption {
	return func(e *Explainer) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewExplainer creates an explainer over generator.
func NewExplainer(generator ai.Generator, opts ...ExplainerOption) (*Explainer, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	e := &Explainer{
		generator: generator,
		timeout:   DefaultGenerationTimeout,
		logger:    slog.Default().With("component", "explainer"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Explain generates explanations for hits. It never fails; generator
// errors and timeouts produce a degraded Explanation.
func (e *Explainer) Explain(ctx context.Context, query string, hits []core.Hit) Explanation {
	if len(hits) == 0 {
		return Explanation{}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	text, err := e.generator.Generate(ctx, BuildExplanationPrompt(query, hits))
	if err != nil {
		e.logger.Warn("explanation generation failed", "candidates", len(hits), "err", err)
		return Explanation{Degraded: true, Reason: fmt.Sprintf("%v: %v", core.ErrGenerationDegraded, err)}
	}
	if strings.TrimSpace(text) == "" {
		e.logger.Warn("explanation generation returned no text", "candidates", len(hits))
		return Explanation{Degraded: true, Reason: fmt.Sprintf("%v: empty response", core.ErrGenerationDegraded)}
	}
	return Explanation{Text: text}
}

// BuildExplanationPrompt renders the generation prompt for hits.
func BuildExplanationPrompt(query string, hits []core.Hit) string {
	var sb strings.Builder
	for _, hit := range hits {
		writeCandidate(&sb, hit)
	}
	return fmt.Sprintf(explanationPrompt, query, sb.String())
}

func writeCandidate(sb *strings.Builder, hit core.Hit) {
	c := hit.Candidate
	fmt.Fprintf(sb, "Name: %s\n", c.Name)
	fmt.Fprintf(sb, "Role: %s (%s)\n", c.Role, c.RoleEn)
	fmt.Fprintf(sb, "Industry: %s / %s\n", c.Industry, c.Category)
	if len(c.Skills) > 0 {
		fmt.Fprintf(sb, "Skills: %s\n", strings.Join(c.Skills, ", "))
	}
	fmt.Fprintf(sb, "Experience: %d years\n", c.ExperienceYears)

	var edu []string
	for _, part := range []string{c.Education.Level, c.Education.Field} {
		if part != "" {
			edu = append(edu, part)
		}
	}
	if c.Education.Institution != "" {
		edu = append(edu, "from "+c.Education.Institution)
	}
	fmt.Fprintf(sb, "Education: %s\n", strings.Join(edu, " "))

	if len(c.AdditionalEducation) > 0 {
		listed := make([]string, 0, maxListedQualifications)
		for _, ae := range c.AdditionalEducation[:min(len(c.AdditionalEducation), maxListedQualifications)] {
			kind := ae.Type
			if kind == "" {
				kind = "Degree"
			}
			listed = append(listed, kind+" in "+ae.Name)
		}
		sb.WriteString("Advanced Qualifications: " + strings.Join(listed, ", "))
		if extra := len(c.AdditionalEducation) - maxListedQualifications; extra > 0 {
			fmt.Fprintf(sb, " (+%d more)", extra)
		}
		sb.WriteString("\n")
	}

	if len(c.Licenses) > 0 {
		names := make([]string, len(c.Licenses))
		for i, l := range c.Licenses {
			names[i] = l.Name
		}
		fmt.Fprintf(sb, "Licenses: %s\n", strings.Join(names, ", "))
	}

	if len(c.Languages) > 0 {
		var langs []string
		for _, l := range c.Languages {
			switch {
			case l.Language == "":
			case l.Proficiency != "":
				langs = append(langs, fmt.Sprintf("%s (%s)", l.Language, l.Proficiency))
			default:
				langs = append(langs, l.Language)
			}
		}
		fmt.Fprintf(sb, "Languages: %s\n", strings.Join(langs, ", "))
	}

	if c.Location.City != "" {
		fmt.Fprintf(sb, "Location: %s\n", c.Location.City)
	}
	if c.Salary != 0 {
		fmt.Fprintf(sb, "Salary: €%s/month\n", formatThousands(c.Salary))
	}
	if c.Availability != "" {
		fmt.Fprintf(sb, "Availability: %s\n", c.Availability)
	}
	if c.Summary != "" {
		fmt.Fprintf(sb, "Summary: %s\n", c.Summary)
	}
	fmt.Fprintf(sb, "Match Score: %s%%\n", strconv.FormatFloat(hit.Score, 'f', -1, 64))
	sb.WriteString(candidateSeparator)
}

var numberPrinter = message.NewPrinter(language.English)

// formatThousands renders n with comma thousands separators.
func formatThousands(n int) string {
	return numberPrinter.Sprintf("%d", n)
}
