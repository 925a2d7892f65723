// Package resume extracts a best-effort summary from unstructured resume text.
//
// Extraction is deterministic keyword and pattern matching: the name is the
// first line or comma-separated segment, the email is the first address-like
// token, and skills come from a fixed keyword list.
package resume

import (
	"cmp"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/jonathan/jobboard/internal/types"
)

// ErrInvalidArgument is returned when an Extractor is configured with unusable keywords.
var ErrInvalidArgument = errors.New("invalid argument")

var emailPattern = regexp.MustCompile(`[\w.-]+@[\w.-]+\.[A-Za-z]{2,}`)

// DefaultSkillKeywords are the skills recognized in resume text.
func DefaultSkillKeywords() []string {
	return []string{"react", "node", "python", "nlp", "tailwind"}
}

// DefaultSuggestedSkills are proposed to every candidate who does not list them.
func DefaultSuggestedSkills() []string {
	return []string{"typescript", "testing", "docker"}
}

// Option configures an Extractor.
type Option func(*config)

type config struct {
	keywords   []string
	candidates []string
}

// WithSkillKeywords replaces the recognized skill keywords.
func WithSkillKeywords(keywords ...string) Option {
	return func(c *config) { c.keywords = keywords }
}

// WithSuggestedSkills replaces the suggestion candidates.
func WithSuggestedSkills(skills ...string) Option {
	return func(c *config) { c.candidates = skills }
}

// Extractor turns resume text into a ResumeAnalysis. It is immutable and safe for concurrent use.
type Extractor struct {
	skills     []skillPattern
	candidates []string
}

// skillPattern matches one keyword anywhere in the text, ignoring case.
type skillPattern struct {
	name    string
	pattern *regexp.Regexp
}

// NewExtractor builds an Extractor from the default keyword lists and opts.
func NewExtractor(opts ...Option) (*Extractor, error) {
	cfg := config{
		keywords:   DefaultSkillKeywords(),
		candidates: DefaultSuggestedSkills(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	skills := make([]skillPattern, 0, len(cfg.keywords))
	seen := make(map[string]bool, len(cfg.keywords))
	for _, k := range cfg.keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			return nil, fmt.Errorf("%w: empty skill keyword", ErrInvalidArgument)
		}
		name := strings.ToLower(k)
		if seen[name] {
			continue
		}
		seen[name] = true
		skills = append(skills, skillPattern{
			name:    name,
			pattern: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(k)),
		})
	}

	candidates := make([]string, 0, len(cfg.candidates))
	for _, c := range cfg.candidates {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			return nil, fmt.Errorf("%w: empty suggested skill", ErrInvalidArgument)
		}
		candidates = append(candidates, c)
	}

	return &Extractor{skills: skills, candidates: candidates}, nil
}

// Extract parses text. It never fails; missing fields come back empty.
func (e *Extractor) Extract(text string) types.ResumeAnalysis {
	skills := e.findSkills(text)

	parsed := types.ParsedResume{
		Name:       extractName(text),
		Email:      emailPattern.FindString(text),
		Skills:     skills,
		Education:  []string{},
		Experience: []string{},
	}

	return types.ResumeAnalysis{
		Parsed:          parsed,
		SuggestedSkills: e.suggest(skills),
	}
}

func extractName(text string) string {
	end := strings.IndexAny(text, "\n,")
	if end < 0 {
		end = len(text)
	}
	return strings.TrimSpace(text[:end])
}

// findSkills returns lower-cased keyword hits in order of first occurrence.
// Every keyword is searched on its own, so one keyword inside another
// ("java" in "javascript") does not hide either. Keywords first seen at the
// same offset keep their configured order.
func (e *Extractor) findSkills(text string) []string {
	type hit struct {
		name string
		at   int
	}
	hits := make([]hit, 0, len(e.skills))
	for _, sp := range e.skills {
		if loc := sp.pattern.FindStringIndex(text); loc != nil {
			hits = append(hits, hit{name: sp.name, at: loc[0]})
		}
	}
	slices.SortStableFunc(hits, func(a, b hit) int { return cmp.Compare(a.at, b.at) })

	found := make([]string, 0, len(hits))
	for _, h := range hits {
		found = append(found, h.name)
	}
	return found
}

func (e *Extractor) suggest(have []string) []string {
	present := make(map[string]bool, len(have))
	for _, s := range have {
		present[s] = true
	}
	out := []string{}
	for _, c := range e.candidates {
		if !present[c] {
			out = append(out, c)
		}
	}
	return out
}
