package resume

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor(t *testing.T, opts ...Option) *Extractor {
	t.Helper()
	e, err := NewExtractor(opts...)
	require.NoError(t, err)
	return e
}

func TestExtract_NameEmailSkills(t *testing.T) {
	e := newTestExtractor(t)

	got := e.Extract("Jane Doe, jane@example.com\nSkills: React, Node")

	assert.Equal(t, "Jane Doe", got.Parsed.Name)
	assert.Equal(t, "jane@example.com", got.Parsed.Email)
	assert.Equal(t, []string{"react", "node"}, got.Parsed.Skills)
	assert.Equal(t, []string{"typescript", "testing", "docker"}, got.SuggestedSkills)
}

func TestExtract_EmptyText(t *testing.T) {
	e := newTestExtractor(t)

	got := e.Extract("")

	assert.Equal(t, "", got.Parsed.Name)
	assert.Equal(t, "", got.Parsed.Email)
	assert.NotNil(t, got.Parsed.Skills)
	assert.Empty(t, got.Parsed.Skills)
	assert.NotNil(t, got.Parsed.Education)
	assert.Empty(t, got.Parsed.Education)
	assert.NotNil(t, got.Parsed.Experience)
	assert.Empty(t, got.Parsed.Experience)
	assert.Equal(t, DefaultSuggestedSkills(), got.SuggestedSkills)
}

func TestExtract_Name(t *testing.T) {
	e := newTestExtractor(t)

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"line break first", "  John Smith  \nBengaluru, India", "John Smith"},
		{"comma first", "Priya Kumar, Chennai\nPython", "Priya Kumar"},
		{"single line", "Only A Name", "Only A Name"},
		{"leading newline", "\nJane", ""},
		{"crlf", "Ravi\r\nElectrician", "Ravi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.Extract(tt.text).Parsed.Name)
		})
	}
}

func TestExtract_Email(t *testing.T) {
	e := newTestExtractor(t)

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"first match wins", "a@b.io and c@d.org", "a@b.io"},
		{"dots and hyphens", "Mail: first.last-1@mail.my-company.co.uk today", "first.last-1@mail.my-company.co.uk"},
		{"no tld", "user@localhost", ""},
		{"single letter tld", "user@example.c", ""},
		{"none", "no contact info", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.Extract(tt.text).Parsed.Email)
		})
	}
}

func TestExtract_SkillsDedupedInFirstSeenOrder(t *testing.T) {
	e := newTestExtractor(t)

	got := e.Extract("PYTHON, Tailwind, python, NLP, React, tailwind, react")

	assert.Equal(t, []string{"python", "tailwind", "nlp", "react"}, got.Parsed.Skills)
}

func TestExtract_SuggestionsExcludePresentSkills(t *testing.T) {
	e := newTestExtractor(t, WithSkillKeywords("docker", "react"))

	got := e.Extract("Shipped Docker images for a React app")

	assert.Equal(t, []string{"docker", "react"}, got.Parsed.Skills)
	assert.Equal(t, []string{"typescript", "testing"}, got.SuggestedSkills)
}

func TestExtract_CustomKeywordsAreLiteral(t *testing.T) {
	e := newTestExtractor(t, WithSkillKeywords("c++", "node.js"), WithSuggestedSkills("Go"))

	got := e.Extract("C++ and nodexjs and Node.js")

	assert.Equal(t, []string{"c++", "node.js"}, got.Parsed.Skills)
	assert.Equal(t, []string{"go"}, got.SuggestedSkills)
}

func TestExtract_OverlappingKeywords(t *testing.T) {
	tests := []struct {
		name          string
		keywords      []string
		text          string
		wantSkills    []string
		wantSuggested []string
	}{
		{
			name:          "shorter keyword first",
			keywords:      []string{"java", "javascript"},
			text:          "Skills: JavaScript",
			wantSkills:    []string{"java", "javascript"},
			wantSuggested: []string{"docker"},
		},
		{
			name:          "longer keyword first",
			keywords:      []string{"javascript", "java"},
			text:          "Skills: JavaScript",
			wantSkills:    []string{"javascript", "java"},
			wantSuggested: []string{"docker"},
		},
		{
			name:          "adjacent keywords sharing letters",
			keywords:      []string{"python", "nlp"},
			text:          "pythonlp",
			wantSkills:    []string{"python", "nlp"},
			wantSuggested: []string{"javascript", "docker"},
		},
		{
			name:          "first occurrence decides order",
			keywords:      []string{"javascript", "java"},
			text:          "Java first, JavaScript later",
			wantSkills:    []string{"java", "javascript"},
			wantSuggested: []string{"docker"},
		},
		{
			name:          "repeated keyword in config",
			keywords:      []string{"React", "react"},
			text:          "react",
			wantSkills:    []string{"react"},
			wantSuggested: []string{"javascript", "docker"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestExtractor(t, WithSkillKeywords(tt.keywords...), WithSuggestedSkills("javascript", "docker"))

			got := e.Extract(tt.text)

			assert.Equal(t, tt.wantSkills, got.Parsed.Skills)
			assert.Equal(t, tt.wantSuggested, got.SuggestedSkills)
		})
	}
}

func TestExtract_NoKeywords(t *testing.T) {
	e := newTestExtractor(t, WithSkillKeywords())

	got := e.Extract("React Node Python")

	assert.Empty(t, got.Parsed.Skills)
	assert.Len(t, got.SuggestedSkills, 3)
}

func TestExtract_Deterministic(t *testing.T) {
	e := newTestExtractor(t)
	text := strings.Repeat("react node python ", 100) + "x@y.com"

	assert.Equal(t, e.Extract(text), e.Extract(text))
}

func TestNewExtractor_InvalidArguments(t *testing.T) {
	_, err := NewExtractor(WithSkillKeywords("react", " "))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewExtractor(WithSuggestedSkills(""))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
