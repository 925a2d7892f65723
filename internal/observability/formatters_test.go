package observability

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/jonathan/jobboard/internal/types"
	"github.com/stretchr/testify/assert"
)

func scored(id, title string, score float64, reason string) types.ScoredJobRecord {
	return types.ScoredJobRecord{
		JobRecord: types.JobRecord{ID: id, Title: title, Company: "Acme", Location: "Remote"},
		Score:     score,
		Reason:    reason,
	}
}

func TestPrintRanked(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRanked("python nlp", []types.ScoredJobRecord{
		scored("i3", "Data Intern", 6.25, "Matches skills: Python, NLP"),
		scored("i1", "Frontend Intern", 0.5, ""),
	})
	output := buf.String()

	assert.Contains(t, output, "RANKED LISTINGS")
	assert.Contains(t, output, "python nlp")
	assert.Contains(t, output, "#1  Data Intern @ Acme")
	assert.Contains(t, output, "Score: 6.250")
	assert.Contains(t, output, "Matches skills: Python, NLP")
	assert.Contains(t, output, "#2  Frontend Intern @ Acme")
	assert.Less(t, strings.Index(output, "Data Intern"), strings.Index(output, "Frontend Intern"))
}

func TestPrintRanked_Truncates(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	items := make([]types.ScoredJobRecord, 0, 8)
	for i := 0; i < 8; i++ {
		items = append(items, scored(fmt.Sprintf("i%d", i), fmt.Sprintf("Intern %d", i), float64(8-i), ""))
	}
	p.PrintRanked("", items)
	output := buf.String()

	assert.Contains(t, output, "#5  Intern 4")
	assert.NotContains(t, output, "#6")
	assert.Contains(t, output, "... and 3 more listings")
}

func TestPrintRanked_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRanked("go", nil)

	assert.Contains(t, buf.String(), "No listings to rank")
}

func TestPrintAnalysis(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAnalysis(&types.ResumeAnalysis{
		Parsed: types.ParsedResume{
			Name:   "Jane Doe",
			Email:  "jane@example.com",
			Skills: []string{"react", "python"},
		},
		SuggestedSkills: []string{"docker"},
	})
	output := buf.String()

	assert.Contains(t, output, "RESUME ANALYSIS")
	assert.Contains(t, output, "Jane Doe")
	assert.Contains(t, output, "jane@example.com")
	assert.Contains(t, output, "• react")
	assert.Contains(t, output, "Consider adding:")
	assert.Contains(t, output, "• docker")
}

func TestPrintAnalysis_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAnalysis(&types.ResumeAnalysis{})
	output := buf.String()

	assert.Contains(t, output, "No known skills found")
	assert.NotContains(t, output, "Consider adding:")
}

func TestPrintAnalysis_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAnalysis(nil)

	assert.Empty(t, buf.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
