// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jonathan/jobboard/internal/types"
)

const (
	// boxWidth is the outer width of formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer renders human-readable boxes for CLI output.
// Colors are dropped automatically when out is not a terminal.
type Printer struct {
	out   io.Writer
	title lipgloss.Style
	box   lipgloss.Style
	label lipgloss.Style
	muted lipgloss.Style
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:   out,
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1).
			Width(boxWidth - 2),
		label: r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		muted: r.NewStyle().Foreground(lipgloss.Color("7")),
	}
}

// printBox prints a bordered box with a title line and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	body := p.title.Render(title)
	if content != "" {
		body += "\n\n" + content
	}
	fmt.Fprintln(p.out, p.box.Render(body))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// PrintRanked outputs the top ranked listings with scores and match reasons.
func (p *Printer) PrintRanked(query string, items []types.ScoredJobRecord) {
	var sb strings.Builder
	if query != "" {
		sb.WriteString(p.label.Render("Query:") + " " + query + "\n\n")
	}
	if len(items) == 0 {
		sb.WriteString(p.muted.Render("No listings to rank"))
		p.printBox("RANKED LISTINGS", sb.String())
		return
	}

	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		it := items[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, truncate(it.Title+" @ "+it.Company, 45)))
		sb.WriteString(fmt.Sprintf("    Score: %.3f", it.Score))
		if it.Location != "" {
			sb.WriteString("  " + p.muted.Render(it.Location))
		}
		sb.WriteString("\n")
		if it.Reason != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", truncate(it.Reason, 50)))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more listings", len(items)-maxItemsToShow))
	}

	p.printBox("RANKED LISTINGS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAnalysis outputs the fields pulled out of a resume.
func (p *Printer) PrintAnalysis(analysis *types.ResumeAnalysis) {
	if analysis == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s  %s\n", p.label.Render("Name: "), orDash(analysis.Parsed.Name)))
	sb.WriteString(fmt.Sprintf("%s  %s\n", p.label.Render("Email:"), orDash(analysis.Parsed.Email)))
	sb.WriteString("\n")

	if len(analysis.Parsed.Skills) > 0 {
		sb.WriteString("Skills found:\n")
		for _, s := range analysis.Parsed.Skills {
			sb.WriteString(fmt.Sprintf("  • %s\n", s))
		}
	} else {
		sb.WriteString(p.muted.Render("No known skills found") + "\n")
	}

	if len(analysis.SuggestedSkills) > 0 {
		sb.WriteString("\nConsider adding:\n")
		for _, s := range analysis.SuggestedSkills {
			sb.WriteString(fmt.Sprintf("  • %s\n", s))
		}
	}

	p.printBox("RESUME ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
