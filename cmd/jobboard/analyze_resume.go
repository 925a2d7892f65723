package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/jobboard/internal/observability"
	"github.com/jonathan/jobboard/internal/resume"
	"github.com/spf13/cobra"
)

var analyzeResumeCmd = &cobra.Command{
	Use:   "analyze-resume FILE",
	Short: "Extract name, email and skills from a resume document",
	Long:  "Read a resume (.pdf .docx .doc .odt .rtf .html .txt), extract its fields and suggest skills to add.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyzeResume,
}

func init() {
	rootCmd.AddCommand(analyzeResumeCmd)
}

func runAnalyzeResume(cmd *cobra.Command, args []string) error {
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open resume: %w", err)
	}
	defer f.Close()

	text, err := resume.ReadDocument(path, f)
	if err != nil {
		return err
	}

	extractor, err := resume.NewExtractor()
	if err != nil {
		return fmt.Errorf("failed to create extractor: %w", err)
	}
	analysis := extractor.Extract(text)

	if v.GetBool("json") {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintAnalysis(&analysis)
	return nil
}
