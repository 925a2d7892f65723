package types

// ParsedResume is the best-effort structure pulled out of raw resume text.
// Education and Experience are always present and currently always empty.
type ParsedResume struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Skills     []string `json:"skills"`
	Education  []string `json:"education"`
	Experience []string `json:"experience"`
}

// ResumeAnalysis is the response of the resume analyzer.
type ResumeAnalysis struct {
	Parsed          ParsedResume `json:"parsed"`
	SuggestedSkills []string     `json:"suggestedSkills"`
}

// AnalyzeResumeRequest is the body of POST /api/resume-analyze.
type AnalyzeResumeRequest struct {
	Text string `json:"text"`
}
