package judge

import (
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"github.com/sohv/scorj/internal/profile"
)

//go:embed prompt.md
var promptTemplate string

// BuildPrompt renders the shared recruiter prompt for a judge. Both judges use
// the same prompt so their scores differ only by model, never by framing.
func BuildPrompt(resume *profile.ResumeProfile, job *profile.JobProfile, jc *Context) (string, error) {
	if resume == nil {
		return "", fmt.Errorf("resume profile is required")
	}
	if job == nil {
		return "", fmt.Errorf("job profile is required")
	}

	resumeJSON, err := json.MarshalIndent(resume, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal resume payload: %w", err)
	}

	jobJSON, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal job payload: %w", err)
	}

	structuredJSON := []byte("{}")
	var intentNotes []string
	if jc != nil {
		if jc.Structured != nil {
			structuredJSON, err = json.MarshalIndent(jc.Structured, "", "  ")
			if err != nil {
				return "", fmt.Errorf("marshal structured analysis: %w", err)
			}
		}
		intentNotes = jc.IntentNotes
	}

	notes := "No validated intent statements."
	if len(intentNotes) > 0 {
		var b strings.Builder
		for _, note := range intentNotes {
			note = strings.TrimSpace(note)
			if note == "" {
				continue
			}
			b.WriteString("- ")
			b.WriteString(note)
			b.WriteString("\n")
		}
		if b.Len() > 0 {
			notes = strings.TrimRight(b.String(), "\n")
		}
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{RESUME_JSON}}", string(resumeJSON))
	prompt = strings.ReplaceAll(prompt, "{{JOB_JSON}}", string(jobJSON))
	prompt = strings.ReplaceAll(prompt, "{{STRUCTURED_JSON}}", string(structuredJSON))
	prompt = strings.ReplaceAll(prompt, "{{INTENT_NOTES}}", notes)

	return prompt, nil
}
