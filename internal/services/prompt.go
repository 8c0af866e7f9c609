package services

import (
	"fmt"

	"hireny/job-board/internal/models"
)

// BuildEvaluationPrompt renders the instruction sent to the model for one
// résumé. Job fields and résumé text are embedded verbatim.
func BuildEvaluationPrompt(job *models.Job, resumeText string) string {
	return fmt.Sprintf(`You are an expert HR recruiter. Evaluate this candidate's resume against the job requirements.

**Job Details:**
- Title: %s
- Location: %s
- Description: %s
- Requirements: %s

**Resume Content:**
%s

**Instructions:**
Analyze the resume and provide:
1. A score from 1-10 (where 10 is a perfect match)
2. Brief, honest feedback (2-3 sentences)

Consider:
- How well the candidate's skills match the listed requirements
- Relevant experience and its depth
- Gaps or missing qualifications

Respond ONLY with valid JSON in this exact format:
{
  "score": <number between 1-10>,
  "feedback": "<your 2-3 sentence feedback>"
}`,
		job.Title, job.Location, job.Description, job.Requirements, resumeText)
}

// DiagnosticPrompt is the canned prompt used by the backend connectivity check.
func DiagnosticPrompt(provider string) string {
	return fmt.Sprintf("Say %q in a friendly way.", providerDisplayName(provider)+" AI is working!")
}

func providerDisplayName(provider string) string {
	switch provider {
	case "openrouter":
		return "OpenRouter"
	case "gemini":
		return "Gemini"
	}
	return provider
}
