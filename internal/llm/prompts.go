package llm

import _ "embed"

//go:embed prompts/resume_content_v1.txt
var resumeContentPromptV1 string

// ResumeContentPromptV1 returns the template used to generate ResumeContent JSON.
// Placeholders: {{JOB_ROLE}}, {{EXPERIENCE_LEVEL}}, {{SKILLS}}, {{EDUCATION}}, {{PROJECTS}}.
func ResumeContentPromptV1() string {
	return resumeContentPromptV1
}
