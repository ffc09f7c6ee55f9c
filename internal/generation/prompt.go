package generation

import (
	"strings"

	"resume-builder/internal/llm"
	"resume-builder/resume/model"
)

const notProvided = "Not provided"

// BuildPrompt fills the resume template with the request fields.
func BuildPrompt(req model.GenerationRequest) string {
	replacer := strings.NewReplacer(
		"{{JOB_ROLE}}", orDefault(req.JobRole),
		"{{EXPERIENCE_LEVEL}}", orDefault(string(req.ExperienceLevel)),
		"{{SKILLS}}", orDefault(req.Skills),
		"{{EDUCATION}}", orDefault(req.CurrentEducation),
		"{{PROJECTS}}", orDefault(req.ProjectsContext),
	)
	return replacer.Replace(llm.ResumeContentPromptV1())
}

func orDefault(v string) string {
	v = strings.Join(strings.Fields(v), " ")
	if v == "" {
		return notProvided
	}
	return v
}
