package resumes

import (
	"github.com/microcosm-cc/bluemonday"

	"resume-builder/resume/model"
)

// descriptionPolicy keeps basic formatting in free-text descriptions and drops scripts,
// event handlers and unsafe URLs.
var descriptionPolicy = bluemonday.UGCPolicy()

// SanitizeContent cleans the free-text descriptions of every experience and project entry.
func SanitizeContent(c model.ResumeContent) model.ResumeContent {
	out := c
	if c.Experience != nil {
		out.Experience = make([]model.Experience, len(c.Experience))
		for i, e := range c.Experience {
			e.Description = descriptionPolicy.Sanitize(e.Description)
			out.Experience[i] = e
		}
	}
	if c.Projects != nil {
		out.Projects = make([]model.Project, len(c.Projects))
		for i, p := range c.Projects {
			p.Description = descriptionPolicy.Sanitize(p.Description)
			out.Projects[i] = p
		}
	}
	return out
}

func sanitizePatch(p *model.ContentPatch) *model.ContentPatch {
	if p == nil {
		return nil
	}
	out := *p
	if p.Experience != nil || p.Projects != nil {
		clean := SanitizeContent(model.ResumeContent{Experience: deref(p.Experience), Projects: deref(p.Projects)})
		if p.Experience != nil {
			out.Experience = &clean.Experience
		}
		if p.Projects != nil {
			out.Projects = &clean.Projects
		}
	}
	return &out
}

func deref[T any](p *[]T) []T {
	if p == nil {
		return nil
	}
	return *p
}
