package model

import (
	"encoding/json"
	"time"
)

// ExperienceLevel is the seniority bucket used by generation requests.
type ExperienceLevel string

const (
	LevelFresher     ExperienceLevel = "Fresher"
	LevelExperienced ExperienceLevel = "Experienced"
)

// ResumeContent is the structured body of a resume.
type ResumeContent struct {
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Experience   []Experience `json:"experience"`
	Education    []Education  `json:"education"`
	Skills       []string     `json:"skills"`
	Projects     []Project    `json:"projects"`
}

// MarshalJSON emits empty arrays instead of null for unset sections.
func (c ResumeContent) MarshalJSON() ([]byte, error) {
	type alias ResumeContent
	out := alias(c)
	if out.Experience == nil {
		out.Experience = []Experience{}
	}
	if out.Education == nil {
		out.Education = []Education{}
	}
	if out.Skills == nil {
		out.Skills = []string{}
	}
	if out.Projects == nil {
		out.Projects = []Project{}
	}
	return json.Marshal(out)
}

// PersonalInfo captures contact and identity details.
type PersonalInfo struct {
	FullName string  `json:"fullName"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Bio      string  `json:"bio"`
	LinkedIn *string `json:"linkedin,omitempty"`
	GitHub   *string `json:"github,omitempty"`
	Location *string `json:"location,omitempty"`
}

// Experience is one employment entry. EndDate is required unless Current is set.
type Experience struct {
	Role        string  `json:"role"`
	Company     string  `json:"company"`
	StartDate   string  `json:"startDate"`
	EndDate     *string `json:"endDate,omitempty"`
	Current     bool    `json:"current"`
	Description string  `json:"description"`
}

type Education struct {
	Degree    string  `json:"degree"`
	School    string  `json:"school"`
	StartDate string  `json:"startDate"`
	EndDate   *string `json:"endDate,omitempty"`
}

type Project struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TechStack   []string `json:"techStack"`
	Link        *string  `json:"link,omitempty"`
}

// MarshalJSON emits an empty techStack instead of null.
func (p Project) MarshalJSON() ([]byte, error) {
	type alias Project
	out := alias(p)
	if out.TechStack == nil {
		out.TechStack = []string{}
	}
	return json.Marshal(out)
}

// User is the public view of an account. The password hash never leaves the users package.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// NewUser is the registration payload.
type NewUser struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Credentials is the login payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Resume is a stored resume as returned to its owner.
type Resume struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"userId"`
	Title         string        `json:"title"`
	Content       ResumeContent `json:"content"`
	IsAIGenerated bool          `json:"isAiGenerated"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// NewResume is the create payload. Ownership comes from the session, never the body.
type NewResume struct {
	Title         string        `json:"title"`
	Content       ResumeContent `json:"content"`
	IsAIGenerated bool          `json:"isAiGenerated"`
}

// PartialResume is the update payload. Nil fields are left untouched.
type PartialResume struct {
	Title         *string       `json:"title,omitempty"`
	Content       *ContentPatch `json:"content,omitempty"`
	IsAIGenerated *bool         `json:"isAiGenerated,omitempty"`
}

// ContentPatch replaces the top-level sections it carries and keeps the rest.
type ContentPatch struct {
	PersonalInfo *PersonalInfo `json:"personalInfo,omitempty"`
	Experience   *[]Experience `json:"experience,omitempty"`
	Education    *[]Education  `json:"education,omitempty"`
	Skills       *[]string     `json:"skills,omitempty"`
	Projects     *[]Project    `json:"projects,omitempty"`
}

// Apply returns base with the patched sections swapped in.
func (p ContentPatch) Apply(base ResumeContent) ResumeContent {
	out := base
	if p.PersonalInfo != nil {
		out.PersonalInfo = *p.PersonalInfo
	}
	if p.Experience != nil {
		out.Experience = *p.Experience
	}
	if p.Education != nil {
		out.Education = *p.Education
	}
	if p.Skills != nil {
		out.Skills = *p.Skills
	}
	if p.Projects != nil {
		out.Projects = *p.Projects
	}
	return out
}

// GenerationRequest asks the model for a fresh ResumeContent.
type GenerationRequest struct {
	JobRole          string          `json:"jobRole"`
	ExperienceLevel  ExperienceLevel `json:"experienceLevel"`
	Skills           string          `json:"skills,omitempty"`
	CurrentEducation string          `json:"currentEducation,omitempty"`
	ProjectsContext  string          `json:"projectsContext,omitempty"`
}
