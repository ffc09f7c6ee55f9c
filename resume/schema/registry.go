package schema

import "resume-builder/resume/model"

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

func str() *Shape        { return &Shape{Kind: KindString} }
func nonEmpty() *Shape   { return &Shape{Kind: KindString, MinLength: 1} }
func password() *Shape   { return &Shape{Kind: KindString, MinLength: 1, MaxBytes: MaxPasswordBytes} }
func boolean() *Shape    { return &Shape{Kind: KindBool} }
func integer() *Shape    { return &Shape{Kind: KindInteger} }
func timestamp() *Shape  { return &Shape{Kind: KindString, Format: FormatDateTime} }
func stringList() *Shape { return ArrayOf("strings", str()) }

func required(name string, s *Shape) Field { return Field{Name: name, Shape: s, Required: true} }
func optional(name string, s *Shape) Field { return Field{Name: name, Shape: s} }

func withDefault(name string, s *Shape, def any) Field {
	return Field{Name: name, Shape: s, Default: def}
}

// endDateUnlessCurrent requires endDate whenever current is false.
func endDateUnlessCurrent(obj map[string]any, at Path) []Violation {
	current, _ := obj["current"].(bool)
	if current {
		return nil
	}
	if _, ok := obj["endDate"]; ok {
		return nil
	}
	return []Violation{{Path: string(at.Key("endDate")), Reason: "required when current is false"}}
}

var PersonalInfo = &Shape{
	Name:    "PersonalInfo",
	Kind:    KindObject,
	Unknown: Reject,
	Fields: []Field{
		required("fullName", str()),
		required("email", str()),
		required("phone", str()),
		required("bio", str()),
		optional("linkedin", str()),
		optional("github", str()),
		optional("location", str()),
	},
}

var Experience = &Shape{
	Name:    "Experience",
	Kind:    KindObject,
	Unknown: Reject,
	Fields: []Field{
		required("role", str()),
		required("company", str()),
		required("startDate", str()),
		optional("endDate", str()),
		withDefault("current", boolean(), false),
		required("description", str()),
	},
	Rules: []Rule{endDateUnlessCurrent},
}

var Education = &Shape{
	Name:    "Education",
	Kind:    KindObject,
	Unknown: Reject,
	Fields: []Field{
		required("degree", str()),
		required("school", str()),
		required("startDate", str()),
		optional("endDate", str()),
	},
}

var Project = &Shape{
	Name:    "Project",
	Kind:    KindObject,
	Unknown: Reject,
	Fields: []Field{
		required("name", str()),
		required("description", str()),
		withDefault("techStack", stringList(), []any{}),
		optional("link", str()),
	},
}

func contentFields(require bool) []Field {
	pick := required
	if !require {
		pick = optional
	}
	fields := []Field{
		pick("personalInfo", PersonalInfo),
		pick("experience", ArrayOf("experience", Experience)),
		pick("education", ArrayOf("education", Education)),
		pick("skills", stringList()),
	}
	if require {
		return append(fields, withDefault("projects", ArrayOf("projects", Project), []any{}))
	}
	return append(fields, optional("projects", ArrayOf("projects", Project)))
}

// ResumeContent is the structured resume body. Unknown keys are rejected.
var ResumeContent = &Shape{
	Name:    "ResumeContent",
	Kind:    KindObject,
	Unknown: Reject,
	Fields:  contentFields(true),
}

// ContentPatch is ResumeContent with every section optional.
var ContentPatch = &Shape{
	Name:    "ContentPatch",
	Kind:    KindObject,
	Unknown: Reject,
	Fields:  contentFields(false),
}

// User is the public account view. Any extra key, a password hash included, is rejected.
var User = &Shape{
	Name:    "User",
	Kind:    KindObject,
	Unknown: Reject,
	Fields: []Field{
		required("id", integer()),
		required("username", str()),
		required("name", str()),
	},
}

// UserOrNull is the current-identity response.
var UserOrNull = Nullable(User)

var Resume = &Shape{
	Name:    "Resume",
	Kind:    KindObject,
	Unknown: Reject,
	Fields: []Field{
		required("id", integer()),
		required("userId", integer()),
		required("title", str()),
		required("content", ResumeContent),
		required("isAiGenerated", boolean()),
		required("createdAt", timestamp()),
		required("updatedAt", timestamp()),
	},
}

var Resumes = ArrayOf("Resumes", Resume)

// NewUser is the registration envelope.
var NewUser = &Shape{
	Name: "NewUser",
	Kind: KindObject,
	Fields: []Field{
		required("username", nonEmpty()),
		required("password", password()),
		required("name", nonEmpty()),
	},
}

var Credentials = &Shape{
	Name: "Credentials",
	Kind: KindObject,
	Fields: []Field{
		required("username", nonEmpty()),
		required("password", password()),
	},
}

// NewResume strips unknown envelope keys so a caller-supplied userId or id never reaches storage.
var NewResume = &Shape{
	Name: "NewResume",
	Kind: KindObject,
	Fields: []Field{
		required("title", str()),
		required("content", ResumeContent),
		withDefault("isAiGenerated", boolean(), false),
	},
}

var PartialResume = &Shape{
	Name: "PartialResume",
	Kind: KindObject,
	Fields: []Field{
		optional("title", str()),
		optional("content", ContentPatch),
		optional("isAiGenerated", boolean()),
	},
}

var GenerationRequest = &Shape{
	Name: "GenerationRequest",
	Kind: KindObject,
	Fields: []Field{
		required("jobRole", nonEmpty()),
		required("experienceLevel", &Shape{
			Kind: KindString,
			Enum: []string{string(model.LevelFresher), string(model.LevelExperienced)},
		}),
		optional("skills", str()),
		optional("currentEducation", str()),
		optional("projectsContext", str()),
	},
}

// ErrorResponse is the uniform error envelope: {"error":{"code","message","details?"}}.
var ErrorResponse = &Shape{
	Name:    "ErrorResponse",
	Kind:    KindObject,
	Unknown: Reject,
	Fields: []Field{
		required("error", &Shape{
			Name:    "ErrorBody",
			Kind:    KindObject,
			Unknown: Reject,
			Fields: []Field{
				required("code", nonEmpty()),
				required("message", str()),
				optional("details", &Shape{Kind: KindAny}),
			},
		}),
	},
}
