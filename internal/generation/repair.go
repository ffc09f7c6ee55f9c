package generation

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"resume-builder/resume/model"
	"resume-builder/resume/schema"
)

// Outcome classifies raw model output.
type Outcome string

const (
	OutcomeValid        Outcome = "valid"
	OutcomeRepaired     Outcome = "repaired"
	OutcomeUnrepairable Outcome = "unrepairable"
)

// Result is the classification of one model reply. Content is set unless the
// outcome is unrepairable, in which case Violations or Reason explain why.
type Result struct {
	Outcome    Outcome
	Content    model.ResumeContent
	Repairs    []string
	Reason     string
	Violations []schema.Violation
}

// field kinds used by the coercion tables
const (
	reqString = iota
	optString
	flag
	list
)

type fieldSpec struct {
	name string
	kind int
}

var (
	personalInfoFields = []fieldSpec{
		{"fullName", reqString}, {"email", reqString}, {"phone", reqString}, {"bio", reqString},
		{"linkedin", optString}, {"github", optString}, {"location", optString},
	}
	experienceFields = []fieldSpec{
		{"role", reqString}, {"company", reqString}, {"startDate", reqString},
		{"endDate", optString}, {"current", flag}, {"description", reqString},
	}
	educationFields = []fieldSpec{
		{"degree", reqString}, {"school", reqString}, {"startDate", reqString}, {"endDate", optString},
	}
	projectFields = []fieldSpec{
		{"name", reqString}, {"description", reqString}, {"link", optString}, {"techStack", list},
	}
	sectionKeys = []string{"personalInfo", "experience", "education", "skills", "projects"}
)

// Classify parses raw model text into ResumeContent. Output the schema already
// accepts is valid; output that coercion can bring into shape is repaired.
func Classify(raw string) Result {
	r := &repairer{}
	text := r.unwrap(raw)

	parsed, err := schema.Parse([]byte(text))
	if err != nil {
		return Result{Outcome: OutcomeUnrepairable, Reason: "model output is not JSON"}
	}
	if r.changed() == 0 {
		if content, err := schema.Convert[model.ResumeContent](schema.ResumeContent, parsed); err == nil {
			return Result{Outcome: OutcomeValid, Content: content}
		}
	}

	obj, ok := parsed.(map[string]any)
	if !ok {
		return Result{Outcome: OutcomeUnrepairable, Reason: "model output is not an object"}
	}
	if !hasAnySection(obj) {
		return Result{Outcome: OutcomeUnrepairable, Reason: "model output has no resume sections"}
	}

	fixed := r.content(obj)
	content, err := schema.Convert[model.ResumeContent](schema.ResumeContent, fixed)
	if err != nil {
		res := Result{Outcome: OutcomeUnrepairable, Reason: "model output cannot be repaired", Repairs: r.repairs}
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			res.Violations = verr.Violations
		}
		return res
	}
	return Result{Outcome: OutcomeRepaired, Content: content, Repairs: r.repairs}
}

type repairer struct {
	repairs []string
	seen    map[string]bool
}

func (r *repairer) note(kind string) {
	if r.seen == nil {
		r.seen = make(map[string]bool)
	}
	if !r.seen[kind] {
		r.seen[kind] = true
		r.repairs = append(r.repairs, kind)
	}
}

func (r *repairer) changed() int { return len(r.repairs) }

// unwrap strips markdown fences and prose around the outermost JSON object.
func (r *repairer) unwrap(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			text = text[nl+1:]
		}
		text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
		r.note("strip_code_fence")
	}
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start > 0 || (end >= 0 && end < len(text)-1) {
		if start >= 0 && end > start {
			text = text[start : end+1]
			r.note("strip_surrounding_text")
		}
	}
	return text
}

func hasAnySection(obj map[string]any) bool {
	for _, key := range sectionKeys {
		if v, ok := obj[key]; ok && v != nil {
			return true
		}
	}
	return false
}

func (r *repairer) content(obj map[string]any) map[string]any {
	for key := range obj {
		if !contains(sectionKeys, key) {
			r.note("drop_unknown_key")
		}
	}
	out := map[string]any{}

	info, ok := obj["personalInfo"].(map[string]any)
	if !ok {
		r.note("supply_personal_info")
		info = map[string]any{}
	}
	out["personalInfo"] = r.object(info, personalInfoFields)
	out["experience"] = r.objects("experience", obj["experience"], experienceFields)
	out["education"] = r.objects("education", obj["education"], educationFields)
	out["skills"] = r.strings("skills", obj["skills"])
	out["projects"] = r.objects("projects", obj["projects"], projectFields)

	for _, entry := range out["experience"].([]any) {
		exp := entry.(map[string]any)
		r.settleEndDate(exp)
	}
	return out
}

// settleEndDate keeps the endDate/current rule satisfiable. A textual "Present"
// marks the entry as current; a closed entry with no end date gets an empty one.
func (r *repairer) settleEndDate(exp map[string]any) {
	if end, ok := exp["endDate"].(string); ok && isOngoing(end) {
		delete(exp, "endDate")
		exp["current"] = true
		r.note("present_to_current")
	}
	if exp["current"] == true {
		return
	}
	if _, ok := exp["endDate"]; !ok {
		exp["endDate"] = ""
		r.note("fill_end_date")
	}
}

func isOngoing(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "present", "current", "now", "ongoing":
		return true
	}
	return false
}

func (r *repairer) objects(section string, v any, fields []fieldSpec) []any {
	switch items := v.(type) {
	case nil:
		r.note("supply_empty_" + section)
		return []any{}
	case map[string]any:
		r.note("wrap_single_" + section)
		return []any{r.object(items, fields)}
	case []any:
		out := make([]any, 0, len(items))
		for _, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				r.note("drop_invalid_" + section)
				continue
			}
			out = append(out, r.object(obj, fields))
		}
		return out
	default:
		r.note("supply_empty_" + section)
		return []any{}
	}
}

func (r *repairer) object(in map[string]any, fields []fieldSpec) map[string]any {
	out := make(map[string]any, len(fields))
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.name] = true
		v, present := in[f.name]
		if v == nil && present {
			r.note("null_to_absent")
		}
		switch f.kind {
		case reqString:
			s, ok := r.text(v)
			if !ok {
				r.note("fill_missing_string")
			}
			out[f.name] = s
		case optString:
			if s, ok := r.text(v); ok && s != "" {
				out[f.name] = s
			} else if present && v != nil {
				r.note("drop_empty_optional")
			}
		case flag:
			out[f.name] = r.flag(v)
		case list:
			out[f.name] = r.strings(f.name, v)
		}
	}
	for key := range in {
		if !known[key] {
			r.note("drop_unknown_key")
		}
	}
	return out
}

// text coerces scalars to a trimmed string.
func (r *repairer) text(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s != t {
			r.note("trim_whitespace")
		}
		return s, true
	case json.Number:
		r.note("stringify_scalar")
		return t.String(), true
	case bool:
		r.note("stringify_scalar")
		return strconv.FormatBool(t), true
	}
	return "", false
}

func (r *repairer) flag(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		r.note("coerce_boolean")
		b, _ := strconv.ParseBool(strings.TrimSpace(t))
		return b
	case nil:
		r.note("default_current")
	}
	return false
}

// strings coerces a list of scalars, or one comma-separated string, into trimmed non-empty strings.
func (r *repairer) strings(name string, v any) []any {
	out := []any{}
	switch t := v.(type) {
	case nil:
		r.note("supply_empty_" + name)
	case string:
		r.note("split_" + name)
		for _, part := range strings.Split(t, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range t {
			s, ok := r.text(item)
			if !ok || s == "" {
				r.note("drop_invalid_" + name)
				continue
			}
			out = append(out, s)
		}
	default:
		r.note("supply_empty_" + name)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
