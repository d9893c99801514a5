package nodes

import (
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate applies the level-specific field rules: every node needs a title,
// article nodes additionally need a body. A nil return means the node is valid.
func Validate(node *Node) validation.Errors {
	errs := validation.Errors{}

	if !node.Level.Valid() {
		errs["level"] = validation.NewError("participatory.nodes.level_invalid", "level is invalid")
	}
	if strings.TrimSpace(node.Title) == "" {
		errs["title"] = validation.NewError("participatory.nodes.title_required", "title is required")
	}
	if node.Level.HasBody() && strings.TrimSpace(node.Body) == "" {
		errs["body"] = validation.NewError("participatory.nodes.body_required", "body is required")
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Messages flattens validation errors into human readable strings, ordered by
// field name so repeated validation of the same input yields identical output.
func Messages(errs validation.Errors) []string {
	if len(errs) == 0 {
		return nil
	}
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	out := make([]string, 0, len(fields))
	for _, field := range fields {
		out = append(out, errs[field].Error())
	}
	return out
}
