package editor

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"coursekit/internal/model"
)

// ValidationError is raised before any network call or state change when an
// entity's fields break the data model constraints.
type ValidationError struct {
	Entity string            // "course", "module" or "lesson"
	ID     string            // empty for course creation
	Fields map[string]string // json field name -> reason
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	if e.ID == "" {
		return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("invalid %s %s: %s", e.Entity, e.ID, strings.Join(parts, "; "))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateCourse checks course fields.
func ValidateCourse(id string, f model.CourseFields) error {
	f.Title = strings.TrimSpace(f.Title)
	return check("course", id, &f, nil)
}

// ValidateModule checks module fields.
func ValidateModule(id string, f model.ModuleFields) error {
	f.Title = strings.TrimSpace(f.Title)
	return check("module", id, &f, nil)
}

// ValidateLesson checks lesson fields, including the content reference tag.
func ValidateLesson(id string, f model.LessonFields) error {
	f.Title = strings.TrimSpace(f.Title)
	extra := map[string]string{}
	if f.ContentRef != nil && *f.ContentRef != "" {
		if _, err := ParseContentRef(*f.ContentRef); err != nil {
			extra["content_ref"] = err.Error()
		}
	}
	return check("lesson", id, &f, extra)
}

func check(entity, id string, s any, extra map[string]string) error {
	fields := map[string]string{}
	for k, v := range extra {
		fields[k] = v
	}

	err := validate.Struct(s)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = reason(fe)
		}
	} else if err != nil {
		return fmt.Errorf("validating %s: %w", entity, err)
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Entity: entity, ID: id, Fields: fields}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}
