package planning

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report JSON field names so problems read like the file on disk.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// FieldProblem is one deep-validation failure.
type FieldProblem struct {
	Field string // e.g. "tasks[0].priority"
	Rule  string // validator tag that failed, e.g. "oneof", or "type"
	Param string
	Value any
}

func (p FieldProblem) String() string {
	switch p.Rule {
	case "required":
		return fmt.Sprintf("%s is required", p.Field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", p.Field, p.Param, p.Value)
	case "type":
		return fmt.Sprintf("%s must be a %s, got %v", p.Field, p.Param, p.Value)
	case "gte":
		return fmt.Sprintf("%s must be >= %s, got %v", p.Field, p.Param, p.Value)
	default:
		return fmt.Sprintf("%s failed %q", p.Field, p.Rule)
	}
}

// DeepValidationError lists every field that failed deep validation.
type DeepValidationError struct {
	Kind     Kind
	Problems []FieldProblem
}

func (e *DeepValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.String())
	}
	return fmt.Sprintf("%s failed deep validation: %s", DisplayName(e.Kind), strings.Join(parts, "; "))
}

// ValidateDeep checks enum membership and required identifiers inside a
// document. Structural validation does not do this; callers opt in.
func ValidateDeep(doc Document) error {
	if doc == nil || reflect.ValueOf(doc).IsNil() {
		return errors.New("document is nil")
	}

	err := validate.Struct(doc)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &DeepValidationError{Kind: doc.Kind()}
	for _, fe := range verrs {
		out.Problems = append(out.Problems, FieldProblem{
			Field: trimNamespace(fe.Namespace()),
			Rule:  fe.Tag(),
			Param: fe.Param(),
			Value: fe.Value(),
		})
	}
	return out
}

// ValidateDeepRaw deep-validates a stored document. Values whose JSON type
// does not fit the typed view are reported as "type" problems.
func ValidateDeepRaw(kind Kind, r *Raw) error {
	if r == nil {
		return errors.New("document is nil")
	}
	doc, err := r.View(kind)
	if doc == nil {
		return err
	}

	var problems []FieldProblem
	var mismatch *json.UnmarshalTypeError
	if errors.As(err, &mismatch) {
		problems = append(problems, FieldProblem{
			Field: mismatch.Field,
			Rule:  "type",
			Param: mismatch.Type.Kind().String(),
			Value: mismatch.Value,
		})
	}

	var de *DeepValidationError
	if err := ValidateDeep(doc); err != nil {
		if !errors.As(err, &de) {
			return err
		}
		problems = append(problems, de.Problems...)
	}
	if len(problems) == 0 {
		return nil
	}
	return &DeepValidationError{Kind: kind, Problems: problems}
}

// trimNamespace drops the leading Go type name from a validator namespace.
func trimNamespace(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
