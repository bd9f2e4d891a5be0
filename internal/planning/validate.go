package planning

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/codeloops-go/internal/codeloopsdir"
)

//go:embed schemas/*.schema.json
var schemaFiles embed.FS

const schemaBaseURL = "https://codeloops.dev/schemas/"

var (
	schemasOnce sync.Once
	schemas     map[Kind]*jsonschema.Schema
	schemasErr  error
)

// ErrInvalidFormat matches every FormatError via errors.Is.
var ErrInvalidFormat = errors.New("invalid document format")

// FormatError reports a document that failed structural validation.
type FormatError struct {
	Kind   Kind
	Path   string  // file the document was read from or bound for
	Errors []error // individual schema violations
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("invalid %s format", DisplayName(e.Kind))
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if len(e.Errors) > 0 {
		parts := make([]string, 0, len(e.Errors))
		for _, err := range e.Errors {
			parts = append(parts, err.Error())
		}
		msg += ": " + strings.Join(parts, "; ")
	}
	return msg
}

// Is makes errors.Is(err, ErrInvalidFormat) hold.
func (e *FormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // dotted path to the offending field, empty for the root
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid  bool
	Errors []error
}

// Err returns a FormatError for an invalid result, or nil.
func (r *ValidationResult) Err(kind Kind, path string) error {
	if r.Valid {
		return nil
	}
	return &FormatError{Kind: kind, Path: path, Errors: r.Errors}
}

func compileSchemas() (map[Kind]*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		compiled := make(map[Kind]*jsonschema.Schema, len(codeloopsdir.Kinds))
		for _, kind := range codeloopsdir.Kinds {
			name := string(kind) + ".schema.json"
			data, err := schemaFiles.ReadFile("schemas/" + name)
			if err != nil {
				schemasErr = fmt.Errorf("read schema %s: %w", name, err)
				return
			}
			url := schemaBaseURL + name
			if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
				schemasErr = fmt.Errorf("add schema %s: %w", name, err)
				return
			}
			schema, err := compiler.Compile(url)
			if err != nil {
				schemasErr = fmt.Errorf("compile schema %s: %w", name, err)
				return
			}
			compiled[kind] = schema
		}
		schemas = compiled
	})
	return schemas, schemasErr
}

// Validate checks a decoded JSON value (as produced by json.Unmarshal into
// an interface{}) against the structural schema of kind.
func Validate(kind Kind, data any) *ValidationResult {
	result := &ValidationResult{Valid: true}

	compiled, err := compileSchemas()
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err)
		return result
	}
	schema, ok := compiled[kind]
	if !ok {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Errorf("unknown document kind %q", kind))
		return result
	}

	if err := schema.Validate(data); err != nil {
		result.Valid = false
		appendSchemaErrors(result, err)
	}
	return result
}

// Valid reports whether data has the minimum shape of kind.
func Valid(kind Kind, data any) bool {
	return Validate(kind, data).Valid
}

// ValidateProblemDefinition reports whether data is shaped like a problem definition.
func ValidateProblemDefinition(data any) bool { return Valid(KindProblem, data) }

// ValidateTechnicalApproach reports whether data is shaped like a technical approach.
func ValidateTechnicalApproach(data any) bool { return Valid(KindTechnical, data) }

// ValidateTaskBreakdown reports whether data is shaped like a task breakdown.
func ValidateTaskBreakdown(data any) bool { return Valid(KindTasks, data) }

// ValidateJSON decodes raw JSON and validates it against kind.
func ValidateJSON(kind Kind, raw []byte) *ValidationResult {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []error{&ValidationError{Err: fmt.Errorf("decode: %w", err)}},
		}
	}
	return Validate(kind, data)
}

// ValidateDocument validates a typed document by checking its JSON form,
// so nil lists and missing records are caught the same way as on read.
func ValidateDocument(kind Kind, doc any) *ValidationResult {
	raw, err := json.Marshal(doc)
	if err != nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []error{&ValidationError{Err: fmt.Errorf("encode: %w", err)}},
		}
	}
	return ValidateJSON(kind, raw)
}

// ValidateRaw validates a stored document.
func ValidateRaw(kind Kind, r *Raw) *ValidationResult {
	if r == nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []error{&ValidationError{Err: errors.New("document is nil")}},
		}
	}
	return ValidateDocument(kind, r)
}

func appendSchemaErrors(result *ValidationResult, err error) {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		result.Errors = append(result.Errors, err)
		return
	}
	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
