package planning

import (
	"fmt"
)

// ParseDocument validates JSON input against kind and returns it as a Raw
// document with every field kept. Structural violations are returned as a
// *FormatError naming source.
func ParseDocument(kind Kind, data []byte, source string) (*Raw, error) {
	if err := ValidateJSON(kind, data).Err(kind, source); err != nil {
		return nil, err
	}
	doc, err := ParseRaw(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	return doc, nil
}
