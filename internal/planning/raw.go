package planning

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Raw is a planning document as stored: a JSON object whose keys keep
// their order and whose values keep their bytes, including keys and
// nested fields this package does not model.
type Raw struct {
	keys   []string
	values map[string]json.RawMessage
}

// NewRaw returns an empty document.
func NewRaw() *Raw {
	return &Raw{values: make(map[string]json.RawMessage)}
}

// ParseRaw decodes a JSON object. A repeated key keeps its first position
// and its last value.
func ParseRaw(data []byte) (*Raw, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("not a JSON object")
	}

	r := NewRaw()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		r.SetRaw(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON object")
	}
	return r, nil
}

// RawOf encodes v, which must encode as a JSON object.
func RawOf(v any) (*Raw, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return ParseRaw(data)
}

// Keys returns the field names in document order.
func (r *Raw) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of fields.
func (r *Raw) Len() int {
	return len(r.keys)
}

// Get returns the encoded value of key.
func (r *Raw) Get(key string) (json.RawMessage, bool) {
	v, ok := r.values[key]
	return v, ok
}

// SetRaw replaces the value of key, appending key if it is new.
func (r *Raw) SetRaw(key string, value json.RawMessage) {
	if r.values == nil {
		r.values = make(map[string]json.RawMessage)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	if value == nil {
		value = json.RawMessage("null")
	}
	r.values[key] = value
}

// Set encodes v and stores it under key.
func (r *Raw) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode field %q: %w", key, err)
	}
	r.SetRaw(key, data)
	return nil
}

// Clone returns a copy that shares no state with r.
func (r *Raw) Clone() *Raw {
	c := &Raw{
		keys:   r.Keys(),
		values: make(map[string]json.RawMessage, len(r.values)),
	}
	for k, v := range r.values {
		c.values[k] = append(json.RawMessage(nil), v...)
	}
	return c
}

// MarshalJSON encodes the fields in document order.
func (r *Raw) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		b.Write(name)
		b.WriteByte(':')
		b.Write(r.values[key])
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// UnmarshalJSON replaces r with the decoded object.
func (r *Raw) UnmarshalJSON(data []byte) error {
	parsed, err := ParseRaw(data)
	if err != nil {
		return err
	}
	*r = *parsed
	return nil
}

// Stamp sets metadata.updated and metadata.featureName, leaving every
// other metadata field as it is.
func (r *Raw) Stamp(feature, updated string) error {
	data, ok := r.Get("metadata")
	if !ok {
		return errors.New("document has no metadata")
	}
	meta, err := ParseRaw(data)
	if err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	if err := meta.Set("updated", updated); err != nil {
		return err
	}
	if err := meta.Set("featureName", feature); err != nil {
		return err
	}
	return r.Set("metadata", meta)
}

// View decodes r into the typed document of kind. Unknown keys are
// ignored. A value whose JSON type does not fit its Go field is left at
// the zero value; the document is still returned, together with the first
// such mismatch.
func (r *Raw) View(kind Kind) (Document, error) {
	var doc Document
	switch kind {
	case KindProblem:
		doc = &ProblemDefinition{}
	case KindTechnical:
		doc = &TechnicalApproach{}
	case KindTasks:
		doc = &TaskBreakdown{}
	default:
		return nil, fmt.Errorf("unknown document kind %q", kind)
	}

	data, err := r.MarshalJSON()
	if err != nil {
		return nil, err
	}
	err = json.Unmarshal(data, doc)
	var mismatch *json.UnmarshalTypeError
	if err != nil && !errors.As(err, &mismatch) {
		return nil, err
	}
	return doc, err
}
