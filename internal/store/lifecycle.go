package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nibzard/codeloops-go/internal/codeloopsdir"
	"github.com/nibzard/codeloops-go/internal/planning"
)

func checkKind(kind planning.Kind) error {
	if _, ok := codeloopsdir.ParseKind(string(kind)); !ok {
		return fmt.Errorf("unknown document kind %q", kind)
	}
	return nil
}

// Read returns the stored document of kind exactly as it is on disk, or
// nil, nil when the file is absent. Only a document that fails structural
// validation is rejected; it is never repaired.
func (s *Store) Read(feature string, kind planning.Kind) (*planning.Raw, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	path := s.documentPath(feature, kind)
	data, ok, err := readFile(s.fsys, path)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.Debug("document absent", "feature", feature, "kind", kind)
		return nil, nil
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := planning.Validate(kind, generic).Err(kind, path); err != nil {
		return nil, err
	}
	doc, err := planning.ParseRaw(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	s.logger.Debug("read document", "feature", feature, "kind", kind, "path", path)
	return doc, nil
}

// Write validates doc, stamps metadata.updated and metadata.featureName
// on it and persists it. Every other field is written as given. Nothing is
// written when validation fails.
func (s *Store) Write(feature string, kind planning.Kind, doc *planning.Raw) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("write %s: document is nil", feature)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}

	stamp := planning.Timestamp(s.now())
	if _, err := s.persist(feature, kind, data, stamp); err != nil {
		return err
	}
	return doc.Stamp(feature, stamp)
}

// persist is the single write path: structural validation, optional deep
// validation, metadata stamping, then one file write.
func (s *Store) persist(feature string, kind planning.Kind, data []byte, stamp string) (*planning.Raw, error) {
	path := s.documentPath(feature, kind)

	if err := planning.ValidateJSON(kind, data).Err(kind, path); err != nil {
		return nil, err
	}
	doc, err := planning.ParseRaw(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if s.strict {
		if err := planning.ValidateDeepRaw(kind, doc); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := doc.Stamp(feature, stamp); err != nil {
		return nil, fmt.Errorf("stamp %s: %w", path, err)
	}

	if err := WriteJSON(s.fsys, path, doc); err != nil {
		return nil, err
	}
	s.logger.Debug("wrote document", "feature", feature, "kind", kind, "path", path)
	return doc, nil
}

// CreateOrUpdate reads the stored document (or starts from the template),
// overlays update one level deep and writes the result. Fields not named
// in update, including ones no Go type models, are kept as stored.
func (s *Store) CreateOrUpdate(feature string, kind planning.Kind, update planning.Update) (*planning.Raw, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	if err := s.EnsureProjectDir(feature); err != nil {
		return nil, err
	}

	base, err := s.Read(feature, kind)
	if err != nil {
		return nil, err
	}
	if base == nil {
		template, err := planning.NewTemplate(kind, feature, s.now())
		if err != nil {
			return nil, err
		}
		if base, err = planning.RawOf(template); err != nil {
			return nil, fmt.Errorf("encode %s template: %w", kind, err)
		}
	}

	merged, err := planning.Merge(base, update)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	doc, err := s.persist(feature, kind, data, planning.Timestamp(s.now()))
	if err != nil {
		return nil, err
	}
	s.logger.Debug("merged update", "feature", feature, "kind", kind, "fields", update.Keys())
	return doc, nil
}

// view decodes doc as T. Type mismatches inside nested records leave the
// affected fields zero and are only logged.
func view[T any](s *Store, feature string, kind planning.Kind, doc *planning.Raw) (*T, error) {
	typed, err := doc.View(kind)
	if typed == nil {
		return nil, err
	}
	var mismatch *json.UnmarshalTypeError
	if errors.As(err, &mismatch) {
		s.logger.Debug("document field does not match its type", "feature", feature, "kind", kind, "field", mismatch.Field)
	}
	return any(typed).(*T), nil
}

func readView[T any](s *Store, feature string, kind planning.Kind) (*T, error) {
	doc, err := s.Read(feature, kind)
	if doc == nil {
		return nil, err
	}
	return view[T](s, feature, kind, doc)
}

func updateView[T any](s *Store, feature string, kind planning.Kind, update planning.Update) (*T, error) {
	doc, err := s.CreateOrUpdate(feature, kind, update)
	if err != nil {
		return nil, err
	}
	return view[T](s, feature, kind, doc)
}

// ReadProblemDefinition returns a typed view of the feature's problem
// definition, or nil if it has not been written yet.
func (s *Store) ReadProblemDefinition(feature string) (*planning.ProblemDefinition, error) {
	return readView[planning.ProblemDefinition](s, feature, planning.KindProblem)
}

// WriteProblemDefinition validates and persists doc, stamping
// metadata.updated and metadata.featureName on doc.
func (s *Store) WriteProblemDefinition(feature string, doc *planning.ProblemDefinition) error {
	return s.writeTyped(feature, planning.KindProblem, doc)
}

// CreateOrUpdateProblemDefinition applies update to the stored problem
// definition, creating it from the template when absent.
func (s *Store) CreateOrUpdateProblemDefinition(feature string, update planning.Update) (*planning.ProblemDefinition, error) {
	return updateView[planning.ProblemDefinition](s, feature, planning.KindProblem, update)
}

// ReadTechnicalApproach returns a typed view of the feature's technical
// approach, or nil if it has not been written yet.
func (s *Store) ReadTechnicalApproach(feature string) (*planning.TechnicalApproach, error) {
	return readView[planning.TechnicalApproach](s, feature, planning.KindTechnical)
}

// WriteTechnicalApproach validates and persists doc.
func (s *Store) WriteTechnicalApproach(feature string, doc *planning.TechnicalApproach) error {
	return s.writeTyped(feature, planning.KindTechnical, doc)
}

// CreateOrUpdateTechnicalApproach applies update to the stored technical
// approach, creating it from the template when absent.
func (s *Store) CreateOrUpdateTechnicalApproach(feature string, update planning.Update) (*planning.TechnicalApproach, error) {
	return updateView[planning.TechnicalApproach](s, feature, planning.KindTechnical, update)
}

// ReadTaskBreakdown returns a typed view of the feature's task breakdown,
// or nil if it has not been written yet.
func (s *Store) ReadTaskBreakdown(feature string) (*planning.TaskBreakdown, error) {
	return readView[planning.TaskBreakdown](s, feature, planning.KindTasks)
}

// WriteTaskBreakdown validates and persists doc.
func (s *Store) WriteTaskBreakdown(feature string, doc *planning.TaskBreakdown) error {
	return s.writeTyped(feature, planning.KindTasks, doc)
}

// CreateOrUpdateTaskBreakdown applies update to the stored task breakdown,
// creating it from the template when absent. Lists are replaced, not
// appended to.
func (s *Store) CreateOrUpdateTaskBreakdown(feature string, update planning.Update) (*planning.TaskBreakdown, error) {
	return updateView[planning.TaskBreakdown](s, feature, planning.KindTasks, update)
}

// ReadDocument returns a typed view of a document of any kind. The result
// is a nil interface when the document is absent.
func (s *Store) ReadDocument(feature string, kind planning.Kind) (planning.Document, error) {
	doc, err := s.Read(feature, kind)
	if doc == nil {
		return nil, err
	}
	typed, err := doc.View(kind)
	if typed == nil {
		return nil, err
	}
	return typed, nil
}

// WriteDocument validates and persists a typed document of any kind.
func (s *Store) WriteDocument(feature string, doc planning.Document) error {
	if doc == nil {
		return fmt.Errorf("write %s: document is nil", feature)
	}
	return s.writeTyped(feature, doc.Kind(), doc)
}

func (s *Store) writeTyped(feature string, kind planning.Kind, doc planning.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}

	stamp := planning.Timestamp(s.now())
	if _, err := s.persist(feature, kind, data, stamp); err != nil {
		return err
	}
	meta := doc.Meta()
	meta.Updated = stamp
	meta.FeatureName = feature
	return nil
}
