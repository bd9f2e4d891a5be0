// Package codeloopsdir provides constants and path helpers for the .codeloops directory structure.
package codeloopsdir

import (
	"path/filepath"
	"strings"
)

const (
	// Dir is the name of the planning root directory.
	Dir = ".codeloops"

	// ProblemFile holds a feature's problem definition.
	ProblemFile = "problem.json"

	// TechnicalFile holds a feature's technical approach.
	TechnicalFile = "technical.json"

	// TasksFile holds a feature's task breakdown.
	TasksFile = "tasks.json"

	// BackupInfix separates a feature name from its backup timestamp.
	BackupInfix = "-backup-"
)

// Kind identifies one of the three planning documents.
type Kind string

const (
	KindProblem   Kind = "problem"
	KindTechnical Kind = "technical"
	KindTasks     Kind = "tasks"
)

// Kinds lists every document kind in display order.
var Kinds = []Kind{KindProblem, KindTechnical, KindTasks}

// ParseKind returns the kind named by s. It accepts the short names and
// the file names ("problem", "problem.json").
func ParseKind(s string) (Kind, bool) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), ".json")
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// FileName returns the fixed file name for a document kind.
func FileName(kind Kind) string {
	switch kind {
	case KindProblem:
		return ProblemFile
	case KindTechnical:
		return TechnicalFile
	case KindTasks:
		return TasksFile
	default:
		return ""
	}
}

// KindForFile is the inverse of FileName.
func KindForFile(name string) (Kind, bool) {
	switch name {
	case ProblemFile:
		return KindProblem, true
	case TechnicalFile:
		return KindTechnical, true
	case TasksFile:
		return KindTasks, true
	default:
		return "", false
	}
}

// RootPath returns the .codeloops directory within a work directory.
func RootPath(workDir string) string {
	if workDir == "." || workDir == "" {
		return Dir
	}
	return filepath.Join(workDir, Dir)
}

// ProjectPath returns the directory for a feature under root.
// The feature name is used as-is.
func ProjectPath(root, feature string) string {
	return filepath.Join(root, feature)
}

// DocumentPath returns the file path of a document kind for a feature.
func DocumentPath(root, feature string, kind Kind) string {
	return filepath.Join(ProjectPath(root, feature), FileName(kind))
}

// ProblemPath returns the problem definition path for a feature.
func ProblemPath(root, feature string) string {
	return DocumentPath(root, feature, KindProblem)
}

// TechnicalPath returns the technical approach path for a feature.
func TechnicalPath(root, feature string) string {
	return DocumentPath(root, feature, KindTechnical)
}

// TasksPath returns the task breakdown path for a feature.
func TasksPath(root, feature string) string {
	return DocumentPath(root, feature, KindTasks)
}

// BackupName returns the backup directory name for a feature and a
// formatted timestamp.
func BackupName(feature, stamp string) string {
	return feature + BackupInfix + stamp
}

// IsBackup reports whether a project directory name looks like a backup.
func IsBackup(name string) bool {
	return strings.Contains(name, BackupInfix)
}

// EscapesRoot reports whether a feature name would resolve outside the
// root directory it is joined to.
func EscapesRoot(feature string) bool {
	if feature == ".." || strings.ContainsRune(feature, '/') || strings.ContainsRune(feature, filepath.Separator) {
		return true
	}
	return filepath.IsAbs(feature)
}
