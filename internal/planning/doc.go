// Package planning defines, validates, and renders the three planning documents.
//
// Every feature under .codeloops/ owns up to three JSON files, each with the
// same metadata header:
//
//	{
//	  "metadata": {
//	    "created": "2024-01-01T00:00:00.000Z",
//	    "updated": "2024-01-01T00:00:00.000Z",
//	    "version": "1.0.0",
//	    "featureName": "checkout"
//	  },
//	  ...
//	}
//
//   - problem.json: ProblemDefinition (statement, why, success criteria,
//     constraints, user personas)
//   - technical.json: TechnicalApproach (stack, data models, architecture,
//     security)
//   - tasks.json: TaskBreakdown (context analysis, tasks, task dependencies)
//
// Timestamps are ISO-8601 strings in UTC with millisecond precision. They
// are stored and compared as text and never parsed.
//
// # Stored form
//
// Raw is the document as stored: an ordered JSON object that keeps keys
// and nested fields the Go types do not model. The typed structs are views
// decoded from a Raw with Raw.View; a nested value of the wrong JSON type
// leaves its field zero instead of failing the read.
//
// # Validation
//
// Two levels are available:
//
// 1. Structural validation (always on):
//   - Embedded JSON Schemas in schemas/, compiled once
//   - Checks the value is an object, metadata is an object, and each
//     top-level field has the right container kind
//   - Does not look inside nested records
//
// 2. Deep validation (opt-in, ValidateDeep):
//   - Struct tags checked with go-playground/validator
//   - Priority and status enums, endpoint methods, required identifiers
//
// # Updates
//
// Update is a set of top-level fields. Merge replaces each named field of
// the base Raw wholesale and keeps every other field byte for byte; nested
// objects and lists are never merged.
// To append a task, pass the whole new task list.
package planning
