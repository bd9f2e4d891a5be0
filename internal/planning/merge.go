package planning

import (
	"sort"
)

// Update holds replacement values for top-level document fields, keyed by
// their JSON names (for example "problemStatement" or "tasks"). Values may
// be any JSON-encodable Go value.
type Update map[string]any

// Keys returns the update's field names in sorted order.
func (u Update) Keys() []string {
	keys := make([]string, 0, len(u))
	for k := range u {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge overlays update onto a copy of base one level deep. A key present
// in update replaces the base field entirely; every other base field is
// kept byte for byte. New keys are appended in sorted order.
func Merge(base *Raw, update Update) (*Raw, error) {
	merged := base.Clone()
	for _, key := range update.Keys() {
		if err := merged.Set(key, update[key]); err != nil {
			return nil, err
		}
	}
	return merged, nil
}
