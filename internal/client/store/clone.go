package store

import (
	"encoding/json"
	"strings"
)

// clone returns a deep copy of *p so that readers never share maps or slices
// with the store. Entities are plain JSON documents; if one ever fails to
// round-trip a shallow copy is returned.
func clone[T any](p *T) T {
	b, err := json.Marshal(p)
	if err != nil {
		return *p
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return *p
	}
	return out
}

// overlay returns *p with the top-level fields replaced by those in fields.
// *p itself is not touched.
func overlay[T any](p *T, fields map[string]json.RawMessage) (T, error) {
	var out T

	b, err := json.Marshal(p)
	if err != nil {
		return out, err
	}
	doc := make(map[string]json.RawMessage)
	if err := json.Unmarshal(b, &doc); err != nil {
		return out, err
	}

	for k, v := range fields {
		// Field names match case-insensitively on decode; drop the old
		// spelling so it cannot shadow the patch.
		for existing := range doc {
			if existing != k && strings.EqualFold(existing, k) {
				delete(doc, existing)
			}
		}
		doc[k] = v
	}

	b, err = json.Marshal(doc)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
