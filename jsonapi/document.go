package jsonapi

import (
	"bytes"
	"fmt"
	"strconv"
)

// ID is a JSON:API resource identifier value. Clients send ids both as
// strings and as bare numbers; responses always carry strings.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return fmt.Errorf("empty id value")
	}
	if b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return fmt.Errorf("invalid id value %s", b)
		}
		*id = ID(s)
		return nil
	}
	// Bare number
	if _, err := strconv.ParseInt(string(b), 10, 64); err != nil {
		return fmt.Errorf("invalid id value %s", b)
	}
	*id = ID(b)
	return nil
}

// ResourceIdentifier names a resource by type and id.
type ResourceIdentifier struct {
	Type string `json:"type"`
	ID   ID     `json:"id"`
}

// Relationship holds a to-one relationship linkage.
type Relationship struct {
	Data *ResourceIdentifier `json:"data"`
}

// Resource is a single resource object.
type Resource struct {
	Type          string                  `json:"type"`
	ID            ID                      `json:"id,omitempty"`
	Attributes    map[string]any          `json:"attributes"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

// Meta carries the collection count.
type Meta struct {
	Count int `json:"count"`
}

// Document is a top-level JSON:API document with a single primary resource.
type Document struct {
	Data     *Resource  `json:"data"`
	Included []Resource `json:"included,omitempty"`
}

// CollectionDocument is a top-level document with a resource collection.
// Meta.Count always reflects the (visibility-filtered) collection size.
type CollectionDocument struct {
	Data     []Resource `json:"data"`
	Included []Resource `json:"included,omitempty"`
	Meta     Meta       `json:"meta"`
}
