// Package catalog defines the source metadata collaborator: where a
// stream or table's schema, key format, value format, and physical
// partitioning come from. The planning core never resolves this itself,
// per the design doc's "Catalog is external" boundary. Grounded on the
// corpus's mapping.databases.go (a static name -> metadata table),
// generalized from "known database dialects" to "known sources."
package catalog

import (
	"github.com/streamsql-core/planner/engine/name"
	"github.com/streamsql-core/planner/engine/schema"
)

// SourceKind distinguishes STREAM from TABLE semantics for a named source.
type SourceKind int

const (
	Stream SourceKind = iota
	Table
)

func (k SourceKind) String() string {
	if k == Table {
		return "TABLE"
	}
	return "STREAM"
}

// TimestampPolicy describes how a source's ROWTIME is derived.
type TimestampPolicy struct {
	// ColumnName is empty when ROWTIME comes from the underlying
	// transport's own timestamp rather than a value column.
	ColumnName string
}

// SourceMetadata is everything the planner needs to know about one named
// source, sourced entirely from outside the core.
type SourceMetadata struct {
	Name        name.SourceName
	Kind        SourceKind
	Schema      schema.Schema
	// KeyFieldName is the value column (if any) this source's key field
	// identifies; empty when the source has no single-column key field.
	KeyFieldName   string
	KeyFormat      string
	ValueFormat    string
	Timestamp      TimestampPolicy
	TopicName      string
	SerdeOptions   map[string]string
	PartitionCount int
}

// Catalog resolves source names to their metadata.
type Catalog interface {
	Lookup(source name.SourceName) (SourceMetadata, bool)
}

// Static is an in-memory Catalog, suitable for tests and for embedding
// behind a real metadata store.
type Static struct {
	sources map[string]SourceMetadata
}

// NewStatic builds a Static catalog from a fixed set of sources.
func NewStatic(sources []SourceMetadata) *Static {
	m := make(map[string]SourceMetadata, len(sources))
	for _, s := range sources {
		m[s.Name.String()] = s
	}
	return &Static{sources: m}
}

func (s *Static) Lookup(source name.SourceName) (SourceMetadata, bool) {
	m, ok := s.sources[source.String()]
	return m, ok
}
