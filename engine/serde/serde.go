// Package serde defines the wire-serialization collaborator. The planning
// core never encodes bytes itself — Non-goals exclude physical formats —
// but the insert-values path needs somewhere to hand a fully resolved row
// to. Grounded on the corpus's pluggable dialect-client boundary
// (client.go's sql.DB/mongo.Database/redis.Client split in the teacher
// repo): one interface, many possible backends, none of them this
// package's concern.
package serde

// Row is a resolved, typed column-name -> value map ready for encoding.
type Row map[string]any

// Serializer hands a fully-typechecked row to an external encoder. The
// planning core never calls it: insert.Resolve returns a ResolvedRow whose
// Key and Value rows a caller can pass to Serialize, and plan construction
// never serializes anything.
type Serializer interface {
	Serialize(topic string, key Row, value Row) ([]byte, error)
}

// Noop is a Serializer that performs no encoding; useful for tests and
// dry-run planning where only the resolved Row values matter.
type Noop struct{}

func (Noop) Serialize(topic string, key Row, value Row) ([]byte, error) {
	return nil, nil
}
