package schema

import (
	"strings"

	"github.com/streamsql-core/planner/engine/name"
)

// String renders the schema using default quoting options. Equivalent to
// s.Render(name.DefaultQuoteOptions()).
func (s Schema) String() string { return s.Render(name.DefaultQuoteOptions()) }

// Render produces the canonical bracketed column list per the design
// doc's schema text format: "[col1, col2, ...]", key columns suffixed
// with " KEY", each column "qualifier.name type" with qualifier and name
// individually quoted as needed. This text is both human-facing and
// stable for golden-test equality.
func (s Schema) Render(opts name.QuoteOptions) string {
	var b strings.Builder
	b.WriteByte('[')
	first := true
	writeCol := func(c Column, isKey bool) {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(name.RenderQualified(c.Source, c.Name, opts))
		b.WriteByte(' ')
		b.WriteString(c.Type.String())
		if isKey {
			b.WriteString(" KEY")
		}
	}
	for _, c := range s.keys {
		writeCol(c, true)
	}
	for _, c := range s.values {
		writeCol(c, false)
	}
	b.WriteByte(']')
	return b.String()
}
