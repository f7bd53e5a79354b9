package planner

import (
	"fmt"

	"github.com/streamsql-core/planner/engine/insert"
	"github.com/streamsql-core/planner/engine/models"
)

// ResolveInsert resolves an INSERT INTO ... VALUES statement against the
// target's catalog metadata, independent of Plan's SELECT-driven tree
// construction. clock supplies "now" for a defaulted ROWTIME.
func (p *Planner) ResolveInsert(stmt *models.InsertValuesStatement, clock models.Clock) (insert.ResolvedRow, error) {
	meta, ok := p.Catalog.Lookup(stmt.Target)
	if !ok {
		return insert.ResolvedRow{}, fmt.Errorf("planner: unknown INSERT target %q", stmt.Target.String())
	}
	if clock == nil {
		clock = models.SystemClock{}
	}
	cvs := make([]insert.ColumnValue, len(stmt.Columns))
	for i, col := range stmt.Columns {
		cvs[i] = insert.ColumnValue{Column: col, Value: stmt.Values[i]}
	}
	return insert.Resolve(cvs, meta, p.Config, p.Registry, clock.NowMillis())
}
