// Package plan implements the relational plan algebra: Source, Project,
// Filter, GroupBy, Aggregate/WindowedAggregate, the three join kinds,
// PartitionBy/Repartition, and Sink, each carrying its own LogicalSchema
// and KeyField. Grounded on the corpus's builder-package layout
// (engine/builders, one file per node kind, one exported Build* entry
// point per kind in the teacher repo), kept here without the dialect
// split since there is exactly one target: the row evaluator.
package plan

import (
	"fmt"

	"github.com/google/uuid"
)

// Context threads synthetic plan-node naming through a build so that
// names are collision-free within one planning run. Each name embeds a
// random per-Context salt from uuid.NewString and a per-Context counter
// that increases by one per name, so planning the same statement twice
// yields different names; only the counter part repeats across runs.
type Context struct {
	runID   string
	counter int
}

// NewContext starts a fresh naming context, salted with a random run ID
// so synthetic names from two different planning runs never collide if
// later merged into one log or comparison.
func NewContext() *Context {
	return &Context{runID: uuid.NewString()[:8]}
}

// NextSyntheticName returns the next synthetic name, "purpose-salt-n",
// with the given purpose tag, e.g. "Aggregate" or "Repartition".
func (c *Context) NextSyntheticName(purpose string) string {
	c.counter++
	return fmt.Sprintf("%s-%s-%d", purpose, c.runID, c.counter)
}
