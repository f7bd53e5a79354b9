// Package planner is the root package of the logical planning and
// execution-plan construction core: given a parsed Statement and the
// external Catalog/Registry/Config collaborators, it produces a
// plan.Node tree or an error, usually a typed *perr.PlanError (unknown
// catalog names and INSERT statements passed to Plan are reported as
// plain errors). Grounded on the corpus's
// top-level Client/omniql.go entry points (client.go wrapped a dialect
// connection plus exposed Parse/Build methods in the teacher repo); here
// there is no connection to wrap, so Planner wraps only the three
// stateless collaborators plus an optional debug logger.
package planner

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/streamsql-core/planner/engine/catalog"
	"github.com/streamsql-core/planner/engine/config"
	"github.com/streamsql-core/planner/engine/models"
	"github.com/streamsql-core/planner/engine/perr"
	"github.com/streamsql-core/planner/engine/plan"
	"github.com/streamsql-core/planner/engine/registry"
)

// Planner turns Statements into plan trees. It is pure and
// single-threaded: Plan never blocks, and each SELECT it plans gets a
// fresh plan.Context for synthetic names, so a Planner holds no mutable
// state of its own and is as safe to reuse or share as its collaborators.
type Planner struct {
	Catalog  catalog.Catalog
	Registry registry.Registry
	Config   config.Config
	// Logger is optional and debug-only: it never influences planning
	// decisions or a Plan call's return value, only what gets written to
	// a log sink while planning runs.
	Logger *zap.Logger
}

// New builds a Planner. logger may be nil, in which case a no-op logger
// is used.
func New(cat catalog.Catalog, reg registry.Registry, cfg config.Config, logger *zap.Logger) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{Catalog: cat, Registry: reg, Config: cfg, Logger: logger}, nil
}

// Plan compiles stmt into a plan tree.
func (p *Planner) Plan(stmt models.Statement) (plan.Node, error) {
	switch s := stmt.(type) {
	case *models.SelectStatement:
		p.Logger.Debug("planning SELECT", zap.String("from", s.From.String()))
		return p.planSelect(s)
	case *models.InsertValuesStatement:
		p.Logger.Debug("planning INSERT VALUES", zap.String("target", s.Target.String()))
		return nil, fmt.Errorf("planner: INSERT VALUES does not produce a plan tree; call ResolveInsert instead")
	default:
		return nil, perr.New(perr.SchemaArityMismatch, "planner: unsupported statement type %T", stmt)
	}
}

// Explain renders a plan tree's shape for debugging. It is not a stable
// machine-readable format, only a human-facing indented listing.
func Explain(n plan.Node) string {
	var b []byte
	explainNode(n, 0, &b)
	return string(b)
}

func explainNode(n plan.Node, depth int, out *[]byte) {
	if n == nil {
		return
	}
	for i := 0; i < depth; i++ {
		*out = append(*out, ' ', ' ')
	}
	*out = append(*out, []byte(fmt.Sprintf("%T %s\n", n, n.Schema().String()))...)
	for _, child := range n.Sources() {
		explainNode(child, depth+1, out)
	}
}
