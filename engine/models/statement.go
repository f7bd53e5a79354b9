// Package models defines the programmatic input to the planning core: a
// Statement, the typed stand-in for "a parsed SQL statement" that a real
// SQL front end would hand the core after lexing/parsing text. The core
// never parses SQL text itself — Statement is its input boundary.
// Grounded on the corpus's engine/models.Query (the teacher repo's
// giant multi-clause struct), narrowed to exactly the clauses the
// planning algebra in engine/plan understands and split into one
// concrete type per statement kind instead of one struct with a tag.
package models

import (
	"time"

	"github.com/streamsql-core/planner/engine/expr"
	"github.com/streamsql-core/planner/engine/name"
	"github.com/streamsql-core/planner/engine/plan"
)

// Statement is implemented by every top-level statement kind the core
// accepts.
type Statement interface {
	statementNode()
}

// SelectItem is one projected expression plus its output alias.
type SelectItem struct {
	Expr  expr.Expr
	Alias name.ColumnName
}

// JoinClause describes one JOIN in a SELECT's FROM clause.
type JoinClause struct {
	Right        name.SourceName
	RightAlias   name.SourceName
	Type         plan.JoinType
	LeftKeyExpr  expr.Expr
	RightKeyExpr expr.Expr
	Within       *plan.Within
}

// GroupByClause holds a SELECT's grouping expressions and optional
// window; SelectStatement.GroupBy is nil when the SELECT has none.
type GroupByClause struct {
	Exprs  []expr.Expr
	Window *plan.Window
}

// SelectStatement is SELECT ... FROM ... [JOIN ...] [WHERE ...]
// [GROUP BY ... [WINDOW ...]] [PARTITION BY ...] [INTO target].
type SelectStatement struct {
	Items       []SelectItem
	From        name.SourceName
	FromAlias   name.SourceName
	Joins       []JoinClause
	Where       expr.Expr // nil when absent
	GroupBy     *GroupByClause
	PartitionBy []expr.Expr // nil when absent
	Into        *name.SourceName
}

func (*SelectStatement) statementNode() {}

// InsertValuesStatement is INSERT INTO target (cols...) VALUES (...).
type InsertValuesStatement struct {
	Target  name.SourceName
	Columns []name.ColumnName
	Values  []expr.Expr
}

func (*InsertValuesStatement) statementNode() {}

// Clock abstracts "now" for INSERT statements that default ROWTIME,
// letting tests supply a fixed instant instead of wall-clock time.
type Clock interface {
	NowMillis() int64
}

// SystemClock is the production Clock, backed by time.Now.
type SystemClock struct{}

func (SystemClock) NowMillis() int64 { return time.Now().UnixMilli() }
