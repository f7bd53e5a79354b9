package plan

// KeyFieldOf returns n's key field, dispatching on its concrete type.
// Centralizing this here (rather than giving every node type its own
// Key() method with duplicated fallback logic) keeps the "what is this
// subtree keyed by" question answerable from one place as new node kinds
// are added.
func KeyFieldOf(n Node) KeyField {
	switch v := n.(type) {
	case *DataSource:
		return v.Key
	case *Project:
		return v.Key
	case *Filter:
		return KeyFieldOf(v.Input)
	case *GroupBy:
		return v.Key
	case *Aggregate:
		return v.Key
	case *WindowedAggregate:
		return v.Key
	case *Join:
		return v.Key
	case *Repartition:
		return v.Key
	case *Sink:
		return KeyFieldOf(v.Input)
	default:
		return NoKeyField
	}
}
