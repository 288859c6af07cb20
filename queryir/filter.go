package queryir

// FilterOp is the closed set of comparison/match operators a filter
// condition can carry (spec §3).
type FilterOp int

const (
	OpEq FilterOp = iota
	OpNe
	OpGt
	OpGte
	OpLt
	OpLte
	OpRegex
	OpIn
	OpContains
	OpStartsWith
	OpExists
)

var filterOpMnemonics = [...]string{
	OpEq:         "$eq",
	OpNe:         "$ne",
	OpGt:         "$gt",
	OpGte:        "$gte",
	OpLt:         "$lt",
	OpLte:        "$lte",
	OpRegex:      "$regex",
	OpIn:         "$in",
	OpContains:   "$contains",
	OpStartsWith: "$startsWith",
	OpExists:     "$exists",
}

// Mnemonic returns the canonical JSON key for op, e.g. "$eq".
func (op FilterOp) Mnemonic() string {
	if int(op) < 0 || int(op) >= len(filterOpMnemonics) {
		return "$eq"
	}
	return filterOpMnemonics[op]
}

// LogicOp describes how a FilterExpr connects to the *next* filter in
// the list, not the previous one; the last filter always carries
// LogicNone.
type LogicOp int

const (
	LogicNone LogicOp = iota
	LogicAnd
	LogicOr
)

// FilterExpr is one filter condition.
type FilterExpr struct {
	Field string
	Op    FilterOp
	Value Value
	Logic LogicOp
}

// OrderDirection is asc or desc.
type OrderDirection int

const (
	OrderAsc OrderDirection = iota
	OrderDesc
)

func (d OrderDirection) String() string {
	if d == OrderDesc {
		return "desc"
	}
	return "asc"
}

// OrderBy is one ordering entry.
type OrderBy struct {
	Field     string
	Direction OrderDirection
}

// AggFunc is the closed set of aggregate functions (spec §3).
type AggFunc int

const (
	AggCount AggFunc = iota
	AggSum
	AggAvg
	AggMin
	AggMax
)

var aggFuncMnemonics = [...]string{
	AggCount: "$count",
	AggSum:   "$sum",
	AggAvg:   "$avg",
	AggMin:   "$min",
	AggMax:   "$max",
}

func (f AggFunc) Mnemonic() string {
	if int(f) < 0 || int(f) >= len(aggFuncMnemonics) {
		return "$count"
	}
	return aggFuncMnemonics[f]
}

// Aggregation names one output column computed by a function over an
// optional field; count carries no field.
type Aggregation struct {
	OutputName string
	Func       AggFunc
	Field      string
}

// MutationKind tags which mutation a Mutation variant holds.
type MutationKind int

const (
	MutationInsert MutationKind = iota
	MutationUpdate
	MutationDelete
)

// Mutation is the tagged {insert(bytes), update(bytes), delete}
// variant from spec §3. Payload is the opaque document encoding the
// builder already produced; it is unused for MutationDelete.
type Mutation struct {
	Kind    MutationKind
	Payload []byte
}

// QueryType is the optional query_type the IR can carry.
type QueryType int

const (
	QuerySelect QueryType = iota
	QueryCount
	QueryExists
	QueryAggregate
)
