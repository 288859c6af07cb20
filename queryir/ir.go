package queryir

import "github.com/shinydb/shinydb-go/wire"

// QueryIR is the typed description of a query or mutation before it's
// serialized to the server's query JSON dialect (spec §3). Every
// field besides Filters is optional; a zero-value QueryIR is the
// empty query the builder starts from.
type QueryIR struct {
	Space *string
	Store *string

	Filters      []FilterExpr
	Projection   []string
	OrderBy      []OrderBy
	Limit        *uint32
	Skip         *uint32
	GroupBy      []string
	Aggregations []Aggregation
	Mutation     *Mutation
	QueryType    *QueryType
	DocID        *wire.DocID
}

// HasFilters reports whether the IR carries at least one filter.
func (ir *QueryIR) HasFilters() bool {
	return len(ir.Filters) > 0
}

// HasModifiers reports whether any of limit/skip/ordering/projection/
// store is set — the set of conditions spec §4.8's run() dispatch
// step 5 checks alongside non-empty filters.
func (ir *QueryIR) HasModifiers() bool {
	return ir.Limit != nil || ir.Skip != nil || len(ir.OrderBy) > 0 ||
		len(ir.Projection) > 0 || ir.Store != nil
}

// IsEmpty reports whether the IR has nothing at all to execute:
// no filters, no modifiers, no aggregations, and no mutation.
func (ir *QueryIR) IsEmpty() bool {
	return !ir.HasFilters() && !ir.HasModifiers() &&
		len(ir.Aggregations) == 0 && ir.Mutation == nil
}

// Namespace joins space[.store[.index]] in order, per spec §4.8.
// index is passed separately since QueryIR itself only carries
// space/store; the builder supplies index when present.
func Namespace(space, store, index string) string {
	ns := space
	if store != "" {
		ns += "." + store
	}
	if index != "" {
		ns += "." + index
	}
	return ns
}
