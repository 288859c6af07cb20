package queryir

import (
	"github.com/shinydb/shinydb-go/internal/errors"
	"github.com/shinydb/shinydb-go/wire"
)

// Executor is the narrow surface a Builder needs from a connected
// client: run one operation and get its reply. resilience.Client
// satisfies this without queryir needing to import it, avoiding an
// import cycle between this package and the root client package.
type Executor interface {
	DoOperation(op wire.Operation) (*wire.Packet, error)
}

// Builder is the fluent query-construction API, grounded on the
// teacher's chainable client.Index/client.Field methods (client/orm.go)
// — every mutator returns the same Builder so calls chain left to
// right, per spec §4.8.
type Builder struct {
	executor Executor

	space string
	store string
	index string

	ir QueryIR

	readByID     *wire.DocID
	scanCount    *uint32
	scanStartKey *wire.DocID
}

// New starts an empty Builder bound to executor.
func New(executor Executor) *Builder {
	return &Builder{executor: executor}
}

func (b *Builder) Space(name string) *Builder {
	b.space = name
	b.ir.Space = &b.space
	return b
}

func (b *Builder) Store(name string) *Builder {
	b.store = name
	b.ir.Store = &b.store
	return b
}

func (b *Builder) Index(name string) *Builder {
	b.index = name
	return b
}

// Where appends a filter with LogicNone.
func (b *Builder) Where(field string, op FilterOp, value Value) *Builder {
	b.ir.Filters = append(b.ir.Filters, FilterExpr{Field: field, Op: op, Value: value, Logic: LogicNone})
	return b
}

// And sets the logic of the most recently appended filter to
// LogicAnd, then appends a new filter with LogicNone.
func (b *Builder) And(field string, op FilterOp, value Value) *Builder {
	if n := len(b.ir.Filters); n > 0 {
		b.ir.Filters[n-1].Logic = LogicAnd
	}
	b.ir.Filters = append(b.ir.Filters, FilterExpr{Field: field, Op: op, Value: value, Logic: LogicNone})
	return b
}

// Or is symmetric to And, using LogicOr.
func (b *Builder) Or(field string, op FilterOp, value Value) *Builder {
	if n := len(b.ir.Filters); n > 0 {
		b.ir.Filters[n-1].Logic = LogicOr
	}
	b.ir.Filters = append(b.ir.Filters, FilterExpr{Field: field, Op: op, Value: value, Logic: LogicNone})
	return b
}

// OrderBy replaces the ordering with a single-entry list (the source
// only supports one ordering clause via the fluent API).
func (b *Builder) OrderBy(field string, direction OrderDirection) *Builder {
	b.ir.OrderBy = []OrderBy{{Field: field, Direction: direction}}
	return b
}

func (b *Builder) Limit(n uint32) *Builder {
	b.ir.Limit = &n
	return b
}

func (b *Builder) Skip(n uint32) *Builder {
	b.ir.Skip = &n
	return b
}

func (b *Builder) Select(fields ...string) *Builder {
	b.ir.Projection = fields
	return b
}

func (b *Builder) GroupByField(field string) *Builder {
	b.ir.GroupBy = append(b.ir.GroupBy, field)
	return b
}

func (b *Builder) CountAgg(outputName string) *Builder {
	b.ir.Aggregations = append(b.ir.Aggregations, Aggregation{OutputName: outputName, Func: AggCount})
	return b
}

func (b *Builder) SumAgg(outputName, field string) *Builder {
	b.ir.Aggregations = append(b.ir.Aggregations, Aggregation{OutputName: outputName, Func: AggSum, Field: field})
	return b
}

func (b *Builder) AvgAgg(outputName, field string) *Builder {
	b.ir.Aggregations = append(b.ir.Aggregations, Aggregation{OutputName: outputName, Func: AggAvg, Field: field})
	return b
}

func (b *Builder) MinAgg(outputName, field string) *Builder {
	b.ir.Aggregations = append(b.ir.Aggregations, Aggregation{OutputName: outputName, Func: AggMin, Field: field})
	return b
}

func (b *Builder) MaxAgg(outputName, field string) *Builder {
	b.ir.Aggregations = append(b.ir.Aggregations, Aggregation{OutputName: outputName, Func: AggMax, Field: field})
	return b
}

// Create stores a pre-encoded document as an insert mutation. BSON
// document encoding is an opaque collaborator per spec §1 — callers
// encode the document themselves and hand this Builder the bytes.
func (b *Builder) Create(encoded []byte) *Builder {
	b.ir.Mutation = &Mutation{Kind: MutationInsert, Payload: encoded}
	return b
}

func (b *Builder) Update(encoded []byte) *Builder {
	b.ir.Mutation = &Mutation{Kind: MutationUpdate, Payload: encoded}
	return b
}

func (b *Builder) Delete() *Builder {
	b.ir.Mutation = &Mutation{Kind: MutationDelete}
	return b
}

func (b *Builder) ReadByID(id wire.DocID) *Builder {
	b.readByID = &id
	return b
}

func (b *Builder) Scan(count uint32, startKey *wire.DocID) *Builder {
	b.scanCount = &count
	b.scanStartKey = startKey
	return b
}

// namespace joins space[.store[.index]], failing NoSpaceSpecified if
// space was never set (spec §4.8). This check runs ahead of Run's
// precedence switch, so a builder with neither a space nor any
// operation set reports NoSpaceSpecified rather than NoOperation — the
// spec doesn't order these two failures relative to each other.
func (b *Builder) namespace() (string, error) {
	if b.space == "" {
		return "", errors.New(errors.ErrNoSpaceSpecified, "builder has no space set")
	}
	return Namespace(b.space, b.store, b.index), nil
}

// Run dispatches by precedence — scan, then read-by-id, then
// mutation, then aggregate, then query, else NoOperation — and
// inspects the reply status, mapping a non-ok status to the
// component-specific failure spec §4.8 names.
func (b *Builder) Run() (*QueryResponse, error) {
	ns, err := b.namespace()
	if err != nil {
		return nil, err
	}

	switch {
	case b.scanCount != nil:
		return runAndInterpret(b.executor, wire.Operation{
			Kind: wire.OpScan, Namespace: ns, ScanCount: *b.scanCount, ScanStartKey: b.scanStartKey,
		}, "scan")

	case b.readByID != nil:
		return runAndInterpret(b.executor, wire.Operation{
			Kind: wire.OpRead, Namespace: ns, ID: *b.readByID,
		}, "read")

	case b.ir.Mutation != nil:
		id := wire.NilDocID
		if b.readByID != nil {
			id = *b.readByID
		}
		return runMutation(b.executor, ns, b.ir.Mutation, id)

	case len(b.ir.Aggregations) > 0:
		payload, serErr := Serialize(&b.ir)
		if serErr != nil {
			return nil, serErr
		}
		return runAndInterpret(b.executor, wire.Operation{
			Kind: wire.OpAggregate, Namespace: ns, Payload: payload,
		}, "aggregate")

	case b.ir.HasFilters() || b.ir.HasModifiers():
		payload, serErr := Serialize(&b.ir)
		if serErr != nil {
			return nil, serErr
		}
		return runAndInterpret(b.executor, wire.Operation{
			Kind: wire.OpQuery, Namespace: ns, Payload: payload,
		}, "query")

	default:
		return nil, errors.New(errors.ErrNoOperation, "builder has no mutation, scan, read-by-id, filters, or modifiers set")
	}
}
