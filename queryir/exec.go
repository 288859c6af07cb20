package queryir

import (
	"github.com/shinydb/shinydb-go/internal/errors"
	"github.com/shinydb/shinydb-go/wire"
)

// runMutation sends ir's mutation as the matching Insert/Update/Delete
// operation. id is the document id to attach to Delete (Update always
// transmits NilDocID per the reproduced spec §9 open question).
func runMutation(executor Executor, ns string, m *Mutation, id wire.DocID) (*QueryResponse, error) {
	switch m.Kind {
	case MutationInsert:
		return runAndInterpret(executor, wire.Operation{
			Kind: wire.OpInsert, Namespace: ns, Payload: m.Payload,
		}, "insert")
	case MutationUpdate:
		return runAndInterpret(executor, wire.Operation{
			Kind: wire.OpUpdate, Namespace: ns, ID: wire.NilDocID, Payload: m.Payload,
		}, "update")
	case MutationDelete:
		return runAndInterpret(executor, wire.Operation{
			Kind: wire.OpDelete, Namespace: ns, ID: id,
		}, "delete")
	default:
		return nil, errors.New(errors.ErrNoOperation, "unrecognized mutation kind")
	}
}

// runAndInterpret sends op and turns a non-ok reply into the
// component-specific error; on success the payload bytes are already
// a freshly decoded, independently owned slice (wire.DecodePacket
// copies out of the transport's receive buffer), so QueryResponse.Data
// safely outlives the next ReceiveAsync call.
func runAndInterpret(executor Executor, op wire.Operation, component string) (*QueryResponse, error) {
	packet, err := executor.DoOperation(op)
	if err != nil {
		return nil, err
	}
	if !packet.Op.Reply.Status.OK() {
		return nil, errors.New(failureCode(component, packet.Op.Reply.Status), "operation failed with status "+packet.Op.Reply.Status.String())
	}
	return &QueryResponse{Success: true, Data: packet.Op.Reply.Payload}, nil
}

// RunIR executes ir directly against executor, for the text query
// surface: queryparser.Parser never sets a scan or read-by-id
// operation (the grammar has no syntax for either), so only the
// mutation, aggregate, and filter/modifier query branches of the
// fluent Builder's precedence apply here (spec §4.10).
func RunIR(executor Executor, ir *QueryIR) (*QueryResponse, error) {
	space := ""
	if ir.Space != nil {
		space = *ir.Space
	}
	if space == "" {
		return nil, errors.New(errors.ErrNoSpaceSpecified, "parsed query has no space set")
	}
	store := ""
	if ir.Store != nil {
		store = *ir.Store
	}
	ns := Namespace(space, store, "")

	switch {
	case ir.Mutation != nil:
		id := wire.NilDocID
		if ir.DocID != nil {
			id = *ir.DocID
		}
		return runMutation(executor, ns, ir.Mutation, id)

	case len(ir.Aggregations) > 0:
		payload, err := Serialize(ir)
		if err != nil {
			return nil, err
		}
		return runAndInterpret(executor, wire.Operation{
			Kind: wire.OpAggregate, Namespace: ns, Payload: payload,
		}, "aggregate")

	case ir.HasFilters() || ir.HasModifiers():
		payload, err := Serialize(ir)
		if err != nil {
			return nil, err
		}
		return runAndInterpret(executor, wire.Operation{
			Kind: wire.OpQuery, Namespace: ns, Payload: payload,
		}, "query")

	default:
		return nil, errors.New(errors.ErrNoOperation, "parsed query has no mutation, filters, or modifiers")
	}
}
