package queryir_test

import (
	"testing"

	"github.com/shinydb/shinydb-go/internal/errors"
	"github.com/shinydb/shinydb-go/queryir"
	"github.com/shinydb/shinydb-go/wire"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	lastOp wire.Operation
	reply  wire.Reply
	err    error
}

func (f *fakeExecutor) DoOperation(op wire.Operation) (*wire.Packet, error) {
	f.lastOp = op
	if f.err != nil {
		return nil, f.err
	}
	return &wire.Packet{Op: wire.Operation{Kind: wire.OpReply, Reply: f.reply}}, nil
}

func TestBuilder_NoSpaceSpecified(t *testing.T) {
	exec := &fakeExecutor{}
	_, err := queryir.New(exec).Where("x", queryir.OpEq, queryir.IntValue(1)).Run()
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrNoSpaceSpecified))
}

func TestBuilder_NoOperation(t *testing.T) {
	exec := &fakeExecutor{}
	_, err := queryir.New(exec).Space("a").Run()
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrNoOperation))
}

func TestBuilder_QueryDispatch(t *testing.T) {
	exec := &fakeExecutor{reply: wire.Reply{Status: wire.StatusOK, Payload: []byte(`[]`)}}
	resp, err := queryir.New(exec).
		Space("adventureworks").Store("products").
		Where("MakeFlag", queryir.OpEq, queryir.IntValue(1)).
		And("ListPrice", queryir.OpGt, queryir.IntValue(100)).
		OrderBy("ListPrice", queryir.OrderDesc).
		Limit(10).
		Run()
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, wire.OpQuery, exec.lastOp.Kind)
	require.Equal(t, "adventureworks.products", exec.lastOp.Namespace)
	require.Contains(t, string(exec.lastOp.Payload), `"MakeFlag":{"$eq":1}`)
}

func TestBuilder_ScanTakesPrecedenceOverFilters(t *testing.T) {
	exec := &fakeExecutor{reply: wire.Reply{Status: wire.StatusOK}}
	_, err := queryir.New(exec).
		Space("a").
		Where("f", queryir.OpEq, queryir.IntValue(1)).
		Scan(100, nil).
		Run()
	require.NoError(t, err)
	require.Equal(t, wire.OpScan, exec.lastOp.Kind)
	require.EqualValues(t, 100, exec.lastOp.ScanCount)
}

func TestBuilder_ReadByIDPrecedesMutation(t *testing.T) {
	id := wire.NewDocID()
	exec := &fakeExecutor{reply: wire.Reply{Status: wire.StatusOK}}
	_, err := queryir.New(exec).
		Space("a").
		ReadByID(id).
		Delete().
		Run()
	require.NoError(t, err)
	require.Equal(t, wire.OpRead, exec.lastOp.Kind)
	require.Equal(t, id, exec.lastOp.ID)
}

func TestBuilder_DeleteMutation(t *testing.T) {
	exec := &fakeExecutor{reply: wire.Reply{Status: wire.StatusOK}}
	_, err := queryir.New(exec).
		Space("orders").
		Where("status", queryir.OpEq, queryir.StringValue("cancelled")).
		Delete().
		Run()
	require.NoError(t, err)
	require.Equal(t, wire.OpDelete, exec.lastOp.Kind)
}

func TestBuilder_UpdateAlwaysSendsNilID(t *testing.T) {
	exec := &fakeExecutor{reply: wire.Reply{Status: wire.StatusOK}}
	_, err := queryir.New(exec).
		Space("a").
		Update([]byte("doc")).
		Run()
	require.NoError(t, err)
	require.Equal(t, wire.OpUpdate, exec.lastOp.Kind)
	require.True(t, exec.lastOp.ID.IsNil())
}

func TestBuilder_FailureStatusMapsToOperationError(t *testing.T) {
	id := wire.NewDocID()
	exec := &fakeExecutor{reply: wire.Reply{Status: wire.StatusNotFound}}
	_, err := queryir.New(exec).Space("a").ReadByID(id).Run()
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrDocumentNotFound))
}

func TestBuilder_ScanNotFoundMapsToDocumentNotFound(t *testing.T) {
	exec := &fakeExecutor{reply: wire.Reply{Status: wire.StatusNotFound}}
	_, err := queryir.New(exec).Space("a").Scan(100, nil).Run()
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrDocumentNotFound))
}

func TestBuilder_ScanOtherFailureMapsToScanFailed(t *testing.T) {
	exec := &fakeExecutor{reply: wire.Reply{Status: wire.StatusServerError}}
	_, err := queryir.New(exec).Space("a").Scan(100, nil).Run()
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrScanFailed))
}

func TestBuilder_AggregateDispatch(t *testing.T) {
	exec := &fakeExecutor{reply: wire.Reply{Status: wire.StatusOK, Payload: []byte(`{}`)}}
	_, err := queryir.New(exec).
		Space("sales").Store("orders").
		GroupByField("EmployeeID").
		CountAgg("order_count").
		SumAgg("total_revenue", "TotalDue").
		Run()
	require.NoError(t, err)
	require.Equal(t, wire.OpAggregate, exec.lastOp.Kind)
	require.Contains(t, string(exec.lastOp.Payload), `"group_by":["EmployeeID"]`)
}
