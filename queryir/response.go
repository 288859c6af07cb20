package queryir

import (
	"github.com/shinydb/shinydb-go/internal/errors"
	"github.com/shinydb/shinydb-go/wire"
)

// QueryResponse is the result of running a Builder, grounded on spec
// §4.8's {success, data, count} result shape. Unlike the source's
// allocator-owned buffer, Data here is a plain Go byte slice the
// garbage collector reclaims; there is no separate free step.
type QueryResponse struct {
	Success bool
	Data    []byte
	Count   uint32
}

// failureCode maps a non-ok reply, encountered while running the
// component named by component, to its operation-specific error code
// (spec §4.8 "Response handling"). A StatusNotFound reply to "read" or
// "scan" always maps to ErrDocumentNotFound ahead of the per-component
// fallback — spec.md's error handling design states this as an
// invariant ("Scan/Read against a missing document maps to
// DocumentNotFound"), not just an informal listing.
func failureCode(component string, status wire.Status) errors.Code {
	if status == wire.StatusNotFound && (component == "read" || component == "scan") {
		return errors.ErrDocumentNotFound
	}
	switch component {
	case "read":
		return errors.ErrDocumentNotFound
	case "update":
		return errors.ErrUpdateFailed
	case "delete":
		return errors.ErrDeleteFailed
	case "query":
		return errors.ErrQueryFailed
	case "aggregate":
		return errors.ErrAggregateFailed
	case "scan":
		return errors.ErrScanFailed
	default:
		return errors.ErrOperationFailed
	}
}
