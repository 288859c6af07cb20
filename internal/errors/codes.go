package errors

// Codes is the closed set of error codes the client can return. Every
// error the transport, resilience, and queryir packages produce is coded
// with one of these via New/Wrap so callers can branch on Is(err, code)
// instead of string matching. The query parser's own parse-error codes
// are defined in queryparser/errors.go.
const (
	// Transport
	ErrConnectionFailed  Code = "ConnectionFailed"
	ErrConnectionReset   Code = "ConnectionReset"
	ErrConnectionRefused Code = "ConnectionRefused"
	ErrNetworkError      Code = "NetworkError"

	// Timeout
	ErrTimeout      Code = "Timeout"
	ErrReadTimeout  Code = "ReadTimeout"
	ErrWriteTimeout Code = "WriteTimeout"

	// Protocol
	ErrInvalidResponse Code = "InvalidResponse"
	ErrInvalidRequest  Code = "InvalidRequest"
	ErrProtocolError   Code = "ProtocolError"

	// Backpressure
	ErrPipelineFull    Code = "PipelineFull"
	ErrBufferOverflow  Code = "BufferOverflow"

	// Service
	ErrServerError        Code = "ServerError"
	ErrServiceUnavailable Code = "ServiceUnavailable"
	ErrNotFound           Code = "NotFound"
	ErrPermissionDenied   Code = "PermissionDenied"

	// Operation-specific
	ErrOperationFailed  Code = "OperationFailed"
	ErrDocumentNotFound Code = "DocumentNotFound"
	ErrUpdateFailed     Code = "UpdateFailed"
	ErrDeleteFailed     Code = "DeleteFailed"
	ErrQueryFailed      Code = "QueryFailed"
	ErrAggregateFailed  Code = "AggregateFailed"
	ErrScanFailed       Code = "ScanFailed"
	ErrNoOperation      Code = "NoOperation"
	ErrNoSpaceSpecified Code = "NoSpaceSpecified"
)

// retryable is the closed set of codes §4.4 of the spec marks eligible
// for backoff retry.
var retryable = map[Code]bool{
	ErrConnectionFailed:   true,
	ErrConnectionReset:    true,
	ErrConnectionRefused:  true,
	ErrNetworkError:       true,
	ErrTimeout:            true,
	ErrReadTimeout:        true,
	ErrWriteTimeout:       true,
	ErrPipelineFull:       true,
	ErrBufferOverflow:     true,
	ErrServerError:        true,
	ErrServiceUnavailable: true,
}

// connectivityLoss is the subset of retryable codes that additionally
// trigger a reconnect attempt before the next retry iteration.
var connectivityLoss = map[Code]bool{
	ErrConnectionFailed:  true,
	ErrConnectionReset:   true,
	ErrConnectionRefused: true,
	ErrNetworkError:      true,
}

// CodeOf returns the Code carried by err, or ErrUncoded if err does not
// wrap a codedError produced by this package.
func CodeOf(err error) Code {
	cause := Cause(err)
	if ce, ok := cause.(codedError); ok {
		return ce.Code
	}
	return ErrUncoded
}

// IsRetryable reports whether err is eligible for backoff retry per the
// closed set in spec §4.4. Codes outside the set (InvalidResponse,
// InvalidRequest, ProtocolError, NotFound, PermissionDenied, and all
// operation-specific codes) are permanent.
func IsRetryable(err error) bool {
	return retryable[CodeOf(err)]
}

// IsConnectivityLoss reports whether err indicates the connection itself
// is gone, which the resilient wrapper treats as a signal to reconnect.
func IsConnectivityLoss(err error) bool {
	return connectivityLoss[CodeOf(err)]
}

// IsTimeout reports whether err is one of the three timeout variants.
func IsTimeout(err error) bool {
	switch CodeOf(err) {
	case ErrTimeout, ErrReadTimeout, ErrWriteTimeout:
		return true
	default:
		return false
	}
}
