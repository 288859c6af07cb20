package wire

// Kind tags the variant an Operation carries, mirroring the closed set
// of request/response shapes the server understands (spec §4.1).
type Kind uint8

const (
	OpInsert Kind = iota
	OpRead
	OpUpdate
	OpDelete
	OpQuery
	OpAggregate
	OpScan
	OpCreate
	OpDrop
	OpList
	OpFlush
	OpAuthenticate
	OpAuthenticateAPIKey
	OpLogout
	OpReply
)

var kindNames = [...]string{
	OpInsert:             "Insert",
	OpRead:                "Read",
	OpUpdate:              "Update",
	OpDelete:              "Delete",
	OpQuery:               "Query",
	OpAggregate:           "Aggregate",
	OpScan:                "Scan",
	OpCreate:              "Create",
	OpDrop:                "Drop",
	OpList:                "List",
	OpFlush:               "Flush",
	OpAuthenticate:        "Authenticate",
	OpAuthenticateAPIKey:  "AuthenticateApiKey",
	OpLogout:              "Logout",
	OpReply:               "Reply",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Unknown"
}

// IsValid reports whether k is one of the recognized variants. The
// codec rejects any other tag byte with ErrInvalidResponse.
func (k Kind) IsValid() bool {
	return int(k) < len(kindNames) && kindNames[k] != ""
}

// Reply is the payload carried by an OpReply operation: a status and
// an optional opaque response body (already-serialized query JSON,
// a raw document, or nothing for operations with no return value).
type Reply struct {
	Status  Status
	Payload []byte
}

// Operation is the tagged request/response variant a Packet carries.
// Only the fields relevant to Kind are populated; the rest are zero
// values. This mirrors the server's wire shape rather than modeling
// each variant as a distinct Go type, because the codec needs a single
// concrete type to switch on Kind for encode/decode.
type Operation struct {
	Kind Kind

	// Namespace is the dotted "space[.store[.index]]" path, set on
	// Insert, Read, Update, Delete, Query, Aggregate, Scan, and List.
	Namespace string

	// ID is the direct document id used by Read, Insert, and Delete.
	// Per spec §9, Update always transmits a zero ID; only insert,
	// delete, and read propagate a real one.
	ID DocID

	// Payload is the opaque body: a document encoding for Insert and
	// Update, or the serialized query JSON for Query and Aggregate.
	Payload []byte

	// ScanCount and ScanStartKey carry Scan's pagination parameters.
	ScanCount    uint32
	ScanStartKey *DocID

	// EntityKind and EntityName carry Create/Drop/List's target, e.g.
	// EntityKind "index" EntityName "products".
	EntityKind string
	EntityName string

	// Username/Password/APIKey carry Authenticate/AuthenticateApiKey.
	Username string
	Password string
	APIKey   string

	// Reply is populated only when Kind == OpReply.
	Reply Reply
}
