package wire

import (
	"github.com/google/uuid"
)

// DocID is the 128-bit document identifier the wire protocol passes
// directly on Read, Insert, Delete, and Scan operations. It reuses
// google/uuid's 16-byte array representation; ShinyDB document ids are
// not required to be RFC 4122 UUIDs, but the array layout and parsing
// conveniences are a natural fit.
type DocID [16]byte

// NilDocID is the zero-value id, used as a sentinel for "no id set".
var NilDocID DocID

// NewDocID generates a random 128-bit id.
func NewDocID() DocID {
	return DocID(uuid.New())
}

// ParseDocID parses the canonical hyphenated hex form into a DocID.
func ParseDocID(s string) (DocID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return NilDocID, err
	}
	return DocID(u), nil
}

// String renders the id in canonical hyphenated hex form.
func (d DocID) String() string {
	return uuid.UUID(d).String()
}

// IsNil reports whether d is the zero value.
func (d DocID) IsNil() bool {
	return d == NilDocID
}
