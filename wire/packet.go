package wire

// MaxPayloadLength is the 16 MiB frame cap from spec §4.1/§4.2: any
// declared frame length over this is rejected before a read is even
// attempted, and any packet whose internal Length field would exceed
// it is rejected the same way.
const MaxPayloadLength = 16 * 1024 * 1024

// Packet is the wire-level envelope carried by every request and
// response (spec §4.1). Checksum and Length are filled by Encode and
// are not re-validated against the frame's own length prefix on
// decode — per spec §9's discussion of fields the source computes but
// does not meaningfully use for matching, these are placeholders that
// a future revision of the wire format could start enforcing.
type Packet struct {
	Checksum      uint32
	Length        uint32
	PacketID      uint32
	SessionID     uint32
	CorrelationID uint64
	TimestampMS   uint64
	Op            Operation
}
