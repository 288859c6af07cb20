package wire

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/shinydb/shinydb-go/internal/errors"
)

// cursorWriter accumulates an encoded packet body. It is the encode-side
// counterpart to cursorReader, grounded on the teacher's writeInt8/
// writeInt16/writeInt64 helpers (wireprotocol/wireprimitives.go) but
// collected into a single reusable type rather than free functions.
type cursorWriter struct {
	buf []byte
}

func (w *cursorWriter) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *cursorWriter) u16(v uint16) { w.buf = appendUint16(w.buf, v) }
func (w *cursorWriter) u32(v uint32) { w.buf = appendUint32(w.buf, v) }
func (w *cursorWriter) u64(v uint64) { w.buf = appendUint64(w.buf, v) }

func (w *cursorWriter) bytes16(b []byte) {
	w.u16(uint16(len(b)))
	w.buf = append(w.buf, b...)
}

func (w *cursorWriter) bytes32(b []byte) {
	w.u32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}

func (w *cursorWriter) str(s string) {
	w.bytes16([]byte(s))
}

func (w *cursorWriter) docID(id DocID) {
	w.buf = append(w.buf, id[:]...)
}

func (w *cursorWriter) optionalDocID(id *DocID) {
	if id == nil {
		w.u8(0)
		return
	}
	w.u8(1)
	w.docID(*id)
}

func appendUint16(b []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendUint32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendUint64(b []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(b, tmp[:]...)
}

// cursorReader walks a decode buffer, failing with ErrInvalidResponse
// as soon as a read would run past the end rather than panicking on a
// truncated or malformed packet.
type cursorReader struct {
	buf []byte
	pos int
}

func (r *cursorReader) need(n int) error {
	if r.pos+n > len(r.buf) {
		return errors.New(errors.ErrInvalidResponse, "truncated packet")
	}
	return nil
}

func (r *cursorReader) u8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *cursorReader) u16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *cursorReader) u32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *cursorReader) u64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

func (r *cursorReader) bytes16() ([]byte, error) {
	n, err := r.u16()
	if err != nil {
		return nil, err
	}
	if err := r.need(int(n)); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, r.buf[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return b, nil
}

func (r *cursorReader) bytes32() ([]byte, error) {
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	if n > MaxPayloadLength {
		return nil, errors.New(errors.ErrInvalidResponse, "payload exceeds maximum frame size")
	}
	if err := r.need(int(n)); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, r.buf[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return b, nil
}

func (r *cursorReader) str() (string, error) {
	b, err := r.bytes16()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *cursorReader) docID() (DocID, error) {
	if err := r.need(16); err != nil {
		return NilDocID, err
	}
	var id DocID
	copy(id[:], r.buf[r.pos:r.pos+16])
	r.pos += 16
	return id, nil
}

func (r *cursorReader) optionalDocID() (*DocID, error) {
	flag, err := r.u8()
	if err != nil {
		return nil, err
	}
	if flag == 0 {
		return nil, nil
	}
	id, err := r.docID()
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (r *cursorReader) remaining() []byte {
	return r.buf[r.pos:]
}

func (r *cursorReader) atEnd() bool {
	return r.pos == len(r.buf)
}

// encodeOperation writes the tag byte and the operation-specific
// fields for op into w.
func encodeOperation(w *cursorWriter, op Operation) error {
	w.u8(uint8(op.Kind))
	switch op.Kind {
	case OpInsert:
		w.str(op.Namespace)
		w.docID(op.ID)
		w.bytes32(op.Payload)
	case OpRead:
		w.str(op.Namespace)
		w.docID(op.ID)
	case OpUpdate:
		w.str(op.Namespace)
		w.docID(op.ID)
		w.bytes32(op.Payload)
	case OpDelete:
		w.str(op.Namespace)
		w.docID(op.ID)
	case OpQuery, OpAggregate:
		w.str(op.Namespace)
		w.bytes32(op.Payload)
	case OpScan:
		w.str(op.Namespace)
		w.u32(op.ScanCount)
		w.optionalDocID(op.ScanStartKey)
	case OpCreate:
		w.str(op.EntityKind)
		w.str(op.EntityName)
		w.bytes32(op.Payload)
	case OpDrop:
		w.str(op.EntityKind)
		w.str(op.EntityName)
	case OpList:
		w.str(op.EntityKind)
		w.str(op.Namespace)
	case OpFlush, OpLogout:
		// no fields
	case OpAuthenticate:
		w.str(op.Username)
		w.str(op.Password)
	case OpAuthenticateAPIKey:
		w.str(op.APIKey)
	case OpReply:
		w.u8(uint8(op.Reply.Status))
		w.bytes32(op.Reply.Payload)
	default:
		return errors.New(errors.ErrInvalidRequest, "unknown operation kind")
	}
	return nil
}

func decodeOperation(r *cursorReader) (Operation, error) {
	tagByte, err := r.u8()
	if err != nil {
		return Operation{}, err
	}
	kind := Kind(tagByte)
	if !kind.IsValid() {
		return Operation{}, errors.New(errors.ErrInvalidResponse, "unrecognized operation variant")
	}
	op := Operation{Kind: kind}
	var decodeErr error
	switch kind {
	case OpInsert, OpUpdate:
		op.Namespace, decodeErr = r.str()
		if decodeErr == nil {
			op.ID, decodeErr = r.docID()
		}
		if decodeErr == nil {
			op.Payload, decodeErr = r.bytes32()
		}
	case OpRead, OpDelete:
		op.Namespace, decodeErr = r.str()
		if decodeErr == nil {
			op.ID, decodeErr = r.docID()
		}
	case OpQuery, OpAggregate:
		op.Namespace, decodeErr = r.str()
		if decodeErr == nil {
			op.Payload, decodeErr = r.bytes32()
		}
	case OpScan:
		op.Namespace, decodeErr = r.str()
		if decodeErr == nil {
			op.ScanCount, decodeErr = r.u32()
		}
		if decodeErr == nil {
			op.ScanStartKey, decodeErr = r.optionalDocID()
		}
	case OpCreate:
		op.EntityKind, decodeErr = r.str()
		if decodeErr == nil {
			op.EntityName, decodeErr = r.str()
		}
		if decodeErr == nil {
			op.Payload, decodeErr = r.bytes32()
		}
	case OpDrop:
		op.EntityKind, decodeErr = r.str()
		if decodeErr == nil {
			op.EntityName, decodeErr = r.str()
		}
	case OpList:
		op.EntityKind, decodeErr = r.str()
		if decodeErr == nil {
			op.Namespace, decodeErr = r.str()
		}
	case OpFlush, OpLogout:
		// no fields
	case OpAuthenticate:
		op.Username, decodeErr = r.str()
		if decodeErr == nil {
			op.Password, decodeErr = r.str()
		}
	case OpAuthenticateAPIKey:
		op.APIKey, decodeErr = r.str()
	case OpReply:
		var statusByte uint8
		statusByte, decodeErr = r.u8()
		if decodeErr == nil {
			op.Reply.Status = Status(statusByte)
			op.Reply.Payload, decodeErr = r.bytes32()
		}
	}
	if decodeErr != nil {
		return Operation{}, decodeErr
	}
	return op, nil
}

// EncodePacket serializes p into its wire form, including the 4-byte
// little-endian frame length prefix (spec §4.1): the returned slice is
// ready to write directly to the connection.
func EncodePacket(p *Packet) ([]byte, error) {
	return EncodePacketInto(nil, p)
}

// EncodePacketInto serializes p the same way as EncodePacket but
// appends onto dst, letting a caller reuse a scratch buffer across
// sends (spec §4.2 step 3, "serialize packet into a reusable encoding
// buffer") instead of allocating a fresh slice per operation. dst[:0]
// is the caller's responsibility; the returned slice may share dst's
// backing array.
func EncodePacketInto(dst []byte, p *Packet) ([]byte, error) {
	body := &cursorWriter{}
	body.u32(p.PacketID)
	body.u32(p.SessionID)
	body.u64(p.CorrelationID)
	body.u64(p.TimestampMS)
	if err := encodeOperation(body, p.Op); err != nil {
		return nil, err
	}

	if len(body.buf) > MaxPayloadLength {
		return nil, errors.New(errors.ErrInvalidRequest, "encoded packet exceeds maximum frame size")
	}

	p.Length = uint32(len(body.buf))
	p.Checksum = crc32.ChecksumIEEE(body.buf)

	packetLen := 8 + len(body.buf)
	dst = appendUint32(dst, uint32(packetLen))
	dst = appendUint32(dst, p.Checksum)
	dst = appendUint32(dst, p.Length)
	dst = append(dst, body.buf...)
	return dst, nil
}

// DecodePacket parses a Packet from data — the frame payload with the
// 4-byte length prefix already stripped off by the transport.
func DecodePacket(data []byte) (*Packet, error) {
	r := &cursorReader{buf: data}

	checksum, err := r.u32()
	if err != nil {
		return nil, err
	}
	length, err := r.u32()
	if err != nil {
		return nil, err
	}
	if length > MaxPayloadLength {
		return nil, errors.New(errors.ErrInvalidResponse, "declared payload length exceeds maximum frame size")
	}

	p := &Packet{Checksum: checksum, Length: length}

	p.PacketID, err = r.u32()
	if err != nil {
		return nil, err
	}
	p.SessionID, err = r.u32()
	if err != nil {
		return nil, err
	}
	p.CorrelationID, err = r.u64()
	if err != nil {
		return nil, err
	}
	p.TimestampMS, err = r.u64()
	if err != nil {
		return nil, err
	}
	p.Op, err = decodeOperation(r)
	if err != nil {
		return nil, err
	}
	if !r.atEnd() {
		return nil, errors.New(errors.ErrInvalidResponse, "trailing bytes after packet body")
	}
	return p, nil
}
