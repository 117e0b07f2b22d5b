package appl

import (
	"encoding/binary"

	"github.com/rob-gra/go-dnp3/dnperr"
)

// Qualifier codes this driver understands.
const (
	QualifierRange1Byte byte = 0x00
	QualifierRange2Byte byte = 0x01
	QualifierAllObjects byte = 0x06
	QualifierCount1Byte byte = 0x07
	QualifierIndexed    byte = 0x17
)

// ObjectHeader is a parsed 3-byte (group, variation, qualifier) header
// plus whatever range/count information its qualifier carries.
type ObjectHeader struct {
	Group      byte
	Variation  byte
	Qualifier  byte
	StartIndex uint16
	Count      int
	Indexed    bool // qualifier 0x17: Data holds count*(1-byte index + object) records
}

// RangeHeader encodes a group/variation header addressing the
// inclusive index range [start, stop], choosing qualifier 0x01 when
// either bound needs more than one byte, else 0x00.
func RangeHeader(group, variation byte, start, stop uint16) ([]byte, error) {
	if stop < start {
		return nil, &dnperr.ValidationError{Field: "range", Reason: "stop must be >= start"}
	}
	if start >= 256 || stop >= 256 {
		b := make([]byte, 7)
		b[0], b[1], b[2] = group, variation, QualifierRange2Byte
		binary.LittleEndian.PutUint16(b[3:5], start)
		binary.LittleEndian.PutUint16(b[5:7], stop)
		return b, nil
	}
	return []byte{group, variation, QualifierRange1Byte, byte(start), byte(stop)}, nil
}

// ClassHeader encodes a whole-class object header (qualifier 0x06, no
// range, no data) used for class/integrity reads.
func ClassHeader(group, variation byte) []byte {
	return []byte{group, variation, QualifierAllObjects}
}

// IndexedHeader encodes a qualifier-0x17 header for count records,
// each to be followed by a 1-byte index and the object's fixed-width
// data.
func IndexedHeader(group, variation byte, count byte) []byte {
	return []byte{group, variation, QualifierIndexed, count}
}

// ParseObjectHeader decodes one object header from the front of data,
// returning the header and the number of bytes consumed (the 3-byte
// header plus whatever range/count field the qualifier defines).
// Qualifier 0x17 and 0x07 consume only the header and count byte;
// the caller reads the following object data itself since its width
// depends on the object's group/variation.
func ParseObjectHeader(data []byte) (ObjectHeader, int, error) {
	if len(data) < 3 {
		return ObjectHeader{}, 0, &dnperr.ProtocolError{Reason: "truncated object header"}
	}
	group, variation, qualifier := data[0], data[1], data[2]

	switch qualifier {
	case QualifierRange1Byte:
		if len(data) < 5 {
			return ObjectHeader{}, 0, &dnperr.ProtocolError{Reason: "truncated 1-byte range header"}
		}
		start, stop := uint16(data[3]), uint16(data[4])
		if stop < start {
			return ObjectHeader{}, 0, &dnperr.ProtocolError{Reason: "range stop < start"}
		}
		return ObjectHeader{Group: group, Variation: variation, Qualifier: qualifier, StartIndex: start, Count: int(stop-start) + 1}, 5, nil

	case QualifierRange2Byte:
		if len(data) < 7 {
			return ObjectHeader{}, 0, &dnperr.ProtocolError{Reason: "truncated 2-byte range header"}
		}
		start := binary.LittleEndian.Uint16(data[3:5])
		stop := binary.LittleEndian.Uint16(data[5:7])
		if stop < start {
			return ObjectHeader{}, 0, &dnperr.ProtocolError{Reason: "range stop < start"}
		}
		return ObjectHeader{Group: group, Variation: variation, Qualifier: qualifier, StartIndex: start, Count: int(stop-start) + 1}, 7, nil

	case QualifierAllObjects:
		return ObjectHeader{Group: group, Variation: variation, Qualifier: qualifier}, 3, nil

	case QualifierCount1Byte:
		if len(data) < 4 {
			return ObjectHeader{}, 0, &dnperr.ProtocolError{Reason: "truncated count header"}
		}
		return ObjectHeader{Group: group, Variation: variation, Qualifier: qualifier, Count: int(data[3])}, 4, nil

	case QualifierIndexed:
		if len(data) < 4 {
			return ObjectHeader{}, 0, &dnperr.ProtocolError{Reason: "truncated indexed header"}
		}
		return ObjectHeader{Group: group, Variation: variation, Qualifier: qualifier, Count: int(data[3]), Indexed: true}, 4, nil

	default:
		return ObjectHeader{}, 0, &dnperr.ObjectError{Group: group, Variation: variation, Reason: "unsupported qualifier"}
	}
}
