package appl

import "github.com/rob-gra/go-dnp3/dnperr"
import "github.com/rob-gra/go-dnp3/object"

// ObjectBlock is one parsed object header plus its raw payload bytes.
// For Indexed blocks (qualifier 0x17), Data holds Count records of
// (1-byte index + object-width bytes) back to back; callers that need
// per-record indices must walk it against the catalog width
// themselves (see master's decode helpers).
type ObjectBlock struct {
	Group      byte
	Variation  byte
	Qualifier  byte
	StartIndex uint16
	Count      int
	Indexed    bool
	Data       []byte
}

// Response is a fully parsed application-layer response APDU.
type Response struct {
	AC      Control
	Function byte
	IIN     IIN
	Objects []ObjectBlock
}

// ParseResponse parses a complete reassembled APDU as a response:
// application control byte, function code, IIN, then zero or more
// object blocks. It rejects outstation-signaled protocol errors
// (NO_FUNC_CODE_SUPPORT, OBJECT_UNKNOWN, PARAMETER_ERROR) before
// attempting to parse any object data, since the IIN bits alone
// already indicate the objects section may be absent or malformed.
func ParseResponse(apdu []byte) (*Response, error) {
	if len(apdu) < 4 {
		return nil, &dnperr.ProtocolError{Reason: "APDU shorter than the fixed AC+function+IIN header"}
	}
	ac := ParseControl(apdu[0])
	function := apdu[1]
	iin := IIN{IIN1: apdu[2], IIN2: apdu[3]}

	if iin.Rejected() {
		return nil, &dnperr.ProtocolError{FunctionCode: function, IIN1: iin.IIN1, IIN2: iin.IIN2, Reason: "outstation rejected request"}
	}

	rest := apdu[4:]
	var blocks []ObjectBlock
	for len(rest) > 0 {
		hdr, consumed, err := ParseObjectHeader(rest)
		if err != nil {
			return nil, err
		}
		rest = rest[consumed:]

		kind, width, err := object.ObjectSize(hdr.Group, hdr.Variation)
		if err != nil {
			return nil, err
		}

		var need int
		switch {
		case hdr.Indexed:
			if kind != object.SizeFixed {
				return nil, &dnperr.ProtocolError{Reason: "indexed qualifier used with a non-fixed-width object type"}
			}
			need = hdr.Count * (1 + width)
		case kind == object.SizeBitPacked:
			need = (hdr.Count + 7) / 8
		case kind == object.SizeNoData:
			need = 0
		default:
			need = hdr.Count * width
		}

		if len(rest) < need {
			return nil, &dnperr.ProtocolError{Reason: "object data shorter than header's declared range/count"}
		}
		data := rest[:need]
		rest = rest[need:]

		blocks = append(blocks, ObjectBlock{
			Group:      hdr.Group,
			Variation:  hdr.Variation,
			Qualifier:  hdr.Qualifier,
			StartIndex: hdr.StartIndex,
			Count:      hdr.Count,
			Indexed:    hdr.Indexed,
			Data:       data,
		})
	}

	return &Response{AC: ac, Function: function, IIN: iin, Objects: blocks}, nil
}
