package appl

import "github.com/rob-gra/go-dnp3/dnperr"

// ReadSpec is one object header to include in a READ request: either
// an explicit index range, or (WholeClass) a class/integrity read
// with no range.
type ReadSpec struct {
	Group      byte
	Variation  byte
	Start      uint16
	Stop       uint16
	WholeClass bool
}

// BuildReadRequest builds a READ APDU (FIR=FIN=1, CON=0, UNS=0) over
// one or more object specs.
func BuildReadRequest(seq byte, specs []ReadSpec) ([]byte, error) {
	if err := validateSeq(seq); err != nil {
		return nil, err
	}
	ac := Control{FIR: true, FIN: true, Seq: seq}
	buf := []byte{ac.Value(), FuncRead}
	for _, s := range specs {
		if s.WholeClass {
			buf = append(buf, ClassHeader(s.Group, s.Variation)...)
			continue
		}
		hdr, err := RangeHeader(s.Group, s.Variation, s.Start, s.Stop)
		if err != nil {
			return nil, err
		}
		buf = append(buf, hdr...)
	}
	return buf, nil
}

// buildControlRequest builds a SELECT/OPERATE/DIRECT_OPERATE APDU
// addressing a single point: qualifier 0x17, count=1, one record of
// (1-byte index, commandData).
func buildControlRequest(function, seq byte, group, variation byte, index uint16, commandData []byte) ([]byte, error) {
	if err := validateSeq(seq); err != nil {
		return nil, err
	}
	if index > 255 {
		return nil, &dnperr.ValidationError{Field: "index", Reason: "must be 0-255 for an indexed control record"}
	}
	ac := Control{FIR: true, FIN: true, Seq: seq}
	buf := []byte{ac.Value(), function}
	buf = append(buf, IndexedHeader(group, variation, 1)...)
	buf = append(buf, byte(index))
	buf = append(buf, commandData...)
	return buf, nil
}

// BuildDirectOperate builds a DIRECT_OPERATE control APDU.
func BuildDirectOperate(seq byte, group, variation byte, index uint16, commandData []byte) ([]byte, error) {
	return buildControlRequest(FuncDirectOperate, seq, group, variation, index, commandData)
}

// BuildSelect builds a SELECT control APDU, the first half of a
// select-before-operate sequence.
func BuildSelect(seq byte, group, variation byte, index uint16, commandData []byte) ([]byte, error) {
	return buildControlRequest(FuncSelect, seq, group, variation, index, commandData)
}

// BuildOperate builds an OPERATE control APDU, the second half of a
// select-before-operate sequence.
func BuildOperate(seq byte, group, variation byte, index uint16, commandData []byte) ([]byte, error) {
	return buildControlRequest(FuncOperate, seq, group, variation, index, commandData)
}

// BuildWriteRequest builds a WRITE APDU over a single object range
// whose encoded data is supplied by the caller (e.g. clearing IIN bits
// via a group 80 write is the common use, not otherwise implemented by
// this driver beyond framing it).
func BuildWriteRequest(seq byte, group, variation byte, start, stop uint16, data []byte) ([]byte, error) {
	if err := validateSeq(seq); err != nil {
		return nil, err
	}
	hdr, err := RangeHeader(group, variation, start, stop)
	if err != nil {
		return nil, err
	}
	ac := Control{FIR: true, FIN: true, Seq: seq}
	buf := []byte{ac.Value(), FuncWrite}
	buf = append(buf, hdr...)
	buf = append(buf, data...)
	return buf, nil
}

// BuildConfirm builds an application-layer CONFIRM with no objects.
func BuildConfirm(seq byte) ([]byte, error) {
	if err := validateSeq(seq); err != nil {
		return nil, err
	}
	ac := Control{FIR: true, FIN: true, Seq: seq}
	return []byte{ac.Value(), FuncConfirm}, nil
}
