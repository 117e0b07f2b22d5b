package object

import (
	"encoding/binary"
	"math"

	"github.com/rob-gra/go-dnp3/dnperr"
)

// OpType is the control-code operation-type field (bits 0-3) of a
// CROB control code.
type OpType byte

// OpType values, see companion standard object group 12.
const (
	OpNul      OpType = 0x00
	OpPulseOn  OpType = 0x01
	OpPulseOff OpType = 0x02
	OpLatchOn  OpType = 0x03
	OpLatchOff OpType = 0x04
)

// TripCloseCode is the trip/close selector (bits 5-6) of a CROB
// control code.
type TripCloseCode byte

const (
	TCCNul   TripCloseCode = 0
	TCCClose TripCloseCode = 1
	TCCTrip  TripCloseCode = 2
)

// ControlCode is the first byte of a CROB (group 12 variation 1):
// latch/pulse/trip/close/queue/clear selectors packed into a single
// byte.
type ControlCode struct {
	Op    OpType
	TCC   TripCloseCode
	Queue bool
	Clear bool
}

// Value encodes the control code to its wire byte.
func (c ControlCode) Value() byte {
	v := byte(c.Op) & 0x0f
	v |= (byte(c.TCC) & 0x03) << 5
	if c.Queue {
		v |= 0x10
	}
	if c.Clear {
		v |= 0x80
	}
	return v
}

// ParseControlCode decodes a wire control-code byte.
func ParseControlCode(b byte) ControlCode {
	return ControlCode{
		Op:    OpType(b & 0x0f),
		TCC:   TripCloseCode((b >> 5) & 0x03),
		Queue: b&0x10 != 0,
		Clear: b&0x80 != 0,
	}
}

// Convenience control codes matching the spec's "common values".
var (
	ControlCodeNul      = ControlCode{Op: OpNul}
	ControlCodePulseOn  = ControlCode{Op: OpPulseOn}
	ControlCodePulseOff = ControlCode{Op: OpPulseOff}
	ControlCodeLatchOn  = ControlCode{Op: OpLatchOn}
	ControlCodeLatchOff = ControlCode{Op: OpLatchOff}
)

// CROB is the 11-byte Control Relay Output Block (group 12,
// variation 1).
type CROB struct {
	Code    ControlCode
	Count   byte
	OnTime  uint32 // milliseconds
	OffTime uint32 // milliseconds
	Status  byte
}

// Encode renders the CROB to its 11-byte wire form.
func (c CROB) Encode() []byte {
	b := make([]byte, 11)
	b[0] = c.Code.Value()
	b[1] = c.Count
	binary.LittleEndian.PutUint32(b[2:6], c.OnTime)
	binary.LittleEndian.PutUint32(b[6:10], c.OffTime)
	b[10] = c.Status
	return b
}

// DecodeCROB parses an 11-byte CROB.
func DecodeCROB(data []byte) (CROB, error) {
	if len(data) < 11 {
		return CROB{}, &dnperr.ObjectError{Group: byte(GroupCROB), Variation: 1, Reason: "short payload"}
	}
	return CROB{
		Code:    ParseControlCode(data[0]),
		Count:   data[1],
		OnTime:  binary.LittleEndian.Uint32(data[2:6]),
		OffTime: binary.LittleEndian.Uint32(data[6:10]),
		Status:  data[10],
	}, nil
}

// AnalogOutputCommand is an analog-output command block (group 41,
// variations 1-4): a value of the variation's width followed by a
// 1-byte status.
type AnalogOutputCommand struct {
	Value  AnalogValue
	Status byte
}

// Encode renders the command to its wire form for the given
// variation (1: int32, 2: int16, 3: float32, 4: float64).
func (c AnalogOutputCommand) Encode(variation byte) ([]byte, error) {
	switch variation {
	case 1:
		b := make([]byte, 5)
		binary.LittleEndian.PutUint32(b[0:4], uint32(c.Value.Int32()))
		b[4] = c.Status
		return b, nil
	case 2:
		b := make([]byte, 3)
		binary.LittleEndian.PutUint16(b[0:2], uint16(c.Value.Int16()))
		b[2] = c.Status
		return b, nil
	case 3:
		b := make([]byte, 5)
		binary.LittleEndian.PutUint32(b[0:4], math.Float32bits(float32(c.Value.Float64())))
		b[4] = c.Status
		return b, nil
	case 4:
		b := make([]byte, 9)
		binary.LittleEndian.PutUint64(b[0:8], math.Float64bits(c.Value.Float64()))
		b[8] = c.Status
		return b, nil
	default:
		return nil, &dnperr.ObjectError{Group: byte(GroupAnalogOutputCommand), Variation: variation, Reason: "unsupported variation"}
	}
}

// DecodeAnalogOutputCommand parses an analog-output command block of
// the given variation.
func DecodeAnalogOutputCommand(variation byte, data []byte) (AnalogOutputCommand, error) {
	_, width, err := ObjectSize(byte(GroupAnalogOutputCommand), variation)
	if err != nil {
		return AnalogOutputCommand{}, err
	}
	if len(data) < width {
		return AnalogOutputCommand{}, &dnperr.ObjectError{Group: byte(GroupAnalogOutputCommand), Variation: variation, Reason: "short payload"}
	}
	kind := analogOutputLayouts[variation].kind
	vw := valueWidth(kind)
	return AnalogOutputCommand{
		Value:  decodeAnalogValue(kind, data[:vw]),
		Status: data[vw],
	}, nil
}
