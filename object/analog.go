package object

import (
	"encoding/binary"
	"math"

	"github.com/rob-gra/go-dnp3/dnperr"
)

// analogLayout describes how to decode one fixed-width analog value
// field: which wire kind it is, whether a leading flag byte and/or a
// trailing 48-bit time field are present.
type analogLayout struct {
	kind    byte // 1: int32, 2: int16, 3: float32, 4: float64
	hasFlag bool
	hasTime bool
}

var analogInputLayouts = map[byte]analogLayout{
	1: {kind: 1, hasFlag: true},
	2: {kind: 2, hasFlag: true},
	3: {kind: 1, hasFlag: false},
	4: {kind: 2, hasFlag: false},
	5: {kind: 3, hasFlag: true},
	6: {kind: 4, hasFlag: true},
}

var analogInputEventLayouts = map[byte]analogLayout{
	1: {kind: 1, hasFlag: true},
	2: {kind: 2, hasFlag: true},
	3: {kind: 1, hasFlag: true, hasTime: true},
	4: {kind: 2, hasFlag: true, hasTime: true},
}

var analogOutputLayouts = map[byte]analogLayout{
	1: {kind: 1, hasFlag: true},
	2: {kind: 2, hasFlag: true},
	3: {kind: 3, hasFlag: true},
	4: {kind: 4, hasFlag: true},
}

func decodeAnalogValue(kind byte, data []byte) AnalogValue {
	switch kind {
	case 1:
		return Int32Value(int32(binary.LittleEndian.Uint32(data)))
	case 2:
		return Int16Value(int16(binary.LittleEndian.Uint16(data)))
	case 3:
		return Float32Value(math.Float32frombits(binary.LittleEndian.Uint32(data)))
	default:
		return Float64Value(math.Float64frombits(binary.LittleEndian.Uint64(data)))
	}
}

func valueWidth(kind byte) int {
	switch kind {
	case 1, 3:
		return 4
	case 2:
		return 2
	default:
		return 8
	}
}

// DecodeAnalogInputs decodes count analog input objects (group 30,
// variations 1-6).
func DecodeAnalogInputs(variation byte, startIndex uint16, count int, data []byte) ([]AnalogInput, error) {
	layout, ok := analogInputLayouts[variation]
	if !ok {
		return nil, &dnperr.ObjectError{Group: byte(GroupAnalogInput), Variation: variation, Reason: "unsupported variation"}
	}
	_, width, err := ObjectSize(byte(GroupAnalogInput), variation)
	if err != nil {
		return nil, err
	}
	if len(data) < count*width {
		return nil, &dnperr.ObjectError{Group: byte(GroupAnalogInput), Variation: variation, Reason: "short payload"}
	}
	out := make([]AnalogInput, count)
	for i := 0; i < count; i++ {
		off := i * width
		p := off
		var flags Flags
		if layout.hasFlag {
			flags = Flags(data[p])
			p++
		}
		out[i] = AnalogInput{
			Index: startIndex + uint16(i),
			Value: decodeAnalogValue(layout.kind, data[p:p+valueWidth(layout.kind)]),
			Flags: flags,
		}
	}
	return out, nil
}

// DecodeAnalogInputEvents decodes count analog input event objects
// (group 32, variations 1-4).
func DecodeAnalogInputEvents(variation byte, startIndex uint16, count int, data []byte) ([]AnalogInputEvent, error) {
	layout, ok := analogInputEventLayouts[variation]
	if !ok {
		return nil, &dnperr.ObjectError{Group: byte(GroupAnalogInputEvent), Variation: variation, Reason: "unsupported variation"}
	}
	_, width, err := ObjectSize(byte(GroupAnalogInputEvent), variation)
	if err != nil {
		return nil, err
	}
	if len(data) < count*width {
		return nil, &dnperr.ObjectError{Group: byte(GroupAnalogInputEvent), Variation: variation, Reason: "short payload"}
	}
	out := make([]AnalogInputEvent, count)
	for i := 0; i < count; i++ {
		off := i * width
		p := off
		var flags Flags
		if layout.hasFlag {
			flags = Flags(data[p])
			p++
		}
		vw := valueWidth(layout.kind)
		ev := AnalogInputEvent{
			Index: startIndex + uint16(i),
			Value: decodeAnalogValue(layout.kind, data[p:p+vw]),
			Flags: flags,
		}
		p += vw
		if layout.hasTime {
			ev.Time = ParseTime48(data[p : p+6])
			ev.HasTime = true
		}
		out[i] = ev
	}
	return out, nil
}

// DecodeAnalogOutputStatus decodes count analog output status objects
// (group 40, variations 1-4).
func DecodeAnalogOutputStatus(variation byte, startIndex uint16, count int, data []byte) ([]AnalogOutputStatus, error) {
	layout, ok := analogOutputLayouts[variation]
	if !ok {
		return nil, &dnperr.ObjectError{Group: byte(GroupAnalogOutputStatus), Variation: variation, Reason: "unsupported variation"}
	}
	_, width, err := ObjectSize(byte(GroupAnalogOutputStatus), variation)
	if err != nil {
		return nil, err
	}
	if len(data) < count*width {
		return nil, &dnperr.ObjectError{Group: byte(GroupAnalogOutputStatus), Variation: variation, Reason: "short payload"}
	}
	out := make([]AnalogOutputStatus, count)
	for i := 0; i < count; i++ {
		off := i * width
		p := off
		var flags Flags
		if layout.hasFlag {
			flags = Flags(data[p])
			p++
		}
		out[i] = AnalogOutputStatus{
			Index: startIndex + uint16(i),
			Value: decodeAnalogValue(layout.kind, data[p:p+valueWidth(layout.kind)]),
			Flags: flags,
		}
	}
	return out, nil
}
