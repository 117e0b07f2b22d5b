package object

import (
	"encoding/binary"

	"github.com/rob-gra/go-dnp3/dnperr"
)

// DecodeCounters decodes count counter objects of the given
// variation (1, 2, 5 or 6).
func DecodeCounters(variation byte, startIndex uint16, count int, data []byte) ([]Counter, error) {
	_, width, err := ObjectSize(byte(GroupCounter), variation)
	if err != nil {
		return nil, err
	}
	if len(data) < count*width {
		return nil, &dnperr.ObjectError{Group: byte(GroupCounter), Variation: variation, Reason: "short payload"}
	}
	is16 := variation == 2 || variation == 6
	hasFlag := variation == 1 || variation == 2
	out := make([]Counter, count)
	for i := 0; i < count; i++ {
		off := i * width
		c := Counter{Index: startIndex + uint16(i), Is16Bit: is16}
		p := off
		if hasFlag {
			c.Flags = Flags(data[p])
			p++
		}
		if is16 {
			c.Value = uint32(binary.LittleEndian.Uint16(data[p:]))
		} else {
			c.Value = binary.LittleEndian.Uint32(data[p:])
		}
		out[i] = c
	}
	return out, nil
}

// DecodeCounterEvents decodes count counter event objects (variation
// 1 or 2).
func DecodeCounterEvents(variation byte, startIndex uint16, count int, data []byte) ([]CounterEvent, error) {
	_, width, err := ObjectSize(byte(GroupCounterEvent), variation)
	if err != nil {
		return nil, err
	}
	if len(data) < count*width {
		return nil, &dnperr.ObjectError{Group: byte(GroupCounterEvent), Variation: variation, Reason: "short payload"}
	}
	is16 := variation == 2
	out := make([]CounterEvent, count)
	for i := 0; i < count; i++ {
		off := i * width
		flags := Flags(data[off])
		var value uint32
		if is16 {
			value = uint32(binary.LittleEndian.Uint16(data[off+1:]))
		} else {
			value = binary.LittleEndian.Uint32(data[off+1:])
		}
		out[i] = CounterEvent{Index: startIndex + uint16(i), Value: value, Flags: flags, Is16Bit: is16}
	}
	return out, nil
}
