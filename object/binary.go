package object

import "github.com/rob-gra/go-dnp3/dnperr"

// DecodeBinaryInputs decodes count binary input objects of the given
// variation starting at startIndex from data.
func DecodeBinaryInputs(variation byte, startIndex uint16, count int, data []byte) ([]BinaryInput, error) {
	switch variation {
	case 1:
		need := bitsToBytes(count)
		if len(data) < need {
			return nil, &dnperr.ObjectError{Group: byte(GroupBinaryInput), Variation: variation, Reason: "short payload"}
		}
		out := make([]BinaryInput, count)
		for i := 0; i < count; i++ {
			byteIdx, bit := i/8, uint(i%8)
			v := data[byteIdx]&(1<<bit) != 0
			out[i] = BinaryInput{Index: startIndex + uint16(i), Value: v}
		}
		return out, nil
	case 2:
		if len(data) < count {
			return nil, &dnperr.ObjectError{Group: byte(GroupBinaryInput), Variation: variation, Reason: "short payload"}
		}
		out := make([]BinaryInput, count)
		for i := 0; i < count; i++ {
			f := Flags(data[i])
			out[i] = BinaryInput{Index: startIndex + uint16(i), Value: f.State(), Flags: f}
		}
		return out, nil
	default:
		return nil, &dnperr.ObjectError{Group: byte(GroupBinaryInput), Variation: variation, Reason: "unsupported variation"}
	}
}

// DecodeBinaryInputEvents decodes count binary input event objects.
func DecodeBinaryInputEvents(variation byte, startIndex uint16, count int, data []byte) ([]BinaryInputEvent, error) {
	_, width, err := ObjectSize(byte(GroupBinaryInputEvent), variation)
	if err != nil {
		return nil, err
	}
	if len(data) < count*width {
		return nil, &dnperr.ObjectError{Group: byte(GroupBinaryInputEvent), Variation: variation, Reason: "short payload"}
	}
	out := make([]BinaryInputEvent, count)
	for i := 0; i < count; i++ {
		off := i * width
		f := Flags(data[off])
		ev := BinaryInputEvent{Index: startIndex + uint16(i), Value: f.State(), Flags: f}
		if variation == 2 {
			ev.Time = ParseTime48(data[off+1 : off+7])
			ev.HasTime = true
		}
		out[i] = ev
	}
	return out, nil
}

// DecodeBinaryOutputStatus decodes count binary output status
// objects.
func DecodeBinaryOutputStatus(variation byte, startIndex uint16, count int, data []byte) ([]BinaryOutputStatus, error) {
	switch variation {
	case 1:
		need := bitsToBytes(count)
		if len(data) < need {
			return nil, &dnperr.ObjectError{Group: byte(GroupBinaryOutputStatus), Variation: variation, Reason: "short payload"}
		}
		out := make([]BinaryOutputStatus, count)
		for i := 0; i < count; i++ {
			byteIdx, bit := i/8, uint(i%8)
			v := data[byteIdx]&(1<<bit) != 0
			out[i] = BinaryOutputStatus{Index: startIndex + uint16(i), Value: v}
		}
		return out, nil
	case 2:
		if len(data) < count {
			return nil, &dnperr.ObjectError{Group: byte(GroupBinaryOutputStatus), Variation: variation, Reason: "short payload"}
		}
		out := make([]BinaryOutputStatus, count)
		for i := 0; i < count; i++ {
			f := Flags(data[i])
			out[i] = BinaryOutputStatus{Index: startIndex + uint16(i), Value: f.State(), Flags: f}
		}
		return out, nil
	default:
		return nil, &dnperr.ObjectError{Group: byte(GroupBinaryOutputStatus), Variation: variation, Reason: "unsupported variation"}
	}
}
