package object

import (
	"encoding/binary"
	"time"
)

// Flags is the one-byte quality descriptor attached to most static
// and event objects. For binary-type objects bit7 carries the point
// value itself; for analog-type objects all eight bits are quality
// bits and the value follows in a separate field.
type Flags byte

// Quality bits common to binary and analog flags.
const (
	FlagOnline       Flags = 1 << 0
	FlagRestart      Flags = 1 << 1
	FlagCommLost     Flags = 1 << 2
	FlagRemoteForced Flags = 1 << 3
	FlagLocalForced  Flags = 1 << 4
	// FlagChatterFilter (binary) / FlagOverRange (analog) share bit 5.
	FlagChatterFilter Flags = 1 << 5
	FlagOverRange     Flags = 1 << 5
	// Bit 6 is reserved for binary objects; FlagReference is its analog meaning.
	FlagReference Flags = 1 << 6
	// FlagState (binary only) is bit 7: the point's boolean value.
	FlagState Flags = 1 << 7
)

func (f Flags) Online() bool       { return f&FlagOnline != 0 }
func (f Flags) Restart() bool      { return f&FlagRestart != 0 }
func (f Flags) CommLost() bool     { return f&FlagCommLost != 0 }
func (f Flags) Forced() bool       { return f&(FlagRemoteForced|FlagLocalForced) != 0 }
func (f Flags) State() bool        { return f&FlagState != 0 }
func (f Flags) WithState(v bool) Flags {
	if v {
		return f | FlagState
	}
	return f &^ FlagState
}

// BinaryInput is a static single-bit point (group 1).
type BinaryInput struct {
	Index uint16
	Value bool
	Flags Flags
}

// BinaryInputEvent is a change-of-state event (group 2).
type BinaryInputEvent struct {
	Index   uint16
	Value   bool
	Flags   Flags
	Time    time.Time
	HasTime bool
}

// BinaryOutputStatus is a static feedback point for a control output
// (group 10).
type BinaryOutputStatus struct {
	Index uint16
	Value bool
	Flags Flags
}

// Counter is a static accumulator reading (group 20).
type Counter struct {
	Index   uint16
	Value   uint32
	Flags   Flags
	Is16Bit bool
}

// CounterEvent is a frozen/rolled-over counter event (group 22).
type CounterEvent struct {
	Index   uint16
	Value   uint32
	Flags   Flags
	Is16Bit bool
}

// AnalogValue is a tagged union over the four analog wire widths DNP3
// supports for measured values and setpoints (g40/g41 variations 1-4;
// the g30/g32 layouts use the same widths): signed 32-bit, signed
// 16-bit, IEEE-754 float32 and float64.
type AnalogValue struct {
	Variation byte
	asInt32   int32
	asInt16   int16
	asFloat32 float32
	asFloat64 float64
}

// Int32Value builds an AnalogValue carried as a signed 32-bit integer
// (variation 1 of g30/g40/g41).
func Int32Value(v int32) AnalogValue { return AnalogValue{Variation: 1, asInt32: v} }

// Int16Value builds an AnalogValue carried as a signed 16-bit integer.
func Int16Value(v int16) AnalogValue { return AnalogValue{Variation: 2, asInt16: v} }

// Float32Value builds an AnalogValue carried as an IEEE-754 float32.
func Float32Value(v float32) AnalogValue { return AnalogValue{Variation: 3, asFloat32: v} }

// Float64Value builds an AnalogValue carried as an IEEE-754 float64.
func Float64Value(v float64) AnalogValue { return AnalogValue{Variation: 4, asFloat64: v} }

// Float64 returns the value widened to float64 regardless of the
// wire variation it was decoded from or constructed with.
func (a AnalogValue) Float64() float64 {
	switch a.Variation {
	case 1:
		return float64(a.asInt32)
	case 2:
		return float64(a.asInt16)
	case 3:
		return float64(a.asFloat32)
	case 4:
		return a.asFloat64
	default:
		return 0
	}
}

// Int32 returns the value as a signed 32-bit integer; valid only when
// Variation == 1.
func (a AnalogValue) Int32() int32 { return a.asInt32 }

// Int16 returns the value as a signed 16-bit integer; valid only when
// Variation == 2.
func (a AnalogValue) Int16() int16 { return a.asInt16 }

// AnalogInput is a static measured value (group 30).
type AnalogInput struct {
	Index uint16
	Value AnalogValue
	Flags Flags
}

// AnalogInputEvent is a measured-value event (group 32).
type AnalogInputEvent struct {
	Index   uint16
	Value   AnalogValue
	Flags   Flags
	Time    time.Time
	HasTime bool
}

// AnalogOutputStatus is a static feedback point for an analog output
// (group 40).
type AnalogOutputStatus struct {
	Index uint16
	Value AnalogValue
	Flags Flags
}

// dnpEpoch is the DNP3 absolute-time epoch: 1970-01-01 UTC, the same
// as the Unix epoch. DNP3 timestamps are 48-bit little-endian
// milliseconds since this epoch.
var dnpEpoch = time.Unix(0, 0).UTC()

// ParseTime48 decodes a 6-byte little-endian millisecond timestamp.
func ParseTime48(b []byte) time.Time {
	var buf [8]byte
	copy(buf[:6], b[:6])
	ms := binary.LittleEndian.Uint64(buf[:])
	return dnpEpoch.Add(time.Duration(ms) * time.Millisecond)
}

// AppendTime48 appends the 6-byte little-endian millisecond encoding
// of t to dst.
func AppendTime48(dst []byte, t time.Time) []byte {
	ms := uint64(t.Sub(dnpEpoch) / time.Millisecond)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], ms)
	return append(dst, buf[:6]...)
}
