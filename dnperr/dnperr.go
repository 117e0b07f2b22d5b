// Package dnperr defines the DNP3 master error taxonomy.
//
// Every failure path in crc, object, dlink, transport, appl and master
// returns one of these types instead of an opaque error string, so a
// caller can use errors.As to recover the context a layer collected
// (host/port, expected/actual CRC, function code/IIN, group/variation,
// status code) and so the master coordinator can decide whether a
// failure is retriable without string-matching.
package dnperr

import "fmt"

// CommunicationError reports a socket connect/read/write failure.
// Retriable.
type CommunicationError struct {
	Host string
	Port int
	Op   string
	Err  error
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("dnp3: communication error talking to %s:%d (%s): %v", e.Host, e.Port, e.Op, e.Err)
}

func (e *CommunicationError) Unwrap() error { return e.Err }

// TimeoutError reports a response or reassembly deadline exceeded.
// Retriable.
type TimeoutError struct {
	TimeoutSeconds float64
	Op             string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("dnp3: timeout after %.3fs (%s)", e.TimeoutSeconds, e.Op)
}

// CRCError reports a header or block CRC mismatch. Not retriable.
type CRCError struct {
	Expected uint16
	Actual   uint16
	Where    string
}

func (e *CRCError) Error() string {
	return fmt.Sprintf("dnp3: crc mismatch in %s: expected %#04x, got %#04x", e.Where, e.Expected, e.Actual)
}

// FrameError reports bad start bytes, a length mismatch, or an address
// mismatch in an FT3 frame. Not retriable.
type FrameError struct {
	Reason string
}

func (e *FrameError) Error() string { return "dnp3: frame error: " + e.Reason }

// ProtocolError reports a transport reassembly violation, an
// unexpected function code, or an IIN rejection bit set. Not
// retriable.
type ProtocolError struct {
	FunctionCode byte
	IIN1         byte
	IIN2         byte
	Reason       string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("dnp3: protocol error: %s (function=%#02x iin1=%#02x iin2=%#02x)",
		e.Reason, e.FunctionCode, e.IIN1, e.IIN2)
}

// ObjectError reports an unsupported or malformed object block. Not
// retriable.
type ObjectError struct {
	Group     byte
	Variation byte
	Reason    string
}

func (e *ObjectError) Error() string {
	return fmt.Sprintf("dnp3: object error: group=%d variation=%d: %s", e.Group, e.Variation, e.Reason)
}

// ControlError reports a non-zero CROB/AOC status echoed in a
// control response. Not retriable.
type ControlError struct {
	StatusCode byte
}

func (e *ControlError) Error() string {
	return fmt.Sprintf("dnp3: control operation rejected, status=%d (%s)", e.StatusCode, ControlStatusName(e.StatusCode))
}

// ControlStatusName renders a CROB/AOC status byte as its standard
// mnemonic.
func ControlStatusName(status byte) string {
	switch status {
	case 0:
		return "SUCCESS"
	case 1:
		return "TIMEOUT"
	case 2:
		return "NO_SELECT"
	case 3:
		return "FORMAT_ERROR"
	case 4:
		return "NOT_SUPPORTED"
	case 5:
		return "ALREADY_ACTIVE"
	case 6:
		return "HARDWARE_ERROR"
	case 7:
		return "LOCAL"
	case 8:
		return "TOO_MANY_OPS"
	case 9:
		return "NOT_AUTHORIZED"
	case 10:
		return "AUTOMATION_INHIBIT"
	case 11:
		return "PROCESSING_LIMITED"
	case 12:
		return "OUT_OF_RANGE"
	case 126:
		return "NOT_EXECUTED"
	default:
		return "UNKNOWN"
	}
}

// ValidationError reports a bad argument at a config or API boundary.
// Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dnp3: invalid %s: %s", e.Field, e.Reason)
}

// Retriable reports whether err is a class the master coordinator may
// retry: communication failures and response/reassembly timeouts.
// CRC, frame, protocol, object, control and validation errors are
// never retried.
func Retriable(err error) bool {
	switch err.(type) {
	case *CommunicationError, *TimeoutError:
		return true
	default:
		return false
	}
}
