// Package appl implements the DNP3 Application Layer: the
// application control byte, object headers across the supported
// qualifier codes, internal indications, and request/response
// framing built on top of the object catalog.
//
// The control-byte/IIN split mirrors the teacher's asdu identifier
// split (VariableStruct + CauseOfTransmission as two packed control
// bytes preceding the information objects), generalized from IEC
// 60870-5-101's ASDU header to DNP3's single application-control byte
// plus function code plus two-byte IIN.
package appl

import "github.com/rob-gra/go-dnp3/dnperr"

// Function codes (IEEE Std 1815, application layer).
const (
	FuncConfirm             byte = 0x00
	FuncRead                byte = 0x01
	FuncWrite               byte = 0x02
	FuncSelect              byte = 0x03
	FuncOperate             byte = 0x04
	FuncDirectOperate       byte = 0x05
	FuncDirectOperateNoResp byte = 0x06
	FuncResponse            byte = 0x81
	FuncUnsolicitedResponse byte = 0x82
)

// Control is the application control (AC) byte: FIR/FIN/CON/UNS flags
// packed with a 4-bit sequence number.
type Control struct {
	FIR bool
	FIN bool
	CON bool
	UNS bool
	Seq byte // 0-15
}

// Value encodes the control byte.
func (c Control) Value() byte {
	v := c.Seq & 0x0f
	if c.UNS {
		v |= 0x10
	}
	if c.CON {
		v |= 0x20
	}
	if c.FIN {
		v |= 0x40
	}
	if c.FIR {
		v |= 0x80
	}
	return v
}

// ParseControl decodes an application control byte.
func ParseControl(b byte) Control {
	return Control{
		FIR: b&0x80 != 0,
		FIN: b&0x40 != 0,
		CON: b&0x20 != 0,
		UNS: b&0x10 != 0,
		Seq: b & 0x0f,
	}
}

func validateSeq(seq byte) error {
	if seq > 0x0f {
		return &dnperr.ValidationError{Field: "sequence", Reason: "must be 0-15"}
	}
	return nil
}

// IIN is the two-byte Internal Indications field carried by every
// response.
type IIN struct {
	IIN1 byte
	IIN2 byte
}

func (i IIN) DeviceRestart() bool    { return i.IIN1&0x80 != 0 }
func (i IIN) NeedTime() bool         { return i.IIN1&0x10 != 0 }
func (i IIN) Class1Events() bool     { return i.IIN1&0x02 != 0 }
func (i IIN) Class2Events() bool     { return i.IIN1&0x04 != 0 }
func (i IIN) Class3Events() bool     { return i.IIN1&0x08 != 0 }
func (i IIN) NoFuncCodeSupport() bool { return i.IIN2&0x01 != 0 }
func (i IIN) ObjectUnknown() bool    { return i.IIN2&0x02 != 0 }
func (i IIN) ParameterError() bool   { return i.IIN2&0x04 != 0 }
func (i IIN) AlreadyExecuting() bool { return i.IIN2&0x10 != 0 }

// Rejected reports whether the outstation signaled a protocol-level
// rejection of the request (any of NO_FUNC_CODE_SUPPORT,
// OBJECT_UNKNOWN, PARAMETER_ERROR).
func (i IIN) Rejected() bool { return i.IIN2&0x07 != 0 }
