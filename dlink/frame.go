// Package dlink implements the DNP3 Data Link Layer: FT3 frame
// framing, block-wise CRC-16, addressing and link-function builders.
//
// The control-byte bit layout (direction/primary/frame-count bits
// packed with a 4-bit function code) follows the same shape as the
// teacher's cs101.Ft12 control byte, generalized from the IEC
// 60870-5-101 FT1.2 format (checksum-guarded) to DNP3's FT3 format
// (CRC-16-guarded, 16-byte blocks).
package dlink

import (
	"encoding/binary"
	"io"

	"github.com/rob-gra/go-dnp3/crc"
	"github.com/rob-gra/go-dnp3/dnperr"
)

// Wire constants.
const (
	StartByte1 = 0x05
	StartByte2 = 0x64

	headerSize  = 10 // start(2) + length(1) + control(1) + dest(2) + src(2) + crc(2)
	blockSize   = 16
	maxUserData = 250
	minAddr     = 0
	maxAddr     = 65519
)

// Link function codes (the 4-bit function field of the control
// byte), primary-station (master) direction.
const (
	FuncResetLinkStates    byte = 0
	FuncTestLinkStates     byte = 2
	FuncUserDataConfirmed  byte = 3
	FuncUserDataUnconfirm  byte = 4
	FuncRequestLinkStatus  byte = 9
)

// Control is the FT3 control byte: direction, primary, frame-count
// bit/valid, and the 4-bit link function.
type Control struct {
	Direction bool // true: master -> outstation
	Primary   bool // true: frame sent by the initiating (primary) station
	FCB       bool // frame count bit, toggled per confirmed transmission
	FCV       bool // frame count valid, set for USER_DATA_CONFIRMED
	Function  byte // 0-15
}

// Value encodes the control byte.
func (c Control) Value() byte {
	v := c.Function & 0x0f
	if c.FCV {
		v |= 0x10
	}
	if c.FCB {
		v |= 0x20
	}
	if c.Primary {
		v |= 0x40
	}
	if c.Direction {
		v |= 0x80
	}
	return v
}

// ParseControl decodes a control byte.
func ParseControl(b byte) Control {
	return Control{
		Direction: b&0x80 != 0,
		Primary:   b&0x40 != 0,
		FCB:       b&0x20 != 0,
		FCV:       b&0x10 != 0,
		Function:  b & 0x0f,
	}
}

// Frame is a fully parsed FT3 data link frame.
type Frame struct {
	Control     Control
	Destination uint16
	Source      uint16
	UserData    []byte
}

func validateAddr(a uint16) error {
	if a > maxAddr {
		return &dnperr.ValidationError{Field: "address", Reason: "must be 0-65519"}
	}
	return nil
}

// BuildFrame assembles a complete FT3 frame for function over
// userData (0-250 bytes), addressed dst<-src.
func BuildFrame(dst, src uint16, function byte, userData []byte, primary bool, confirmRequired bool, fcb bool) ([]byte, error) {
	if err := validateAddr(dst); err != nil {
		return nil, err
	}
	if err := validateAddr(src); err != nil {
		return nil, err
	}
	if len(userData) > maxUserData {
		return nil, &dnperr.ValidationError{Field: "user_data", Reason: "must be 0-250 bytes"}
	}

	ctrl := Control{
		Direction: true,
		Primary:   primary,
		FCB:       fcb,
		FCV:       function == FuncUserDataConfirmed,
		Function:  function,
	}

	header := make([]byte, 8)
	header[0] = StartByte1
	header[1] = StartByte2
	header[2] = byte(len(userData) + 5)
	header[3] = ctrl.Value()
	binary.LittleEndian.PutUint16(header[4:6], dst)
	binary.LittleEndian.PutUint16(header[6:8], src)

	out := crc.AppendLE(append([]byte(nil), header...), header)

	for off := 0; off < len(userData); off += blockSize {
		end := off + blockSize
		if end > len(userData) {
			end = len(userData)
		}
		chunk := userData[off:end]
		out = append(out, chunk...)
		out = crc.AppendLE(out, chunk)
	}
	if len(userData) == 0 {
		// Nothing to append; a header-only frame has no data blocks.
	}
	return out, nil
}

// BuildResetLink builds a RESET_LINK_STATES frame.
func BuildResetLink(src, dst uint16) ([]byte, error) {
	return BuildFrame(dst, src, FuncResetLinkStates, nil, true, false, false)
}

// BuildRequestLinkStatus builds a REQUEST_LINK_STATUS frame.
func BuildRequestLinkStatus(src, dst uint16) ([]byte, error) {
	return BuildFrame(dst, src, FuncRequestLinkStatus, nil, true, false, false)
}

// ParseFrame reads and validates exactly one FT3 frame from r,
// checking the header CRC, every block CRC, and the length field. When
// checkDest is true the frame's destination must equal masterAddr —
// masterAddr 0 is a valid configured address (spec range 0-65519,
// inclusive of 0) and is not treated as "don't care"; pass
// checkDest=false for the rare caller that genuinely wants to accept
// any destination.
func ParseFrame(r io.Reader, masterAddr uint16, checkDest bool) (*Frame, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, &dnperr.CommunicationError{Op: "read frame header", Err: err}
	}
	if header[0] != StartByte1 || header[1] != StartByte2 {
		return nil, &dnperr.FrameError{Reason: "bad start bytes"}
	}
	length := header[2]
	if length < 5 {
		return nil, &dnperr.FrameError{Reason: "length field below minimum of 5"}
	}
	headerCRC := binary.LittleEndian.Uint16(header[8:10])
	if !crc.Verify(header[:8], headerCRC) {
		return nil, &dnperr.CRCError{Expected: crc.Calculate(header[:8]), Actual: headerCRC, Where: "header"}
	}

	userDataLen := int(length) - 5
	ctrl := ParseControl(header[3])
	dest := binary.LittleEndian.Uint16(header[4:6])
	source := binary.LittleEndian.Uint16(header[6:8])

	if checkDest && dest != masterAddr {
		return nil, &dnperr.FrameError{Reason: "destination address does not match configured master address"}
	}

	userData := make([]byte, 0, userDataLen)
	remaining := userDataLen
	for remaining > 0 {
		chunkLen := remaining
		if chunkLen > blockSize {
			chunkLen = blockSize
		}
		block := make([]byte, chunkLen+2)
		if _, err := io.ReadFull(r, block); err != nil {
			return nil, &dnperr.CommunicationError{Op: "read frame block", Err: err}
		}
		data := block[:chunkLen]
		wantCRC := binary.LittleEndian.Uint16(block[chunkLen:])
		if !crc.Verify(data, wantCRC) {
			return nil, &dnperr.CRCError{Expected: crc.Calculate(data), Actual: wantCRC, Where: "block"}
		}
		userData = append(userData, data...)
		remaining -= chunkLen
	}

	return &Frame{Control: ctrl, Destination: dest, Source: source, UserData: userData}, nil
}
