package master

import (
	"github.com/rob-gra/go-dnp3/appl"
	"github.com/rob-gra/go-dnp3/dnperr"
	"github.com/rob-gra/go-dnp3/object"
)

// IntegrityPoll reads Class 0 (all static data) — the standard
// startup poll.
func (m *Master) IntegrityPoll() (*PollResult, error) {
	resp, err := m.transact(func(seq byte) ([]byte, error) {
		return appl.BuildReadRequest(seq, []appl.ReadSpec{{Group: 60, Variation: 1, WholeClass: true}})
	})
	if err != nil {
		return nil, err
	}
	return decodeResponse(resp)
}

// ReadClass reads event Class 1, 2 or 3.
func (m *Master) ReadClass(class int) (*PollResult, error) {
	if class < 1 || class > 3 {
		return nil, &dnperr.ValidationError{Field: "class", Reason: "must be 1, 2, or 3"}
	}
	resp, err := m.transact(func(seq byte) ([]byte, error) {
		return appl.BuildReadRequest(seq, []appl.ReadSpec{{Group: 60, Variation: byte(1 + class), WholeClass: true}})
	})
	if err != nil {
		return nil, err
	}
	return decodeResponse(resp)
}

// ReadBinaryInputs reads group 1 (binary input) over the inclusive
// index range [start, stop].
func (m *Master) ReadBinaryInputs(start, stop uint16) ([]object.BinaryInput, error) {
	resp, err := m.transact(func(seq byte) ([]byte, error) {
		return appl.BuildReadRequest(seq, []appl.ReadSpec{{Group: byte(object.GroupBinaryInput), Variation: 0, Start: start, Stop: stop}})
	})
	if err != nil {
		return nil, err
	}
	pr, err := decodeResponse(resp)
	if err != nil {
		return nil, err
	}
	return pr.BinaryInputs, nil
}

// ReadAnalogInputs reads group 30 (analog input) over the inclusive
// index range [start, stop].
func (m *Master) ReadAnalogInputs(start, stop uint16) ([]object.AnalogInput, error) {
	resp, err := m.transact(func(seq byte) ([]byte, error) {
		return appl.BuildReadRequest(seq, []appl.ReadSpec{{Group: byte(object.GroupAnalogInput), Variation: 0, Start: start, Stop: stop}})
	})
	if err != nil {
		return nil, err
	}
	pr, err := decodeResponse(resp)
	if err != nil {
		return nil, err
	}
	return pr.AnalogInputs, nil
}

// ReadCounters reads group 20 (counter) over the inclusive index range
// [start, stop].
func (m *Master) ReadCounters(start, stop uint16) ([]object.Counter, error) {
	resp, err := m.transact(func(seq byte) ([]byte, error) {
		return appl.BuildReadRequest(seq, []appl.ReadSpec{{Group: byte(object.GroupCounter), Variation: 0, Start: start, Stop: stop}})
	})
	if err != nil {
		return nil, err
	}
	pr, err := decodeResponse(resp)
	if err != nil {
		return nil, err
	}
	return pr.Counters, nil
}

// checkCROBStatus finds the echoed CROB in resp and reports whether
// its status byte is SUCCESS (0); a non-zero status surfaces as a
// *dnperr.ControlError carrying the status code.
func (m *Master) checkCROBStatus(resp *appl.Response) (bool, error) {
	for _, blk := range resp.Objects {
		if object.Group(blk.Group) != object.GroupCROB || !blk.Indexed || len(blk.Data) < 12 {
			continue
		}
		crob, err := object.DecodeCROB(blk.Data[1:])
		if err != nil {
			return false, err
		}
		if crob.Status != 0 {
			return false, &dnperr.ControlError{StatusCode: crob.Status}
		}
		return true, nil
	}
	return false, &dnperr.ProtocolError{Reason: "response did not echo a CROB status block"}
}

// DirectOperateBinary issues a one-shot DIRECT_OPERATE latch command
// (LATCH_ON if value, else LATCH_OFF) against the CROB at index.
func (m *Master) DirectOperateBinary(index uint16, value bool) (bool, error) {
	code := object.ControlCodeLatchOff
	if value {
		code = object.ControlCodeLatchOn
	}
	crob := object.CROB{Code: code, Count: 1}
	resp, err := m.transact(func(seq byte) ([]byte, error) {
		return appl.BuildDirectOperate(seq, byte(object.GroupCROB), 1, index, crob.Encode())
	})
	if err != nil {
		return false, err
	}
	return m.checkCROBStatus(resp)
}

// PulseBinary issues a DIRECT_OPERATE pulse command (PULSE_ON or
// PULSE_OFF) with the given on/off times and pulse count.
func (m *Master) PulseBinary(index uint16, onTimeMs, offTimeMs uint32, count byte, pulseOn bool) (bool, error) {
	code := object.ControlCodePulseOff
	if pulseOn {
		code = object.ControlCodePulseOn
	}
	crob := object.CROB{Code: code, Count: count, OnTime: onTimeMs, OffTime: offTimeMs}
	resp, err := m.transact(func(seq byte) ([]byte, error) {
		return appl.BuildDirectOperate(seq, byte(object.GroupCROB), 1, index, crob.Encode())
	})
	if err != nil {
		return false, err
	}
	return m.checkCROBStatus(resp)
}

// SelectOperateBinary performs a select-before-operate latch command:
// SELECT, verify SUCCESS within SelectTimeout, then OPERATE with an
// identical CROB.
func (m *Master) SelectOperateBinary(index uint16, value bool) (bool, error) {
	code := object.ControlCodeLatchOff
	if value {
		code = object.ControlCodeLatchOn
	}
	crob := object.CROB{Code: code, Count: 1}

	selectStart := m.clock.Now()
	selResp, err := m.transact(func(seq byte) ([]byte, error) {
		return appl.BuildSelect(seq, byte(object.GroupCROB), 1, index, crob.Encode())
	})
	if err != nil {
		return false, err
	}
	if ok, err := m.checkCROBStatus(selResp); !ok {
		return false, err
	}
	if m.clock.Now().Sub(selectStart) > m.cfg.SelectTimeout {
		return false, &dnperr.ControlError{StatusCode: 1} // TIMEOUT
	}

	opResp, err := m.transact(func(seq byte) ([]byte, error) {
		return appl.BuildOperate(seq, byte(object.GroupCROB), 1, index, crob.Encode())
	})
	if err != nil {
		return false, err
	}
	return m.checkCROBStatus(opResp)
}

// checkAOCStatus finds the echoed analog-output command block of the
// given variation and reports whether its status byte is SUCCESS.
func (m *Master) checkAOCStatus(resp *appl.Response, variation byte) (bool, error) {
	_, width, err := object.ObjectSize(byte(object.GroupAnalogOutputCommand), variation)
	if err != nil {
		return false, err
	}
	for _, blk := range resp.Objects {
		if object.Group(blk.Group) != object.GroupAnalogOutputCommand || !blk.Indexed || len(blk.Data) < 1+width {
			continue
		}
		status := blk.Data[width]
		if status != 0 {
			return false, &dnperr.ControlError{StatusCode: status}
		}
		return true, nil
	}
	return false, &dnperr.ProtocolError{Reason: "response did not echo an analog-output status block"}
}

// analogVariation returns the command variation value carries from its
// constructor (Int32Value 1, Int16Value 2, Float32Value 3, Float64Value
// 4). A zero-valued AnalogValue, built by no constructor, gets
// variation 1 (int32).
func analogVariation(value object.AnalogValue) byte {
	if value.Variation == 0 {
		return 1
	}
	return value.Variation
}

// DirectOperateAnalog issues a one-shot DIRECT_OPERATE analog setpoint
// at index. The wire variation (int32/int16/float32/float64) is taken
// from value's constructor (object.Int32Value, Float32Value, ...);
// callers needing a specific variation build value accordingly.
func (m *Master) DirectOperateAnalog(index uint16, value object.AnalogValue) (bool, error) {
	variation := analogVariation(value)
	cmd := object.AnalogOutputCommand{Value: value}
	wire, err := cmd.Encode(variation)
	if err != nil {
		return false, err
	}
	resp, err := m.transact(func(seq byte) ([]byte, error) {
		return appl.BuildDirectOperate(seq, byte(object.GroupAnalogOutputCommand), variation, index, wire)
	})
	if err != nil {
		return false, err
	}
	return m.checkAOCStatus(resp, variation)
}

// SelectOperateAnalog performs a select-before-operate analog
// setpoint: SELECT, verify SUCCESS within SelectTimeout, then OPERATE
// with an identical command block.
func (m *Master) SelectOperateAnalog(index uint16, value object.AnalogValue) (bool, error) {
	variation := analogVariation(value)
	cmd := object.AnalogOutputCommand{Value: value}
	wire, err := cmd.Encode(variation)
	if err != nil {
		return false, err
	}

	selectStart := m.clock.Now()
	selResp, err := m.transact(func(seq byte) ([]byte, error) {
		return appl.BuildSelect(seq, byte(object.GroupAnalogOutputCommand), variation, index, wire)
	})
	if err != nil {
		return false, err
	}
	if ok, err := m.checkAOCStatus(selResp, variation); !ok {
		return false, err
	}
	if m.clock.Now().Sub(selectStart) > m.cfg.SelectTimeout {
		return false, &dnperr.ControlError{StatusCode: 1}
	}

	opResp, err := m.transact(func(seq byte) ([]byte, error) {
		return appl.BuildOperate(seq, byte(object.GroupAnalogOutputCommand), variation, index, wire)
	})
	if err != nil {
		return false, err
	}
	return m.checkAOCStatus(opResp, variation)
}
