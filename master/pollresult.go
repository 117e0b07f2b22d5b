package master

import (
	"github.com/rob-gra/go-dnp3/appl"
	"github.com/rob-gra/go-dnp3/object"
)

// PollResult aggregates the typed points a read response carried,
// grouped by the object type the outstation sent. Unknown reports
// groups this driver parses a header for but does not decode, so a
// caller can still see what arrived.
type PollResult struct {
	IIN appl.IIN

	BinaryInputs       []object.BinaryInput
	BinaryInputEvents  []object.BinaryInputEvent
	BinaryOutputs      []object.BinaryOutputStatus
	Counters           []object.Counter
	CounterEvents      []object.CounterEvent
	AnalogInputs       []object.AnalogInput
	AnalogInputEvents  []object.AnalogInputEvent
	AnalogOutputs      []object.AnalogOutputStatus

	Unknown []appl.ObjectBlock
}

// decodeResponse converts a parsed application response into a
// PollResult by dispatching each object block to the object catalog's
// decoder for its group.
func decodeResponse(resp *appl.Response) (*PollResult, error) {
	pr := &PollResult{IIN: resp.IIN}
	for _, blk := range resp.Objects {
		switch object.Group(blk.Group) {
		case object.GroupBinaryInput:
			pts, err := object.DecodeBinaryInputs(blk.Variation, blk.StartIndex, blk.Count, blk.Data)
			if err != nil {
				return nil, err
			}
			pr.BinaryInputs = append(pr.BinaryInputs, pts...)

		case object.GroupBinaryInputEvent:
			pts, err := object.DecodeBinaryInputEvents(blk.Variation, blk.StartIndex, blk.Count, blk.Data)
			if err != nil {
				return nil, err
			}
			pr.BinaryInputEvents = append(pr.BinaryInputEvents, pts...)

		case object.GroupBinaryOutputStatus:
			pts, err := object.DecodeBinaryOutputStatus(blk.Variation, blk.StartIndex, blk.Count, blk.Data)
			if err != nil {
				return nil, err
			}
			pr.BinaryOutputs = append(pr.BinaryOutputs, pts...)

		case object.GroupCounter:
			pts, err := object.DecodeCounters(blk.Variation, blk.StartIndex, blk.Count, blk.Data)
			if err != nil {
				return nil, err
			}
			pr.Counters = append(pr.Counters, pts...)

		case object.GroupCounterEvent:
			pts, err := object.DecodeCounterEvents(blk.Variation, blk.StartIndex, blk.Count, blk.Data)
			if err != nil {
				return nil, err
			}
			pr.CounterEvents = append(pr.CounterEvents, pts...)

		case object.GroupAnalogInput:
			pts, err := object.DecodeAnalogInputs(blk.Variation, blk.StartIndex, blk.Count, blk.Data)
			if err != nil {
				return nil, err
			}
			pr.AnalogInputs = append(pr.AnalogInputs, pts...)

		case object.GroupAnalogInputEvent:
			pts, err := object.DecodeAnalogInputEvents(blk.Variation, blk.StartIndex, blk.Count, blk.Data)
			if err != nil {
				return nil, err
			}
			pr.AnalogInputEvents = append(pr.AnalogInputEvents, pts...)

		case object.GroupAnalogOutputStatus:
			pts, err := object.DecodeAnalogOutputStatus(blk.Variation, blk.StartIndex, blk.Count, blk.Data)
			if err != nil {
				return nil, err
			}
			pr.AnalogOutputs = append(pr.AnalogOutputs, pts...)

		default:
			pr.Unknown = append(pr.Unknown, blk)
		}
	}
	return pr, nil
}
