// Package transport implements the DNP3 Transport Function: the
// single-byte FIR/FIN/sequence header that segments an application
// message (APDU) into data-link-sized payloads, and the stateful
// reassembler that recovers the APDU on receive.
//
// Segmentation follows the same "split into bounded chunks, stamp a
// sequence, reassemble on the far end" shape as the teacher's cs104
// send/receive window, generalized from IEC 60870-5-104's 2-byte APCI
// sequence numbers to DNP3's single transport header byte.
package transport

import (
	"time"

	"github.com/rob-gra/go-dnp3/dnperr"
)

// MaxPayload is the largest number of APDU bytes one transport
// segment may carry.
const MaxPayload = 249

const seqMask = 0x3F

// Header is the one-byte transport segment header.
type Header struct {
	FIR bool
	FIN bool
	Seq byte // 6 bits
}

// Value encodes the header to its wire byte.
func (h Header) Value() byte {
	v := h.Seq & seqMask
	if h.FIR {
		v |= 0x80
	}
	if h.FIN {
		v |= 0x40
	}
	return v
}

// ParseHeader decodes a transport segment header byte.
func ParseHeader(b byte) Header {
	return Header{FIR: b&0x80 != 0, FIN: b&0x40 != 0, Seq: b & seqMask}
}

// Segment is one transport-layer unit: header plus its payload slice.
type Segment struct {
	Header  Header
	Payload []byte
}

// Bytes renders the segment to its wire form (header byte + payload).
func (s Segment) Bytes() []byte {
	out := make([]byte, 0, 1+len(s.Payload))
	out = append(out, s.Header.Value())
	return append(out, s.Payload...)
}

// BuildSegments splits apdu into an ordered list of transport segments of at
// most maxPayload bytes each, with sequence numbers starting at
// startSeq and incrementing mod 64. maxPayload must be in 1..249.
// apdu may be empty, which yields a single FIR+FIN segment with no
// payload.
func BuildSegments(apdu []byte, maxPayload int, startSeq byte) ([]Segment, error) {
	if maxPayload < 1 || maxPayload > MaxPayload {
		return nil, &dnperr.ValidationError{Field: "max_payload", Reason: "must be 1-249"}
	}

	n := (len(apdu) + maxPayload - 1) / maxPayload
	if n == 0 {
		n = 1
	}
	segments := make([]Segment, n)
	seq := startSeq & seqMask
	for i := 0; i < n; i++ {
		start := i * maxPayload
		end := start + maxPayload
		if end > len(apdu) {
			end = len(apdu)
		}
		segments[i] = Segment{
			Header: Header{
				FIR: i == 0,
				FIN: i == n-1,
				Seq: seq,
			},
			Payload: apdu[start:end],
		}
		seq = (seq + 1) & seqMask
	}
	return segments, nil
}

// Reassembler accumulates transport segments into a complete APDU,
// enforcing sequence continuity, a maximum reassembled size, and a
// deadline measured against Now (defaults to time.Now).
type Reassembler struct {
	MaxAPDUSize int
	Now         func() time.Time

	active      bool
	expectedSeq byte
	buffer      []byte
	deadline    time.Time
}

func (r *Reassembler) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Reassembler) reset() {
	r.active = false
	r.buffer = nil
}

// Feed processes one raw segment byte slice (header byte + payload).
// It returns (apdu, true, nil) once a FIN segment completes a
// message; otherwise (nil, false, nil) while more segments are
// expected. deadline bounds how long reassembly of a given APDU may
// take once started by a FIR segment.
func (r *Reassembler) Feed(raw []byte, deadline time.Duration) ([]byte, bool, error) {
	if len(raw) == 0 {
		return nil, false, &dnperr.ProtocolError{Reason: "empty transport segment"}
	}
	h := ParseHeader(raw[0])
	payload := raw[1:]

	if r.active && r.now().After(r.deadline) {
		r.reset()
		return nil, false, &dnperr.TimeoutError{TimeoutSeconds: deadline.Seconds(), Op: "transport reassembly"}
	}

	if h.FIR {
		r.active = true
		r.expectedSeq = h.Seq
		r.buffer = r.buffer[:0]
		r.deadline = r.now().Add(deadline)
	} else {
		if !r.active {
			return nil, false, &dnperr.ProtocolError{Reason: "non-FIR segment with no FIR to start it"}
		}
		want := (r.expectedSeq + 1) & seqMask
		if h.Seq != want {
			r.reset()
			return nil, false, &dnperr.ProtocolError{Reason: "transport sequence gap"}
		}
		r.expectedSeq = h.Seq
	}

	if len(r.buffer)+len(payload) > r.MaxAPDUSize {
		r.reset()
		return nil, false, &dnperr.ProtocolError{Reason: "reassembled APDU exceeds max_apdu_size"}
	}
	r.buffer = append(r.buffer, payload...)

	if h.FIN {
		apdu := append([]byte(nil), r.buffer...)
		r.reset()
		return apdu, true, nil
	}
	return nil, false, nil
}
