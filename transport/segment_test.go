package transport_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/rob-gra/go-dnp3/dnperr"
	"github.com/rob-gra/go-dnp3/transport"
)

func TestBuildSegmentsSpecScenario(t *testing.T) {
	// Scenario 3: 500-byte APDU, max_payload=249 -> 249, 249, 2.
	apdu := bytes.Repeat([]byte{0x42}, 500)
	segs, err := transport.BuildSegments(apdu, 249, 0)
	require.NoError(t, err)
	require.Len(t, segs, 3)

	assert.Len(t, segs[0].Payload, 249)
	assert.Len(t, segs[1].Payload, 249)
	assert.Len(t, segs[2].Payload, 2)

	assert.Equal(t, byte(0x80), segs[0].Header.Value()) // FIR, seq 0
	assert.Equal(t, byte(0x01), segs[1].Header.Value()) // seq 1
	assert.Equal(t, byte(0x40|0x02), segs[2].Header.Value()) // FIN, seq 2
}

func TestBuildSegmentsRejectsOversizedPayload(t *testing.T) {
	_, err := transport.BuildSegments([]byte{1, 2, 3}, 250, 0)
	require.Error(t, err)
	var verr *dnperr.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestReassemblerHappyPath(t *testing.T) {
	apdu := bytes.Repeat([]byte{0x7A}, 500)
	segs, err := transport.BuildSegments(apdu, 249, 10)
	require.NoError(t, err)

	r := &transport.Reassembler{MaxAPDUSize: 2048}
	var got []byte
	for _, s := range segs {
		out, done, err := r.Feed(s.Bytes(), time.Second)
		require.NoError(t, err)
		if done {
			got = out
		}
	}
	assert.Equal(t, apdu, got)
}

func TestReassemblerRejectsNonFIRFirst(t *testing.T) {
	r := &transport.Reassembler{MaxAPDUSize: 2048}
	seg := transport.Segment{Header: transport.Header{FIR: false, FIN: true, Seq: 5}, Payload: []byte{1}}
	_, _, err := r.Feed(seg.Bytes(), time.Second)
	require.Error(t, err)
	var perr *dnperr.ProtocolError
	assert.ErrorAs(t, err, &perr)
}

func TestReassemblerRejectsSequenceGap(t *testing.T) {
	r := &transport.Reassembler{MaxAPDUSize: 2048}
	first := transport.Segment{Header: transport.Header{FIR: true, Seq: 0}, Payload: []byte{1}}
	_, _, err := r.Feed(first.Bytes(), time.Second)
	require.NoError(t, err)

	second := transport.Segment{Header: transport.Header{FIN: true, Seq: 5}, Payload: []byte{2}}
	_, _, err = r.Feed(second.Bytes(), time.Second)
	require.Error(t, err)
	var perr *dnperr.ProtocolError
	assert.ErrorAs(t, err, &perr)
}

func TestReassemblerRejectsOversizedAPDU(t *testing.T) {
	r := &transport.Reassembler{MaxAPDUSize: 4}
	seg := transport.Segment{Header: transport.Header{FIR: true, FIN: true, Seq: 0}, Payload: []byte{1, 2, 3, 4, 5}}
	_, _, err := r.Feed(seg.Bytes(), time.Second)
	require.Error(t, err)
	var perr *dnperr.ProtocolError
	assert.ErrorAs(t, err, &perr)
}

func TestReassemblerRejectsExpiredDeadline(t *testing.T) {
	now := time.Now()
	r := &transport.Reassembler{MaxAPDUSize: 2048, Now: func() time.Time { return now }}
	first := transport.Segment{Header: transport.Header{FIR: true, Seq: 0}, Payload: []byte{1}}
	_, _, err := r.Feed(first.Bytes(), time.Millisecond)
	require.NoError(t, err)

	now = now.Add(time.Second)
	second := transport.Segment{Header: transport.Header{FIN: true, Seq: 1}, Payload: []byte{2}}
	_, _, err = r.Feed(second.Bytes(), time.Millisecond)
	require.Error(t, err)
	var terr *dnperr.TimeoutError
	assert.ErrorAs(t, err, &terr)
}

func TestReassemblerRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 600).Draw(t, "len")
		apdu := rapid.SliceOfN(rapid.Byte(), n, n).Draw(t, "apdu")
		maxPayload := rapid.IntRange(1, 249).Draw(t, "max_payload")
		startSeq := byte(rapid.IntRange(0, 63).Draw(t, "start_seq"))

		segs, err := transport.BuildSegments(apdu, maxPayload, startSeq)
		require.NoError(t, err)

		r := &transport.Reassembler{MaxAPDUSize: 4096}
		var got []byte
		var gotDone bool
		for i, s := range segs {
			assert.Equal(t, i == 0, s.Header.FIR)
			assert.Equal(t, i == len(segs)-1, s.Header.FIN)

			out, done, err := r.Feed(s.Bytes(), time.Minute)
			require.NoError(t, err)
			if done {
				got = out
				gotDone = true
			}
		}
		require.True(t, gotDone)
		assert.Equal(t, apdu, got)
	})
}
