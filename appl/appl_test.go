package appl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rob-gra/go-dnp3/appl"
	"github.com/rob-gra/go-dnp3/dnperr"
	"github.com/rob-gra/go-dnp3/object"
)

func TestBuildReadRequestIntegrityPoll(t *testing.T) {
	// Scenario 2: integrity poll APDU is C0 01 3C 01 06.
	apdu, err := appl.BuildReadRequest(0, []appl.ReadSpec{{Group: 60, Variation: 1, WholeClass: true}})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xC0, 0x01, 0x3C, 0x01, 0x06}, apdu)
}

func TestBuildReadRequestUsesTwoByteRangeWhenNeeded(t *testing.T) {
	apdu, err := appl.BuildReadRequest(1, []appl.ReadSpec{{Group: 30, Variation: 1, Start: 0, Stop: 300}})
	require.NoError(t, err)
	// AC, function, group, variation, qualifier 0x01, then 2+2 LE bounds.
	assert.Equal(t, byte(0x01), apdu[4]) // qualifier
	assert.Len(t, apdu, 2+3+4)
}

func TestBuildDirectOperateCROBScenario(t *testing.T) {
	// Scenario 4: direct operate binary index=0, value=true (LATCH_ON).
	crob := object.CROB{Code: object.ControlCodeLatchOn, Count: 1}
	apdu, err := appl.BuildDirectOperate(0, 12, 1, 0, crob.Encode())
	require.NoError(t, err)

	want := []byte{0xC0, 0x05, 0x0C, 0x01, 0x17, 0x01, 0x00,
		0x03, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	assert.Equal(t, want, apdu)
}

func TestBuildControlRequestRejectsOversizedIndex(t *testing.T) {
	_, err := appl.BuildDirectOperate(0, 12, 1, 256, nil)
	require.Error(t, err)
	var verr *dnperr.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestParseResponseHappyPath(t *testing.T) {
	// Response to an integrity poll: two binary inputs, group 1 var 2,
	// range [0,1], points 0=false, 1=true.
	apdu := []byte{0xC0, 0x81, 0x00, 0x00,
		0x01, 0x02, 0x00, 0x00, 0x01, // header: g1v2, range 0-1
		0x00, 0x80, // point 0 flags=0, point 1 flags=state
	}
	resp, err := appl.ParseResponse(apdu)
	require.NoError(t, err)
	assert.Equal(t, byte(0x81), resp.Function)
	require.Len(t, resp.Objects, 1)
	assert.Equal(t, byte(1), resp.Objects[0].Group)
	assert.Equal(t, 2, resp.Objects[0].Count)
}

func TestParseResponseRejectsIINRejection(t *testing.T) {
	apdu := []byte{0xC0, 0x81, 0x00, 0x02} // IIN2 OBJECT_UNKNOWN
	_, err := appl.ParseResponse(apdu)
	require.Error(t, err)
	var perr *dnperr.ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.True(t, appl.IIN{IIN1: perr.IIN1, IIN2: perr.IIN2}.ObjectUnknown())
}

func TestParseResponseRejectsShortObjectData(t *testing.T) {
	apdu := []byte{0xC0, 0x81, 0x00, 0x00, 0x01, 0x02, 0x00, 0x00, 0x05} // range says 6 points, no data bytes follow
	_, err := appl.ParseResponse(apdu)
	require.Error(t, err)
	var perr *dnperr.ProtocolError
	assert.ErrorAs(t, err, &perr)
}

func TestBuildConfirm(t *testing.T) {
	apdu, err := appl.BuildConfirm(3)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xC3, 0x00}, apdu)
}
