package master_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rob-gra/go-dnp3/appl"
	"github.com/rob-gra/go-dnp3/dnperr"
	"github.com/rob-gra/go-dnp3/master"
	"github.com/rob-gra/go-dnp3/object"
)

// crobEcho builds the object-block bytes an outstation sends back to
// echo a CROB control request at index: an indexed header for one
// record followed by the index byte and the CROB itself.
func crobEcho(t *testing.T, index byte, crob object.CROB) []byte {
	t.Helper()
	out := appl.IndexedHeader(byte(object.GroupCROB), 1, 1)
	out = append(out, index)
	out = append(out, crob.Encode()...)
	return out
}

func newOpenMaster(t *testing.T, tr *fakeTransport, clk *fakeClock) *master.Master {
	t.Helper()
	m, err := master.New(testConfig(), tr, master.WithClock(clk))
	require.NoError(t, err)
	require.NoError(t, m.Open(context.Background()))
	return m
}

func TestDirectOperateBinarySuccess(t *testing.T) {
	tr := &fakeTransport{attempts: []readAttempt{
		{err: noDataErr()},
	}}
	m := newOpenMaster(t, tr, newFakeClock())

	echo := crobEcho(t, 0, object.CROB{Code: object.ControlCodeLatchOn, Count: 1, Status: 0})
	tr.attempts = append(tr.attempts, readAttempt{
		data: buildResponseFrame(t, testMasterAddr, testOutstationAddr, 0, false, 0, 0, echo),
	})

	ok, err := m.DirectOperateBinary(0, true)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDirectOperateBinaryNonZeroStatus(t *testing.T) {
	tr := &fakeTransport{attempts: []readAttempt{
		{err: noDataErr()},
	}}
	m := newOpenMaster(t, tr, newFakeClock())

	echo := crobEcho(t, 0, object.CROB{Code: object.ControlCodeLatchOn, Count: 1, Status: 4})
	tr.attempts = append(tr.attempts, readAttempt{
		data: buildResponseFrame(t, testMasterAddr, testOutstationAddr, 0, false, 0, 0, echo),
	})

	ok, err := m.DirectOperateBinary(0, true)
	assert.False(t, ok)
	var ctrlErr *dnperr.ControlError
	require.ErrorAs(t, err, &ctrlErr)
	assert.Equal(t, byte(4), ctrlErr.StatusCode)
}

func TestSelectOperateBinarySuccess(t *testing.T) {
	tr := &fakeTransport{attempts: []readAttempt{
		{err: noDataErr()}, // drain before SELECT
	}}
	m := newOpenMaster(t, tr, newFakeClock())

	selectEcho := crobEcho(t, 3, object.CROB{Code: object.ControlCodeLatchOn, Count: 1, Status: 0})
	operateEcho := crobEcho(t, 3, object.CROB{Code: object.ControlCodeLatchOn, Count: 1, Status: 0})
	tr.attempts = append(tr.attempts,
		readAttempt{data: buildResponseFrame(t, testMasterAddr, testOutstationAddr, 0, false, 0, 0, selectEcho)},
		readAttempt{err: noDataErr()}, // drain before OPERATE
		readAttempt{data: buildResponseFrame(t, testMasterAddr, testOutstationAddr, 1, false, 0, 0, operateEcho)},
	)

	ok, err := m.SelectOperateBinary(3, true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, tr.writeLog(), 2, "SELECT and OPERATE each write exactly one request")
}

func TestSelectOperateBinaryAbortsOnSelectFailure(t *testing.T) {
	tr := &fakeTransport{attempts: []readAttempt{
		{err: noDataErr()},
	}}
	m := newOpenMaster(t, tr, newFakeClock())

	selectEcho := crobEcho(t, 3, object.CROB{Code: object.ControlCodeLatchOn, Count: 1, Status: 2})
	tr.attempts = append(tr.attempts, readAttempt{
		data: buildResponseFrame(t, testMasterAddr, testOutstationAddr, 0, false, 0, 0, selectEcho),
	})

	ok, err := m.SelectOperateBinary(3, true)
	assert.False(t, ok)
	var ctrlErr *dnperr.ControlError
	require.ErrorAs(t, err, &ctrlErr)
	assert.Equal(t, byte(2), ctrlErr.StatusCode)
	assert.Len(t, tr.writeLog(), 1, "a failed SELECT must never be followed by an OPERATE")
}

func TestReadBinaryInputsDecodesPoints(t *testing.T) {
	tr := &fakeTransport{attempts: []readAttempt{
		{err: noDataErr()},
	}}
	m := newOpenMaster(t, tr, newFakeClock())

	rangeHdr, err := appl.RangeHeader(byte(object.GroupBinaryInput), 2, 0, 1)
	require.NoError(t, err)
	payload := []byte{
		byte(object.FlagOnline | object.FlagState),
		byte(object.FlagOnline),
	}
	objects := append(append([]byte(nil), rangeHdr...), payload...)
	tr.attempts = append(tr.attempts, readAttempt{
		data: buildResponseFrame(t, testMasterAddr, testOutstationAddr, 0, false, 0, 0, objects),
	})

	pts, err := m.ReadBinaryInputs(0, 1)
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.True(t, pts[0].Value)
	assert.False(t, pts[1].Value)
}
