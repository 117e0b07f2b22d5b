package master_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rob-gra/go-dnp3/dlink"
	"github.com/rob-gra/go-dnp3/dnperr"
	"github.com/rob-gra/go-dnp3/master"
)

const (
	testMasterAddr     = 1
	testOutstationAddr = 2
)

func testConfig() master.Config {
	return master.Config{
		Host:              "outstation.example",
		MasterAddress:     testMasterAddr,
		OutstationAddress: testOutstationAddr,
		ResponseTimeout:   200 * time.Millisecond,
		ConnectionTimeout: 200 * time.Millisecond,
		SelectTimeout:     200 * time.Millisecond,
		MaxRetries:        2,
		RetryDelay:        time.Millisecond,
	}
}

func noDataErr() error { return errors.New("no unsolicited data pending") }

func TestOpenCloseLifecycle(t *testing.T) {
	tr := &fakeTransport{}
	clk := newFakeClock()
	m, err := master.New(testConfig(), tr, master.WithClock(clk))
	require.NoError(t, err)

	require.NoError(t, m.Open(context.Background()))
	assert.Empty(t, tr.writeLog(), "no reset-link frame expected when ConfirmRequired is false")

	err = m.Open(context.Background())
	var verr *dnperr.ValidationError
	assert.ErrorAs(t, err, &verr, "opening an already-open master must fail")

	require.NoError(t, m.Close())
	require.NoError(t, m.Close(), "closing twice must be a no-op")

	require.NoError(t, m.Open(context.Background()), "reopening after close must succeed")
}

func TestConnectReturnsScopedGuard(t *testing.T) {
	tr := &fakeTransport{}
	m, err := master.New(testConfig(), tr, master.WithClock(newFakeClock()))
	require.NoError(t, err)

	conn, err := m.Connect(context.Background())
	require.NoError(t, err)
	require.NoError(t, conn.Close())
	assert.True(t, tr.closed)
}

func TestOpenSendsResetLinkWhenConfirmRequired(t *testing.T) {
	tr := &fakeTransport{}
	cfg := testConfig()
	cfg.ConfirmRequired = true
	m, err := master.New(cfg, tr, master.WithClock(newFakeClock()))
	require.NoError(t, err)

	require.NoError(t, m.Open(context.Background()))
	writes := tr.writeLog()
	require.Len(t, writes, 1)
	ctrl := dlink.ParseControl(writes[0][3])
	assert.Equal(t, dlink.FuncResetLinkStates, ctrl.Function)
}

func TestIntegrityPollRoundTrip(t *testing.T) {
	tr := &fakeTransport{attempts: []readAttempt{
		{err: noDataErr()},
	}}
	clk := newFakeClock()
	m, err := master.New(testConfig(), tr, master.WithClock(clk))
	require.NoError(t, err)
	require.NoError(t, m.Open(context.Background()))

	tr.attempts = append(tr.attempts, readAttempt{
		data: buildResponseFrame(t, testMasterAddr, testOutstationAddr, 0, false, 0, 0, nil),
	})

	pr, err := m.IntegrityPoll()
	require.NoError(t, err)
	assert.False(t, pr.IIN.DeviceRestart())
	assert.Len(t, tr.writeLog(), 1)
}

func TestTransactRetriesOnCommunicationError(t *testing.T) {
	tr := &fakeTransport{attempts: []readAttempt{
		{err: noDataErr()},
		{err: errors.New("connection reset")},
	}}
	clk := newFakeClock()
	m, err := master.New(testConfig(), tr, master.WithClock(clk))
	require.NoError(t, err)
	require.NoError(t, m.Open(context.Background()))

	tr.attempts = append(tr.attempts, readAttempt{
		data: buildResponseFrame(t, testMasterAddr, testOutstationAddr, 0, false, 0, 0, nil),
	})

	_, err = m.IntegrityPoll()
	require.NoError(t, err)
	assert.Len(t, tr.writeLog(), 2, "the failed attempt and the successful retry both write a request")
	assert.Len(t, clk.sleeps, 1, "exactly one retry delay should have been observed")
}

func TestTransactExhaustsRetriesAndReturnsLastError(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 1
	tr := &fakeTransport{attempts: []readAttempt{
		{err: noDataErr()},
		{err: errors.New("broken pipe")},
		{err: errors.New("broken pipe")},
	}}
	m, err := master.New(cfg, tr, master.WithClock(newFakeClock()))
	require.NoError(t, err)
	require.NoError(t, m.Open(context.Background()))

	_, err = m.IntegrityPoll()
	var commErr *dnperr.CommunicationError
	require.ErrorAs(t, err, &commErr)
	assert.Len(t, tr.writeLog(), 2, "the initial attempt plus exactly MaxRetries retries")
}

func TestCRCErrorIsNotRetried(t *testing.T) {
	good := buildResponseFrame(t, testMasterAddr, testOutstationAddr, 0, false, 0, 0, nil)
	corrupt := append([]byte(nil), good...)
	corrupt[8] ^= 0xff // flip a header CRC byte

	tr := &fakeTransport{attempts: []readAttempt{
		{err: noDataErr()},
		{data: corrupt},
	}}
	m, err := master.New(testConfig(), tr, master.WithClock(newFakeClock()))
	require.NoError(t, err)
	require.NoError(t, m.Open(context.Background()))

	_, err = m.IntegrityPoll()
	var crcErr *dnperr.CRCError
	require.ErrorAs(t, err, &crcErr)
	assert.Len(t, tr.writeLog(), 1, "a non-retriable error must not trigger a retry")
}

func TestTransactRejectsWhenNotConnected(t *testing.T) {
	tr := &fakeTransport{}
	m, err := master.New(testConfig(), tr, master.WithClock(newFakeClock()))
	require.NoError(t, err)

	_, err = m.IntegrityPoll()
	var verr *dnperr.ValidationError
	assert.ErrorAs(t, err, &verr)
}

// TestSendAndReceiveTimesOutWhenNoResponseArrives exercises the
// response-timeout path directly on Master.transact/sendAndReceive
// (master.go's deadline loop), not just the transport.Reassembler
// deadline covered elsewhere. fakeClock.Now ticks forward by exactly
// one microsecond on every call; with ResponseTimeout set to one
// microsecond, the deadline computed from the first Now() call is
// already behind the very next Now() call in the wait loop, so the
// loop observes an elapsed deadline before ever attempting a read —
// deterministically, without a real sleep.
func TestSendAndReceiveTimesOutWhenNoResponseArrives(t *testing.T) {
	cfg := testConfig()
	cfg.ResponseTimeout = time.Microsecond
	cfg.MaxRetries = 1
	tr := &fakeTransport{}
	clk := newFakeClock()
	m, err := master.New(cfg, tr, master.WithClock(clk))
	require.NoError(t, err)
	require.NoError(t, m.Open(context.Background()))

	_, err = m.IntegrityPoll()
	var timeoutErr *dnperr.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, cfg.ResponseTimeout.Seconds(), timeoutErr.TimeoutSeconds)
	assert.Len(t, tr.writeLog(), 2, "the initial attempt plus exactly MaxRetries retries")
	assert.Len(t, clk.sleeps, 1, "exactly one retry delay should have been observed between the two timeout attempts")
}

func TestMismatchedSequenceResponseIsDiscarded(t *testing.T) {
	wrongSeq := buildResponseFrame(t, testMasterAddr, testOutstationAddr, 5, false, 0, 0, nil)
	rightSeq := buildResponseFrame(t, testMasterAddr, testOutstationAddr, 0, false, 0, 0, nil)

	tr := &fakeTransport{attempts: []readAttempt{
		{err: noDataErr()},
		{data: wrongSeq},
		{data: rightSeq},
	}}
	m, err := master.New(testConfig(), tr, master.WithClock(newFakeClock()))
	require.NoError(t, err)
	require.NoError(t, m.Open(context.Background()))

	_, err = m.IntegrityPoll()
	require.NoError(t, err)
	assert.Len(t, tr.writeLog(), 1, "the stray response must be discarded without a retransmit")
}
