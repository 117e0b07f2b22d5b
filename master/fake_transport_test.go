package master_test

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rob-gra/go-dnp3/appl"
	"github.com/rob-gra/go-dnp3/dlink"
	"github.com/rob-gra/go-dnp3/transport"
)

// readAttempt is one scripted outcome of a read loop iteration: either
// raw bytes to hand back (a full frame, or a truncated/corrupted one
// to provoke a parse error), or an error returned immediately.
type readAttempt struct {
	data []byte
	err  error
}

// fakeTransport is an in-memory master.Transport: writes are recorded
// for assertions, reads are served from a scripted queue of attempts
// so tests can deterministically drive retries, timeouts and malformed
// frames without a real socket.
type fakeTransport struct {
	mu       sync.Mutex
	openErr  error
	closeErr error
	closed   bool
	written  [][]byte
	attempts []readAttempt
	idx      int
	cur      *bytes.Reader
}

func (f *fakeTransport) Open(ctx context.Context) error { return f.openErr }

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return f.closeErr
}

func (f *fakeTransport) SetReadDeadline(t time.Time) error { return nil }

func (f *fakeTransport) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, append([]byte(nil), p...))
	return len(p), nil
}

func (f *fakeTransport) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for f.cur == nil || f.cur.Len() == 0 {
		if f.idx >= len(f.attempts) {
			return 0, io.EOF
		}
		a := f.attempts[f.idx]
		f.idx++
		if a.err != nil {
			return 0, a.err
		}
		f.cur = bytes.NewReader(a.data)
	}
	return f.cur.Read(p)
}

// writeLog returns a snapshot of recorded writes.
func (f *fakeTransport) writeLog() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.written...)
}

// fakeClock is a manually-advanced Clock: Sleep both records the
// requested delay and advances Now, so a master retry loop that sleeps
// between attempts observes time actually moving forward.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock { return &fakeClock{now: time.Unix(1700000000, 0)} }

// Now ticks the clock forward by a microsecond on every call, so code
// under test that calls Now() repeatedly (deadline checks, SELECT
// windows) observes real forward progress without a test needing to
// sleep.
func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Microsecond)
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// buildResponseFrame encodes a one-segment response APDU (AC, function
// code 0x81, IIN, optional raw object bytes) inside a single FT3 frame
// addressed outstation -> master, the shape sendAndReceive expects to
// read back.
func buildResponseFrame(t *testing.T, masterAddr, outstationAddr uint16, seq byte, con bool, iin1, iin2 byte, objects []byte) []byte {
	t.Helper()
	ac := appl.Control{FIR: true, FIN: true, CON: con, Seq: seq}
	apdu := append([]byte{ac.Value(), appl.FuncResponse, iin1, iin2}, objects...)
	segs, err := transport.BuildSegments(apdu, 249, 0)
	if err != nil {
		t.Fatalf("BuildSegments: %v", err)
	}
	frame, err := dlink.BuildFrame(masterAddr, outstationAddr, dlink.FuncUserDataUnconfirm, segs[0].Bytes(), false, false, false)
	if err != nil {
		t.Fatalf("BuildFrame: %v", err)
	}
	return frame
}
