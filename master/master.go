package master

import (
	"context"
	"sync"
	"time"

	"github.com/rob-gra/go-dnp3/appl"
	"github.com/rob-gra/go-dnp3/dlink"
	"github.com/rob-gra/go-dnp3/dnp3log"
	"github.com/rob-gra/go-dnp3/dnperr"
	"github.com/rob-gra/go-dnp3/transport"
)

type connState int

const (
	stateClosed connState = iota
	stateOpening
	stateOpen
	stateClosing
)

// Master drives one DNP3 outstation over a single connection. It is
// safe for concurrent use: mu serializes opening, closing, and every
// transaction, matching the protocol's half-duplex master/outstation
// link (only one APDU is ever in flight).
type Master struct {
	cfg Config
	tr  Transport
	clock Clock
	log *dnp3log.Logger

	mu           sync.Mutex
	state        connState
	appSeq       byte
	transportSeq byte
	fcb          bool
	reassembler  *transport.Reassembler
}

// Option configures optional Master collaborators at construction.
type Option func(*Master)

// WithClock overrides the default system clock, for deterministic
// tests of retry backoff and deadlines.
func WithClock(c Clock) Option { return func(m *Master) { m.clock = c } }

// WithLogger attaches a logging sink; without it, log output is
// discarded.
func WithLogger(l *dnp3log.Logger) Option { return func(m *Master) { m.log = l } }

// New validates cfg and builds a Master bound to tr. tr is not opened
// until Open or Connect is called.
func New(cfg Config, tr Transport, opts ...Option) (*Master, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, &dnperr.ValidationError{Field: "transport", Reason: "must not be nil"}
	}
	m := &Master{cfg: cfg, tr: tr, clock: SystemClock, log: dnp3log.Nop()}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Connection is the scoped handle Connect returns: its Close
// unconditionally closes the underlying transport, the same guarantee
// a context-managed resource gives in languages that have one.
type Connection struct {
	m *Master
}

// Close closes the connection. Safe to call once; Master.Close is
// idempotent so a deferred Close after an earlier explicit Close is
// harmless.
func (c *Connection) Close() error { return c.m.Close() }

// Connect opens the connection and returns a scoped guard: callers
// should `defer conn.Close()` immediately after a successful call so
// the transport is released on every exit path, including panics
// recovered higher up the stack.
func (m *Master) Connect(ctx context.Context) (*Connection, error) {
	if err := m.Open(ctx); err != nil {
		return nil, err
	}
	return &Connection{m: m}, nil
}

// Open establishes the transport connection and, if ConfirmRequired,
// sends an initial RESET_LINK_STATES frame.
func (m *Master) Open(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != stateClosed {
		return &dnperr.ValidationError{Field: "state", Reason: "master is already open"}
	}
	m.state = stateOpening

	cctx, cancel := context.WithTimeout(ctx, m.cfg.ConnectionTimeout)
	defer cancel()
	if err := m.tr.Open(cctx); err != nil {
		m.state = stateClosed
		return &dnperr.CommunicationError{Host: m.cfg.Host, Port: m.cfg.Port, Op: "open", Err: err}
	}

	m.reassembler = &transport.Reassembler{MaxAPDUSize: m.cfg.MaxAPDUSize, Now: m.clock.Now}
	m.state = stateOpen
	m.log.Infof("connected to %s:%d", m.cfg.Host, m.cfg.Port)

	if m.cfg.ConfirmRequired {
		if err := m.resetLink(); err != nil {
			_ = m.tr.Close()
			m.state = stateClosed
			return err
		}
	}
	return nil
}

// Close closes the transport. Idempotent: closing an already-closed
// Master is a no-op.
func (m *Master) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == stateClosed {
		return nil
	}
	m.state = stateClosing
	err := m.tr.Close()
	m.state = stateClosed
	if err != nil {
		return &dnperr.CommunicationError{Host: m.cfg.Host, Port: m.cfg.Port, Op: "close", Err: err}
	}
	m.log.Infof("closed connection to %s:%d", m.cfg.Host, m.cfg.Port)
	return nil
}

func (m *Master) resetLink() error {
	frame, err := dlink.BuildResetLink(m.cfg.MasterAddress, m.cfg.OutstationAddress)
	if err != nil {
		return err
	}
	m.log.HexDump("send", frame)
	if _, err := m.tr.Write(frame); err != nil {
		return &dnperr.CommunicationError{Host: m.cfg.Host, Port: m.cfg.Port, Op: "write reset-link", Err: err}
	}
	return nil
}

func (m *Master) nextAppSeq() byte {
	s := m.appSeq & 0x0f
	m.appSeq = (m.appSeq + 1) & 0x0f
	return s
}

// drainUnsolicited opportunistically reads and discards (or, if
// ConfirmRequired and the response sets CON, confirms) any unsolicited response sitting in the
// socket buffer from a previous idle period, before the next
// transaction writes its request. Best effort: any error (most
// commonly a read timeout because nothing is waiting) is swallowed.
func (m *Master) drainUnsolicited() {
	if err := m.tr.SetReadDeadline(m.clock.Now().Add(5 * time.Millisecond)); err != nil {
		return
	}
	frame, err := dlink.ParseFrame(m.tr, m.cfg.MasterAddress, true)
	if err != nil {
		return
	}
	apdu, done, err := m.reassembler.Feed(frame.UserData, m.cfg.ResponseTimeout)
	if err != nil || !done {
		return
	}
	resp, err := appl.ParseResponse(apdu)
	if err != nil || resp.Function != appl.FuncUnsolicitedResponse {
		return
	}
	m.log.Infof("drained unsolicited response, iin1=%#02x iin2=%#02x", resp.IIN.IIN1, resp.IIN.IIN2)
	if resp.AC.CON && m.cfg.ConfirmRequired {
		_ = m.sendConfirm(resp.AC.Seq)
	}
}

// transact runs one request/response cycle under the connection lock:
// it drains any pending unsolicited response, builds the APDU with a
// freshly assigned application sequence, and retries communication
// and timeout failures up to MaxRetries times.
func (m *Master) transact(buildAPDU func(seq byte) ([]byte, error)) (*appl.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != stateOpen {
		return nil, &dnperr.ValidationError{Field: "state", Reason: "master is not connected"}
	}

	m.drainUnsolicited()

	seq := m.nextAppSeq()
	apdu, err := buildAPDU(seq)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= m.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			m.clock.Sleep(m.cfg.RetryDelay)
		}
		resp, err := m.sendAndReceive(apdu, seq)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !dnperr.Retriable(err) {
			return nil, err
		}
		m.log.Warningf("transaction attempt %d failed, retrying: %v", attempt+1, err)
	}
	return nil, lastErr
}

func (m *Master) sendAndReceive(apdu []byte, seq byte) (*appl.Response, error) {
	// Each frame's user data is the 1-byte transport header plus the
	// segment payload, so a segment carries at most MaxFrameSize-1 bytes.
	segs, err := transport.BuildSegments(apdu, m.cfg.MaxFrameSize-1, m.transportSeq)
	if err != nil {
		return nil, err
	}
	m.transportSeq = (m.transportSeq + byte(len(segs))) & 0x3F

	function := dlink.FuncUserDataUnconfirm
	if m.cfg.ConfirmRequired {
		function = dlink.FuncUserDataConfirmed
	}

	for _, seg := range segs {
		frame, err := dlink.BuildFrame(m.cfg.OutstationAddress, m.cfg.MasterAddress, function, seg.Bytes(), true, m.cfg.ConfirmRequired, m.fcb)
		if err != nil {
			return nil, err
		}
		m.log.HexDump("send", frame)
		if _, err := m.tr.Write(frame); err != nil {
			return nil, &dnperr.CommunicationError{Host: m.cfg.Host, Port: m.cfg.Port, Op: "write", Err: err}
		}
	}
	if m.cfg.ConfirmRequired {
		m.fcb = !m.fcb
	}

	deadline := m.clock.Now().Add(m.cfg.ResponseTimeout)
	for {
		remaining := deadline.Sub(m.clock.Now())
		if remaining <= 0 {
			return nil, &dnperr.TimeoutError{TimeoutSeconds: m.cfg.ResponseTimeout.Seconds(), Op: "await response"}
		}
		if err := m.tr.SetReadDeadline(m.clock.Now().Add(remaining)); err != nil {
			return nil, &dnperr.CommunicationError{Host: m.cfg.Host, Port: m.cfg.Port, Op: "set read deadline", Err: err}
		}
		frame, err := dlink.ParseFrame(m.tr, m.cfg.MasterAddress, true)
		if err != nil {
			return nil, err
		}
		m.log.HexDump("recv", frame.UserData)

		apduOut, done, err := m.reassembler.Feed(frame.UserData, m.cfg.ResponseTimeout)
		if err != nil {
			return nil, err
		}
		if !done {
			continue
		}

		resp, err := appl.ParseResponse(apduOut)
		if err != nil {
			return nil, err
		}

		if resp.AC.Seq != seq {
			m.log.Warningf("discarding response with mismatched sequence: got %d want %d", resp.AC.Seq, seq)
			continue
		}
		if resp.AC.CON {
			if err := m.sendConfirm(seq); err != nil {
				return nil, err
			}
		}
		return resp, nil
	}
}

func (m *Master) sendConfirm(seq byte) error {
	apdu, err := appl.BuildConfirm(seq)
	if err != nil {
		return err
	}
	segs, err := transport.BuildSegments(apdu, m.cfg.MaxFrameSize-1, m.transportSeq)
	if err != nil {
		return err
	}
	m.transportSeq = (m.transportSeq + byte(len(segs))) & 0x3F
	for _, seg := range segs {
		frame, err := dlink.BuildFrame(m.cfg.OutstationAddress, m.cfg.MasterAddress, dlink.FuncUserDataUnconfirm, seg.Bytes(), true, false, false)
		if err != nil {
			return err
		}
		m.log.HexDump("send", frame)
		if _, err := m.tr.Write(frame); err != nil {
			return &dnperr.CommunicationError{Host: m.cfg.Host, Port: m.cfg.Port, Op: "write confirm", Err: err}
		}
	}
	return nil
}
