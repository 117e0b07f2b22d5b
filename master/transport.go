package master

import (
	"context"
	"time"
)

// Transport is the byte-stream collaborator a Master drives: open,
// close, a deadline-bounded reader and a writer. netconn.Conn is the
// production implementation (a net.Conn dialed over TCP); tests
// supply an in-memory fake.
type Transport interface {
	Open(ctx context.Context) error
	Close() error
	SetReadDeadline(t time.Time) error
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// Clock abstracts the passage of time so retry backoff and deadlines
// are deterministic in tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time          { return time.Now() }
func (systemClock) Sleep(d time.Duration)   { time.Sleep(d) }

// SystemClock is the production Clock, backed by the time package.
var SystemClock Clock = systemClock{}
