// Package master implements the DNP3 master coordinator: connection
// lifecycle, per-transaction sequencing, retries, and the composite
// operations (integrity poll, class poll, reads, direct-operate,
// select-before-operate, pulse) built on the dlink, transport and
// appl layers.
//
// Config.Validate follows the same "mutate in place, apply defaults,
// reject out-of-range values" shape as the teacher's cs104.Config.Valid,
// generalized from IEC 60870-5-104's t0-t3/k/w parameter set to this
// driver's connection/timing/sizing parameters.
package master

import (
	"strings"
	"time"

	"github.com/rob-gra/go-dnp3/dnp3log"
	"github.com/rob-gra/go-dnp3/dnperr"
)

const (
	DefaultPort         = 20000
	maxLinkAddress      = 65519
	defaultMaxFrameSize = 250
	defaultMaxAPDUSize  = 2048
)

// Config holds everything a Master needs beyond the transport and
// clock it is given at construction. Zero-valued optional fields are
// defaulted by Validate; Validate must be called (directly or via
// New) before a Config is used.
type Config struct {
	Host string
	Port int

	MasterAddress     uint16
	OutstationAddress uint16

	ResponseTimeout   time.Duration
	ConnectionTimeout time.Duration
	SelectTimeout     time.Duration
	MaxRetries        int
	RetryDelay        time.Duration

	// Class1PollInterval, Class2PollInterval and Class3PollInterval
	// drive StartPolling's per-class tickers; zero disables polling for
	// that class.
	Class1PollInterval time.Duration
	Class2PollInterval time.Duration
	Class3PollInterval time.Duration

	ConfirmRequired bool
	MaxFrameSize    int // data-link user-data bytes per frame, 1-250
	MaxAPDUSize     int // 1-65536

	LogLevel     string
	LogRawFrames bool
}

// Validate normalizes c in place (trims the host, applies defaults to
// zero-valued optional fields) and rejects out-of-range values.
func (c *Config) Validate() error {
	c.Host = strings.TrimSpace(c.Host)
	if c.Host == "" {
		return &dnperr.ValidationError{Field: "host", Reason: "must not be empty"}
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Port < 1 || c.Port > 65535 {
		return &dnperr.ValidationError{Field: "port", Reason: "must be 1-65535"}
	}
	if c.MasterAddress > maxLinkAddress {
		return &dnperr.ValidationError{Field: "master_address", Reason: "must be 0-65519"}
	}
	if c.OutstationAddress > maxLinkAddress {
		return &dnperr.ValidationError{Field: "outstation_address", Reason: "must be 0-65519"}
	}
	if c.ResponseTimeout <= 0 {
		return &dnperr.ValidationError{Field: "response_timeout", Reason: "must be positive"}
	}
	if c.ConnectionTimeout <= 0 {
		return &dnperr.ValidationError{Field: "connection_timeout", Reason: "must be positive"}
	}
	if c.SelectTimeout <= 0 {
		return &dnperr.ValidationError{Field: "select_timeout", Reason: "must be positive"}
	}
	if c.MaxRetries < 0 {
		return &dnperr.ValidationError{Field: "max_retries", Reason: "must be >= 0"}
	}
	if c.RetryDelay < 0 {
		return &dnperr.ValidationError{Field: "retry_delay", Reason: "must be >= 0"}
	}
	if c.Class1PollInterval < 0 {
		return &dnperr.ValidationError{Field: "class1_poll_interval", Reason: "must be >= 0"}
	}
	if c.Class2PollInterval < 0 {
		return &dnperr.ValidationError{Field: "class2_poll_interval", Reason: "must be >= 0"}
	}
	if c.Class3PollInterval < 0 {
		return &dnperr.ValidationError{Field: "class3_poll_interval", Reason: "must be >= 0"}
	}
	if c.MaxFrameSize == 0 {
		c.MaxFrameSize = defaultMaxFrameSize
	}
	if c.MaxFrameSize < 1 || c.MaxFrameSize > 250 {
		return &dnperr.ValidationError{Field: "max_frame_size", Reason: "must be 1-250"}
	}
	if c.MaxAPDUSize == 0 {
		c.MaxAPDUSize = defaultMaxAPDUSize
	}
	if c.MaxAPDUSize < 1 || c.MaxAPDUSize > 65536 {
		return &dnperr.ValidationError{Field: "max_apdu_size", Reason: "must be 1-65536"}
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if _, err := dnp3log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
