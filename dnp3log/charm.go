package dnp3log

import (
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// charmProvider adapts a github.com/charmbracelet/log logger to
// Provider. charmlog has no distinct CRITICAL level, so Criticalf
// logs at Error with an explicit marker field.
type charmProvider struct {
	logger *charmlog.Logger
}

// NewCharmProvider builds the default Provider: a charmbracelet/log
// logger writing to w (os.Stderr when w is nil) with timestamps and a
// "dnp3" prefix.
func NewCharmProvider(w io.Writer) Provider {
	if w == nil {
		w = os.Stderr
	}
	l := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "dnp3",
		Level:           charmlog.DebugLevel, // level gating is done by Logger
	})
	return &charmProvider{logger: l}
}

func (p *charmProvider) Debugf(format string, args ...interface{}) {
	p.logger.Debug(fmt.Sprintf(format, args...))
}

func (p *charmProvider) Infof(format string, args ...interface{}) {
	p.logger.Info(fmt.Sprintf(format, args...))
}

func (p *charmProvider) Warningf(format string, args ...interface{}) {
	p.logger.Warn(fmt.Sprintf(format, args...))
}

func (p *charmProvider) Errorf(format string, args ...interface{}) {
	p.logger.Error(fmt.Sprintf(format, args...))
}

func (p *charmProvider) Criticalf(format string, args ...interface{}) {
	p.logger.Error(fmt.Sprintf(format, args...), "severity", "CRITICAL")
}
