// Package logx is the console logger used on both MCU and host builds.
// Any logger with the four printf-style level methods satisfies Logger,
// including *logrus.Logger and *logrus.Entry.
package logx

import (
	"io"

	"loranode-go/x/conv"
	"loranode-go/x/fmtx"
)

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "?"
}

// Console writes one line per record: "<ms>: [tag] LEVEL message".
// The timestamp is omitted when no clock is set.
type Console struct {
	w     io.Writer
	tag   string
	min   Level
	clock func() int64
}

func NewConsole(w io.Writer, tag string) *Console {
	return &Console{w: w, tag: tag, min: LevelInfo}
}

// With returns a copy writing under another tag.
func (c *Console) With(tag string) *Console {
	cp := *c
	cp.tag = tag
	return &cp
}

func (c *Console) SetLevel(l Level)          { c.min = l }
func (c *Console) SetClock(now func() int64) { c.clock = now }

func (c *Console) Debugf(format string, args ...any) { c.logf(LevelDebug, format, args) }
func (c *Console) Infof(format string, args ...any)  { c.logf(LevelInfo, format, args) }
func (c *Console) Warnf(format string, args ...any)  { c.logf(LevelWarn, format, args) }
func (c *Console) Errorf(format string, args ...any) { c.logf(LevelError, format, args) }

func (c *Console) logf(l Level, format string, args []any) {
	if l < c.min || c.w == nil {
		return
	}
	line := make([]byte, 0, 64)
	if c.clock != nil {
		var num [20]byte
		ms := c.clock()
		if ms < 0 {
			ms = 0
		}
		line = append(line, conv.Utoa(num[:], uint64(ms))...)
		line = append(line, ':', ' ')
	}
	if c.tag != "" {
		line = append(line, '[')
		line = append(line, c.tag...)
		line = append(line, ']', ' ')
	}
	line = append(line, l.String()...)
	line = append(line, ' ')
	line = append(line, fmtx.Sprintf(format, args...)...)
	line = append(line, '\n')
	_, _ = c.w.Write(line)
}

// Discard drops everything.
var Discard Logger = discard{}

type discard struct{}

func (discard) Debugf(string, ...any) {}
func (discard) Infof(string, ...any)  {}
func (discard) Warnf(string, ...any)  {}
func (discard) Errorf(string, ...any) {}
