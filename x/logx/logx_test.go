package logx

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

var (
	_ Logger = (*Console)(nil)
	_ Logger = (*logrus.Logger)(nil)
	_ Logger = (*logrus.Entry)(nil)
)

func TestConsoleLineFormat(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, "node")
	c.SetClock(func() int64 { return 1234 })

	c.Infof("packet queued (%d bytes)", 2)

	if got, want := buf.String(), "1234: [node] INFO packet queued (2 bytes)\n"; got != want {
		t.Fatalf("line = %q, want %q", got, want)
	}
}

func TestConsoleLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, "")
	c.Debugf("hidden")
	c.SetLevel(LevelWarn)
	c.Infof("hidden too")
	c.Warnf("join failed %d times", 3)

	if got := buf.String(); got != "WARN join failed 3 times\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestConsoleWithKeepsSettings(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, "node")
	c.SetLevel(LevelDebug)
	m := c.With("mac")
	m.Debugf("step")
	if !strings.HasPrefix(buf.String(), "[mac] DEBUG step") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
