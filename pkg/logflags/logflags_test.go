package logflags

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestMakeLogger_withFlagFalse(t *testing.T) {
	if logOut != nil {
		t.Fatalf("expected logOut to be nil; but was <%v>", logOut)
	}

	actual := makeLogger(false, logrus.Fields{"foo": "bar"})
	if actual.Logger.Level != logrus.PanicLevel {
		t.Fatalf("expected actual.Logger.Level to be <%v>; but was <%v>", logrus.PanicLevel, actual.Logger.Level)
	}
	if len(actual.Data) != 1 || actual.Data["foo"] != "bar" {
		t.Fatalf("expected actual.Data to be {'foo':'bar'}; but was <%v>", actual.Data)
	}
}

func TestMakeLogger_withFlagTrue(t *testing.T) {
	actual := makeLogger(true, logrus.Fields{"foo": "bar"})
	if actual.Logger.Level != logrus.DebugLevel {
		t.Fatalf("expected actual.Logger.Level to be <%v>; but was <%v>", logrus.DebugLevel, actual.Logger.Level)
	}
	if actual.Logger.Formatter != textFormatterInstance {
		t.Fatalf("expected actual.Logger.Formatter to be <%v>; but was <%v>", textFormatterInstance, actual.Logger.Formatter)
	}
}

func TestMakeLogger_usingLogOut(t *testing.T) {
	out := &bufferWriter{}
	logOut = out
	defer func() {
		logOut = nil
	}()

	actual := makeLogger(true, logrus.Fields{"layer": "proc"})
	if actual.Logger.Out != logOut {
		t.Fatalf("expected actual.Logger.Out to be <%v>; but was <%v>", logOut, actual.Logger.Out)
	}
	actual.WithField("pid", 42).Debugf("process %d stopped", 42)
	got := out.String()
	if !strings.Contains(got, "debug layer=proc pid=42 process 42 stopped") {
		t.Fatalf("unexpected log line %q", got)
	}
}

func TestMakeLogger_disabledLayerIsSilent(t *testing.T) {
	out := &bufferWriter{}
	logOut = out
	defer func() {
		logOut = nil
	}()

	actual := makeLogger(false, logrus.Fields{"layer": "debugger"})
	actual.Errorf("resuming pid %d: %v", 42, "no such process")
	actual.Warnf("instruction decoding disabled")
	if out.Len() != 0 {
		t.Fatalf("disabled layer produced output %q", out.String())
	}
}

func TestTextFormatter(t *testing.T) {
	entry := &logrus.Entry{
		Time:    time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:   logrus.InfoLevel,
		Message: "hello",
		Data:    logrus.Fields{"b": 2, "layer": "debugger", "a": 1},
	}
	out, err := textFormatterInstance.Format(entry)
	if err != nil {
		t.Fatal(err)
	}
	const want = "2020-01-02T03:04:05Z info layer=debugger a=1 b=2 hello\n"
	if string(out) != want {
		t.Fatalf("expected %q got %q", want, out)
	}
}

func TestSetup(t *testing.T) {
	defer func() {
		debugger, procLayer, terminal = false, false, false
	}()

	if err := Setup(false, "proc", ""); err != errLogstrWithoutLog {
		t.Fatalf("expected %v got %v", errLogstrWithoutLog, err)
	}
	if err := Setup(true, "proc,terminal", ""); err != nil {
		t.Fatal(err)
	}
	if Debugger() || !Proc() || !Terminal() {
		t.Fatalf("wrong layers enabled: debugger=%v proc=%v terminal=%v", Debugger(), Proc(), Terminal())
	}
	if err := Setup(true, "", ""); err != nil {
		t.Fatal(err)
	}
	if !Debugger() {
		t.Fatal("debugger layer should be enabled by default")
	}
}

type bufferWriter struct {
	bytes.Buffer
}

func (bw *bufferWriter) Close() error {
	return nil
}
