package common

import (
	"bytes"
	"github.com/lni/dragonboat/v4/logger"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]logger.LogLevel{
		"debug": logger.DEBUG, "INFO": logger.INFO, "": logger.INFO, "warn": logger.WARNING, "error": logger.ERROR,
	} {
		got, err := ParseLogLevel(in)
		if err != nil || got != want {
			t.Errorf("%q: expected %v, got %v (%v)", in, want, got, err)
		}
	}
	if _, err := ParseLogLevel("verbose"); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	prev := logOutput
	logOutput = &buf
	defer func() { logOutput = prev }()

	l := CreateLogger("ldlm")
	l.Debugf("hidden %d", 1)
	l.Infof("shown %d", 2)
	l.SetLevel(logger.ERROR)
	l.Warningf("hidden %d", 3)
	l.Errorf("shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Unexpected entries below level:\n%s", out)
	}
	if !strings.Contains(out, "INFO  | ldlm") || !strings.Contains(out, "shown 4") {
		t.Errorf("Missing entries:\n%s", out)
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected Panicf to panic")
		}
	}()
	l.Panicf("boom")
}
