package testutil

import (
	"io"
	"log"
	"strings"
	"testing"
)

type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// TestLogger returns a logger that writes through t.Log, so output only
// shows for failing or verbose tests.
func TestLogger(t *testing.T) *log.Logger {
	logger := log.New(testWriter{t: t}, "[test] ", log.LstdFlags)
	t.Cleanup(func() {
		logger.SetOutput(io.Discard)
	})
	return logger
}
