package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type terminalFixture struct {
	term *terminal
	rec  *commandRecorder
	sink *notificationLog
	logs *observer.ObservedLogs
}

func newTerminalFixture(t *testing.T) terminalFixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	rec := &commandRecorder{}
	sink := &notificationLog{}
	term := newTerminal(terminalOptions{
		sender:      rec,
		sink:        sink,
		log:         zap.New(core),
		adminSecret: "letmein",
	})
	return terminalFixture{term: term, rec: rec, sink: sink, logs: logs}
}

// frameOf builds an inbound event the way the wire delivers it.
func frameOf(t *testing.T, fields map[string]any) inboundEvent {
	t.Helper()
	raw, err := json.Marshal(fields)
	require.NoError(t, err)
	ev, err := decodeInboundFrame(raw)
	require.NoError(t, err)
	return ev
}

func eventOf(t *testing.T, name string, data any) inboundEvent {
	t.Helper()
	fields := map[string]any{"action": name}
	if data != nil {
		fields["data"] = data
	}
	return frameOf(t, fields)
}

// encoded returns v as a JSON string, the way some backends double-encode data.
func encoded(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}

func (f terminalFixture) dispatch(t *testing.T, name string, data any) {
	t.Helper()
	f.term.dispatch(eventOf(t, name, data))
}
