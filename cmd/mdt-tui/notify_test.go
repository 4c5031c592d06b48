package main

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeProcess struct {
	mu     sync.Mutex
	killed bool
	done   chan struct{}
	once   sync.Once
}

func (p *fakeProcess) Kill() error {
	p.mu.Lock()
	p.killed = true
	p.mu.Unlock()
	p.finish()
	return nil
}

func (p *fakeProcess) Wait() error {
	<-p.done
	return nil
}

func (p *fakeProcess) finish() {
	p.once.Do(func() { close(p.done) })
}

func (p *fakeProcess) wasKilled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

type fakeStarter struct {
	mu    sync.Mutex
	argvs [][]string
	procs []*fakeProcess
	fail  error
}

func (s *fakeStarter) start(argv []string) (runningProcess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	proc := &fakeProcess{done: make(chan struct{})}
	s.argvs = append(s.argvs, argv)
	s.procs = append(s.procs, proc)
	return proc, nil
}

func (s *fakeStarter) finishAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.procs {
		p.finish()
	}
}

func newFakeNotifier(t *testing.T, player, speech string) (*execNotifier, *fakeStarter) {
	t.Helper()
	starter := &fakeStarter{}
	n := newExecNotifier("sounds", player, speech, zap.NewNop())
	n.start = starter.start
	t.Cleanup(starter.finishAll)
	return n, starter
}

func TestPlayRestartsSameCue(t *testing.T) {
	n, starter := newFakeNotifier(t, "paplay --volume={volume} {file}", "")

	n.Play(cueClick)
	n.Play(cuePanic)
	n.Play(cueClick)

	require.Len(t, starter.procs, 3)
	assert.True(t, starter.procs[0].wasKilled(), "the first click is cut off by the second")
	assert.False(t, starter.procs[1].wasKilled())
	assert.False(t, starter.procs[2].wasKilled())
	assert.Equal(t, []string{"paplay", "--volume=26214", filepath.Join("sounds", "click.ogg")}, starter.argvs[0])
	assert.Equal(t, []string{"paplay", "--volume=45875", filepath.Join("sounds", "panic.ogg")}, starter.argvs[1])
}

func TestPlayAppendsFileWithoutPlaceholder(t *testing.T) {
	n, starter := newFakeNotifier(t, "aplay -q", "")
	n.Play(cueCall)
	n.Play(soundCue("unknown"))

	require.Len(t, starter.argvs, 1)
	assert.Equal(t, []string{"aplay", "-q", filepath.Join("sounds", "911.ogg")}, starter.argvs[0])
}

func TestSpeakSubstitutesText(t *testing.T) {
	n, starter := newFakeNotifier(t, "", "espeak-ng -v en-us {text}")
	n.Speak("New BOLO created: Red sedan.")
	n.Speak("   ")

	require.Len(t, starter.argvs, 1)
	assert.Equal(t, []string{"espeak-ng", "-v", "en-us", "New BOLO created: Red sedan."}, starter.argvs[0])

	n.Play(cueClick)
	assert.Len(t, starter.argvs, 1, "empty player command disables cues")
}

func TestNotifierSwallowsStartFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	n := newExecNotifier("sounds", "paplay {file}", "say {text}", zap.New(core))
	n.start = (&fakeStarter{fail: errors.New("exec: not found")}).start

	n.Play(cueBolo)
	n.Speak("hello")

	assert.Equal(t, 1, logs.FilterMessage("sound playback failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("speech failed").Len())
	assert.Empty(t, n.playing)
}

func TestExpandCommand(t *testing.T) {
	got := expandCommand([]string{"play", "--gain={volume}"}, map[string]string{"{file}": "a.ogg", "{volume}": "10"}, "{file}")
	assert.Equal(t, []string{"play", "--gain=10", "a.ogg"}, got)
}
