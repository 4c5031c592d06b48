package main

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

type soundCue string

const (
	cueClick soundCue = "click"
	cuePanic soundCue = "panic"
	cueCall  soundCue = "call"
	cueBolo  soundCue = "bolo"
)

type cueSpec struct {
	file   string
	volume float64
}

var cueTable = map[soundCue]cueSpec{
	cueClick: {file: "click.ogg", volume: 0.4},
	cuePanic: {file: "panic.ogg", volume: 0.7},
	cueCall:  {file: "911.ogg", volume: 0.7},
	cueBolo:  {file: "bolo.ogg", volume: 0.6},
}

// notifier is the audio/speech output sink. Implementations swallow every
// failure.
type notifier interface {
	Play(cue soundCue)
	Speak(text string)
}

type runningProcess interface {
	Kill() error
	Wait() error
}

type processStarter func(argv []string) (runningProcess, error)

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

func (p *execProcess) Wait() error {
	return p.cmd.Wait()
}

func startExec(argv []string) (runningProcess, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd}, nil
}

// execNotifier plays cues and speech by running external commands. A cue
// that is still playing is killed before it starts again, so rapid repeats
// restart instead of stacking.
type execNotifier struct {
	soundDir string
	player   []string
	speech   []string
	start    processStarter
	log      *zap.Logger

	mu      sync.Mutex
	playing map[soundCue]runningProcess
}

func newExecNotifier(soundDir, player, speech string, log *zap.Logger) *execNotifier {
	return &execNotifier{
		soundDir: soundDir,
		player:   strings.Fields(player),
		speech:   strings.Fields(speech),
		start:    startExec,
		log:      log,
		playing:  map[soundCue]runningProcess{},
	}
}

func (n *execNotifier) Play(cue soundCue) {
	spec, ok := cueTable[cue]
	if !ok || len(n.player) == 0 {
		return
	}
	argv := expandCommand(n.player, map[string]string{
		"{file}":   filepath.Join(n.soundDir, spec.file),
		"{volume}": fmt.Sprintf("%d", int(spec.volume*65536)),
	}, "{file}")

	n.mu.Lock()
	if prev, ok := n.playing[cue]; ok {
		_ = prev.Kill()
		delete(n.playing, cue)
	}
	proc, err := n.start(argv)
	if err != nil {
		n.mu.Unlock()
		n.log.Warn("sound playback failed", zap.String("cue", string(cue)), zap.Error(err))
		return
	}
	n.playing[cue] = proc
	n.mu.Unlock()

	go func() {
		_ = proc.Wait()
		n.mu.Lock()
		if n.playing[cue] == proc {
			delete(n.playing, cue)
		}
		n.mu.Unlock()
	}()
}

func (n *execNotifier) Speak(text string) {
	text = strings.TrimSpace(text)
	if text == "" || len(n.speech) == 0 {
		return
	}
	argv := expandCommand(n.speech, map[string]string{"{text}": text}, "{text}")
	proc, err := n.start(argv)
	if err != nil {
		n.log.Warn("speech failed", zap.Error(err))
		return
	}
	go func() {
		if err := proc.Wait(); err != nil {
			n.log.Debug("speech exited with error", zap.Error(err))
		}
	}()
}

// expandCommand substitutes placeholders in argv. When the primary
// placeholder does not appear anywhere, its value is appended as the last
// argument.
func expandCommand(argv []string, values map[string]string, primary string) []string {
	out := make([]string, 0, len(argv)+1)
	usedPrimary := false
	for _, arg := range argv {
		if strings.Contains(arg, primary) {
			usedPrimary = true
		}
		for placeholder, value := range values {
			arg = strings.ReplaceAll(arg, placeholder, value)
		}
		out = append(out, arg)
	}
	if !usedPrimary {
		out = append(out, values[primary])
	}
	return out
}

type mutedNotifier struct{}

func (mutedNotifier) Play(soundCue)  {}
func (mutedNotifier) Speak(string) {}

type notificationLog struct {
	mu     sync.Mutex
	cues   []soundCue
	speech []string
}

func (l *notificationLog) Play(cue soundCue) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cues = append(l.cues, cue)
}

func (l *notificationLog) Speak(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.speech = append(l.speech, text)
}

func (l *notificationLog) count(cue soundCue) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.cues {
		if c == cue {
			n++
		}
	}
	return n
}

func (l *notificationLog) spoken() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.speech))
	copy(out, l.speech)
	return out
}
