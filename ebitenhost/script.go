package ebitenhost

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/bramble"
)

// Script actions.
const (
	ActionScreenshot = "screenshot"
	ActionWait       = "wait"
	ActionPause      = "pause"
	ActionResume     = "resume"
	ActionTimeScale  = "timescale"
	ActionQuit       = "quit"
)

// ScriptStep is one scripted action.
type ScriptStep struct {
	Action string  `yaml:"action"`
	Label  string  `yaml:"label,omitempty"`
	Frames int     `yaml:"frames,omitempty"`
	Scale  float64 `yaml:"scale,omitempty"`
}

type scriptFile struct {
	Steps []ScriptStep `yaml:"steps"`
}

// Script replays a fixed sequence of actions, one per Update, for capture
// runs and smoke tests. Attach it with Game.SetScript.
type Script struct {
	steps   []ScriptStep
	cursor  int
	waiting int
	done    bool
}

// ParseScript reads a script document. YAML and JSON are both accepted.
func ParseScript(data []byte) (*Script, error) {
	var f scriptFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("ebitenhost: parse script: %w", err)
	}
	return NewScript(f.Steps...)
}

// LoadScript reads and parses the script at path.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ebitenhost: read script: %w", err)
	}
	return ParseScript(data)
}

// NewScript validates steps and returns a script positioned at the first.
func NewScript(steps ...ScriptStep) (*Script, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("ebitenhost: script has no steps: %w", bramble.ErrInvalidArgument)
	}
	for i, st := range steps {
		switch st.Action {
		case ActionScreenshot, ActionPause, ActionResume, ActionQuit:
		case ActionWait:
			if st.Frames < 0 {
				return nil, fmt.Errorf("ebitenhost: step %d: negative wait: %w", i, bramble.ErrInvalidArgument)
			}
		case ActionTimeScale:
			if !(st.Scale > 0) {
				return nil, fmt.Errorf("ebitenhost: step %d: time scale must be positive: %w", i, bramble.ErrInvalidArgument)
			}
		default:
			return nil, fmt.Errorf("ebitenhost: step %d: unknown action %q: %w", i, st.Action, bramble.ErrInvalidArgument)
		}
	}
	return &Script{steps: append([]ScriptStep(nil), steps...)}, nil
}

// Done reports whether every step has run.
func (s *Script) Done() bool { return s.done }

// step runs at most one action. A wait of n frames holds the script for n
// updates including the current one.
func (s *Script) step(g *Game) {
	if s.done {
		return
	}
	if s.waiting > 0 {
		s.waiting--
		return
	}
	if s.cursor >= len(s.steps) {
		s.done = true
		return
	}

	st := s.steps[s.cursor]
	s.cursor++

	switch st.Action {
	case ActionScreenshot:
		g.Screenshot(st.Label)
	case ActionWait:
		if st.Frames > 0 {
			s.waiting = st.Frames - 1
		}
	case ActionPause:
		if g.clock != nil {
			g.clock.Pause()
		}
	case ActionResume:
		if g.clock != nil {
			g.clock.Resume()
		}
	case ActionTimeScale:
		if g.clock != nil {
			if err := g.clock.SetTimeScale(st.Scale); err != nil {
				g.log.Warn("script time scale", zap.Error(err))
			}
		}
	case ActionQuit:
		g.Quit()
	}

	if s.cursor >= len(s.steps) && s.waiting == 0 {
		s.done = true
	}
}
