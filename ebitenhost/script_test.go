package ebitenhost

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/phanxgames/bramble"
)

func newScriptGame(t *testing.T) (*Game, *bramble.TimeManager) {
	t.Helper()
	tm := bramble.NewTimeManager(bramble.TimeOptions{})
	g := NewGame(GameOptions{Logger: zap.NewNop()})
	g.SetClock(tm)
	return g, tm
}

func TestParseScript(t *testing.T) {
	s, err := ParseScript([]byte(`{"steps": [{"action": "wait", "frames": 2}, {"action": "screenshot", "label": "a"}]}`))
	require.NoError(t, err)
	assert.Len(t, s.steps, 2)

	s, err = ParseScript([]byte("steps:\n  - action: timescale\n    scale: 0.5\n  - action: quit\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.5, s.steps[0].Scale)
}

func TestParseScriptErrors(t *testing.T) {
	tests := map[string]string{
		"empty":          `{"steps": []}`,
		"unknown action": `{"steps": [{"action": "click"}]}`,
		"negative wait":  `{"steps": [{"action": "wait", "frames": -1}]}`,
		"zero scale":     `{"steps": [{"action": "timescale"}]}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScript([]byte(doc))
			assert.ErrorIs(t, err, bramble.ErrInvalidArgument)
		})
	}

	_, err := ParseScript([]byte("steps: ["))
	assert.Error(t, err)
}

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - action: pause\n"), 0o644))
	s, err := LoadScript(path)
	require.NoError(t, err)
	assert.Equal(t, ActionPause, s.steps[0].Action)

	_, err = LoadScript(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestScriptSteps(t *testing.T) {
	g, tm := newScriptGame(t)
	s, err := NewScript(
		ScriptStep{Action: ActionPause},
		ScriptStep{Action: ActionWait, Frames: 3},
		ScriptStep{Action: ActionScreenshot, Label: "paused"},
		ScriptStep{Action: ActionResume},
		ScriptStep{Action: ActionTimeScale, Scale: 2},
		ScriptStep{Action: ActionQuit},
	)
	require.NoError(t, err)

	s.step(g)
	assert.True(t, tm.Paused())

	// The wait holds for three updates including the one that starts it.
	for i := 0; i < 3; i++ {
		s.step(g)
	}
	assert.Empty(t, g.shots)
	s.step(g)
	assert.Equal(t, []string{"paused"}, g.shots)

	s.step(g)
	assert.False(t, tm.Paused())
	s.step(g)
	assert.Equal(t, 2.0, tm.TimeScale())
	assert.False(t, s.Done())

	s.step(g)
	assert.True(t, g.quit)
	assert.True(t, s.Done())
}

func TestGameUpdateStepsScript(t *testing.T) {
	g, _ := newScriptGame(t)
	s, err := NewScript(ScriptStep{Action: ActionQuit})
	require.NoError(t, err)
	g.SetScript(s)
	assert.Equal(t, ebiten.Termination, g.Update())
}

func TestScriptWithoutClock(t *testing.T) {
	g := NewGame(GameOptions{Logger: zap.NewNop()})
	s, err := NewScript(ScriptStep{Action: ActionPause}, ScriptStep{Action: ActionTimeScale, Scale: 3})
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		s.step(g)
		s.step(g)
	})
	assert.True(t, s.Done())
}
