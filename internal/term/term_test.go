package term

import (
	"image/color"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/node-field/internal/config"
	"github.com/iburimskiy/node-field/internal/field"
)

var teal = color.NRGBA{R: 0, G: 200, B: 150, A: 255}

func testConfig(bounds string) config.Config {
	cfg := config.Default()
	cfg.Nodes = 10
	cfg.Seed = 5
	cfg.Width, cfg.Height = 320, 160
	cfg.Bounds = bounds
	return cfg
}

func TestCanvasDotSize(t *testing.T) {
	c := NewCanvas(10, 3)
	w, h := c.DotSize()
	assert.Equal(t, 20, w)
	assert.Equal(t, 12, h)
	assert.True(t, c.Available())

	c.Resize(0, 3)
	assert.False(t, c.Available())
}

func TestCanvasBrailleMapping(t *testing.T) {
	tests := []struct {
		name string
		x, y int
		want rune
	}{
		{"top left", 0, 0, 0x2801},
		{"third row left", 0, 2, 0x2804},
		{"bottom left", 0, 3, 0x2840},
		{"top right", 1, 0, 0x2808},
		{"bottom right", 1, 3, 0x2880},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCanvas(1, 1)
			c.blend(tt.x, tt.y, teal)
			assert.Equal(t, string(tt.want), stripANSI(c.View()))
		})
	}
}

func TestCanvasClear(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Disc(4, 4, 2, teal)
	assert.NotEqual(t, strings.Repeat(" ", 4)+"\n"+strings.Repeat(" ", 4), stripANSI(c.View()))

	c.Clear()
	assert.Equal(t, strings.Repeat(" ", 4)+"\n"+strings.Repeat(" ", 4), stripANSI(c.View()))
}

func TestCanvasDropsFaintAndOffGridDots(t *testing.T) {
	c := NewCanvas(2, 1)
	c.blend(0, 0, color.NRGBA{R: 255, A: 10})
	c.blend(-1, 0, teal)
	c.blend(4, 0, teal)
	c.blend(0, 4, teal)
	assert.Equal(t, "  ", stripANSI(c.View()))
}

func TestCanvasLineCoversEndpoints(t *testing.T) {
	c := NewCanvas(8, 1)
	c.Line(0.5, 0.5, 15.5, 0.5, 1, teal, teal)
	w, _ := c.DotSize()
	for x := range w {
		assert.Greater(t, c.dots[x].alpha, 0.9, "dot %d", x)
	}
}

func TestCanvasBlendAccumulates(t *testing.T) {
	c := NewCanvas(1, 1)
	half := color.NRGBA{R: 255, A: 128}
	c.blend(0, 0, half)
	first := c.dots[0].alpha
	c.blend(0, 0, half)
	assert.Greater(t, c.dots[0].alpha, first)
	assert.LessOrEqual(t, c.dots[0].alpha, 1.0)
}

func TestScaledConvertsToDots(t *testing.T) {
	cfg := config.Default()
	s := Scaled(cfg)
	assert.InDelta(t, cfg.MaxDistance/4, s.MaxDistance, 1e-9)
	assert.InDelta(t, cfg.Speed/4, s.Speed, 1e-9)
	assert.InDelta(t, cfg.RadiusMax/4, s.RadiusMax, 1e-9)
	assert.Equal(t, maxFPS, s.FPS)
	assert.NoError(t, s.Validate())
}

func TestNewModelRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(config.BoundsWindow)
	cfg.MaxLinks = 0
	_, err := NewModel(cfg, nil)
	assert.ErrorIs(t, err, field.ErrInvalidConfiguration)
}

func TestModelContainerSize(t *testing.T) {
	m, err := NewModel(testConfig(config.BoundsContainer), nil)
	require.NoError(t, err)
	w, h := m.canvas.DotSize()
	assert.Equal(t, 80, w)
	assert.Equal(t, 40, h)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 200, Height: 60})
	w, h = updated.(Model).canvas.DotSize()
	assert.Equal(t, 80, w, "container mode ignores the terminal size")
	assert.Equal(t, 40, h)
}

func TestModelTickRunsFrames(t *testing.T) {
	m, err := NewModel(testConfig(config.BoundsWindow), nil)
	require.NoError(t, err)
	defer m.anim.Stop()

	var model tea.Model = m
	for i := 0; i < 3; i++ {
		var cmd tea.Cmd
		model, cmd = model.Update(tickMsg(time.Now()))
		require.NotNil(t, cmd)
	}
	got := model.(Model)
	assert.True(t, got.started)
	assert.Equal(t, uint64(3), got.anim.Stats().Frames)
	assert.Equal(t, 1, got.sched.Pending())
	assert.NotEmpty(t, got.View())
}

func TestModelWindowResize(t *testing.T) {
	m, err := NewModel(testConfig(config.BoundsWindow), nil)
	require.NoError(t, err)
	defer m.anim.Stop()

	model, _ := m.Update(tickMsg(time.Now()))
	model, _ = model.Update(tea.WindowSizeMsg{Width: 40, Height: 11})
	model, _ = model.Update(tickMsg(time.Now()))

	st := model.(Model).anim.Stats()
	assert.Equal(t, 80.0, st.Width)
	assert.Equal(t, 40.0, st.Height)
	for _, n := range model.(Model).anim.Field().Nodes() {
		assert.LessOrEqual(t, n.X, 80.0)
		assert.LessOrEqual(t, n.Y, 40.0)
	}
}

func TestModelQuitStopsAnimator(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		t.Run(key.String(), func(t *testing.T) {
			m, err := NewModel(testConfig(config.BoundsWindow), nil)
			require.NoError(t, err)

			model, _ := m.Update(tickMsg(time.Now()))
			model, cmd := model.Update(key)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())

			got := model.(Model)
			assert.False(t, got.anim.Running())
			assert.Equal(t, 0, got.sched.Pending())
			assert.Empty(t, got.View())

			// A tick already in flight must not draw another frame.
			frames := got.anim.Stats().Frames
			model.Update(tickMsg(time.Now()))
			assert.Equal(t, frames, got.anim.Stats().Frames)
		})
	}
}

func TestModelStartFailureQuits(t *testing.T) {
	m, err := NewModel(testConfig(config.BoundsWindow), nil)
	require.NoError(t, err)
	m.canvas.Resize(0, 0)

	model, cmd := m.Update(tickMsg(time.Now()))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Error(t, model.(Model).Err())
}

func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == 0x1b:
			inEscape = true
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
