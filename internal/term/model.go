package term

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/iburimskiy/node-field/internal/animator"
	"github.com/iburimskiy/node-field/internal/config"
)

const (
	// A terminal cell stands in for 8x16 pixels, so one braille dot is 4x4.
	cellWidth  = 8
	cellHeight = 16
	dotScale   = 0.25

	maxFPS = 30

	defaultCols = 80
	defaultRows = 24
)

// Model hosts an animator in the terminal. Every tick is one refresh and runs
// the scheduler once.
type Model struct {
	cfg    config.Config
	logger *zap.Logger

	anim    *animator.Animator
	sched   *animator.Scheduler
	canvas  *Canvas
	started bool

	termWidth, termHeight int
	showStatus            bool
	quitting              bool
	err                   error
}

// Scaled converts a pixel-unit config to braille dot units and caps the
// refresh rate at what a terminal can draw.
func Scaled(cfg config.Config) config.Config {
	cfg.MaxDistance *= dotScale
	cfg.Speed *= dotScale
	cfg.RadiusMin *= dotScale
	cfg.RadiusMax *= dotScale
	if cfg.FPS > maxFPS {
		cfg.FPS = maxFPS
	}
	return cfg
}

// NewModel sizes the canvas from the container size, or from a default
// terminal in window mode until the first WindowSizeMsg arrives.
func NewModel(cfg config.Config, logger *zap.Logger, opts ...animator.Option) (Model, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return Model{}, err
	}
	cols, rows := defaultCols, defaultRows-1
	if cfg.Bounds == config.BoundsContainer {
		cols, rows = max(1, cfg.Width/cellWidth), max(1, cfg.Height/cellHeight)
	}
	canvas := NewCanvas(cols, rows)
	w, h := canvas.DotSize()

	opts = append([]animator.Option{animator.WithLogger(logger)}, opts...)
	anim, err := animator.New(Scaled(cfg), w, h, opts...)
	if err != nil {
		return Model{}, err
	}
	return Model{
		cfg:    cfg,
		logger: logger,
		anim:   anim,
		sched:  animator.NewScheduler(),
		canvas: canvas,
	}, nil
}

// WithStatus returns m with the status line shown.
func (m Model) WithStatus(on bool) Model {
	m.showStatus = on
	return m
}

// Animator returns the hosted animator.
func (m Model) Animator() *animator.Animator {
	return m.anim
}

// Err returns the error that ended the program, if any.
func (m Model) Err() error {
	return m.err
}

func (m Model) Init() tea.Cmd {
	return tickCmd(Scaled(m.cfg).FPS)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isQuit(msg) {
			m.anim.Stop()
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.termWidth, m.termHeight = msg.Width, msg.Height
		if m.cfg.Bounds == config.BoundsWindow {
			cols, rows := msg.Width, msg.Height-1
			if cols > 0 && rows > 0 {
				m.canvas.Resize(cols, rows)
				w, h := m.canvas.DotSize()
				m.anim.Resize(w, h)
			}
		}
		return m, nil

	case tickMsg:
		if !m.started {
			if err := m.anim.Start(m.canvas, m.sched); err != nil {
				m.err = err
				m.quitting = true
				return m, tea.Quit
			}
			m.started = true
		}
		m.sched.Run(time.Time(msg))
		if !m.anim.Running() {
			m.err = m.anim.Err()
			m.quitting = true
			return m, tea.Quit
		}
		return m, tickCmd(Scaled(m.cfg).FPS)
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	body := m.canvas.View()
	if m.cfg.Bounds == config.BoundsContainer {
		body = containerStyle(m.cfg.EdgeTo).Render(body)
	}
	b.WriteString(body)
	b.WriteByte('\n')
	if m.showStatus {
		st := m.anim.Stats()
		b.WriteString(statusStyle.Render(fmt.Sprintf("%dx%d dots  frames %d  edges %d", int(st.Width), int(st.Height), st.Frames, st.Edges)))
		b.WriteString("  ")
	}
	b.WriteString(helpStyle.Render("q quit"))
	return b.String()
}

// Run takes over the terminal and blocks until the user quits, ctx is
// cancelled or the loop halts.
func Run(ctx context.Context, cfg config.Config, logger *zap.Logger, showStatus bool, opts ...animator.Option) error {
	m, err := NewModel(cfg, logger, opts...)
	if err != nil {
		return err
	}
	defer m.anim.Stop()

	p := tea.NewProgram(m.WithStatus(showStatus), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	if fm, ok := final.(Model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}
