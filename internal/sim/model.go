package sim

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sweeney/medclock/internal/display"
	"github.com/sweeney/medclock/internal/logic"
)

// The OLED is 128x64 pixels; a cell of the text grid is one 6x8 glyph.
const (
	screenCols = display.Width / 6
	screenRows = display.Height / 8
	glyphW     = 6
	glyphH     = 8
)

var (
	screenStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Foreground(lipgloss.Color("81")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	ledOnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	ledOffStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	toneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	faultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))
)

type stateMsg State

type Model struct {
	panel    *Panel
	keys     KeyMap
	help     help.Model
	state    State
	quitting bool
}

// NewModel draws p and forwards key presses to it.
func NewModel(p *Panel) Model {
	return Model{
		panel: p,
		keys:  DefaultKeyMap(),
		help:  help.New(),
		state: p.State(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case stateMsg:
		m.state = State(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.panel.Close()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Up):
			m.panel.Press(logic.ButtonUp)
		case key.Matches(msg, m.keys.Down):
			m.panel.Press(logic.ButtonDown)
		case key.Matches(msg, m.keys.Ok):
			m.panel.Press(logic.ButtonOk)
		case key.Matches(msg, m.keys.Cancel):
			m.panel.Press(logic.ButtonCancel)
		case key.Matches(msg, m.keys.Warmer):
			m.panel.Adjust(0.5, 0)
		case key.Matches(msg, m.keys.Cooler):
			m.panel.Adjust(-0.5, 0)
		case key.Matches(msg, m.keys.Wetter):
			m.panel.Adjust(0, 1)
		case key.Matches(msg, m.keys.Drier):
			m.panel.Adjust(0, -1)
		case key.Matches(msg, m.keys.Fault):
			m.panel.ToggleFault()
		}
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		screenStyle.Render(strings.Join(renderScreen(m.state.Frame), "\n")),
		m.viewHardware(),
		m.help.View(m.keys),
	)
}

func (m Model) viewHardware() string {
	s := m.state
	leds := fmt.Sprintf("%s %s  %s %s",
		labelStyle.Render("TEMP"), led(s.LEDs[logic.IndicatorTemperature]),
		labelStyle.Render("HUM"), led(s.LEDs[logic.IndicatorHumidity]))

	buzzer := ledOffStyle.Render("silent")
	if s.Note > 0 {
		buzzer = toneStyle.Render(fmt.Sprintf("♪ %d Hz", s.Note))
	}

	sensor := fmt.Sprintf("%.1fC %.0f%%", s.Temperature, s.Humidity)
	if s.Fault {
		sensor = faultStyle.Render("FAULT")
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		leds,
		labelStyle.Render("buzzer ")+buzzer,
		labelStyle.Render("sensor ")+sensor,
	)
}

func led(on bool) string {
	if on {
		return ledOnStyle.Render("●")
	}
	return ledOffStyle.Render("○")
}

// renderScreen lays lines out on a text grid the size of the OLED. Size 2
// text takes two cells per character.
func renderScreen(lines []display.Line) []string {
	grid := make([][]rune, screenRows)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", screenCols))
	}
	for _, l := range lines {
		y := l.Row / glyphH
		x := l.Col / glyphW
		if y < 0 || y >= screenRows {
			continue
		}
		step := max(l.Size, 1)
		for _, r := range l.Text {
			if x >= 0 && x < screenCols {
				grid[y][x] = r
			}
			x += step
		}
	}
	out := make([]string, screenRows)
	for y, row := range grid {
		out[y] = string(row)
	}
	return out
}

// Run shows the panel until the user quits or ctx ends, then closes the
// panel's input.
func Run(ctx context.Context, p *Panel, opts ...tea.ProgramOption) error {
	defer p.Close()

	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	prog := tea.NewProgram(NewModel(p), opts...)
	p.Attach(func(msg any) { prog.Send(msg) })

	_, err := prog.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
