package sim

import (
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/medclock/internal/display"
	"github.com/sweeney/medclock/internal/gpio"
	"github.com/sweeney/medclock/internal/logic"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(Model)
	require.True(t, ok)
	return mm, cmd
}

func TestPanelPollDeliversPressesInOrder(t *testing.T) {
	p := NewPanel(26, 70)

	b, err := p.Poll()
	require.NoError(t, err)
	assert.Equal(t, logic.ButtonNone, b)

	p.Press(logic.ButtonUp)
	p.Press(logic.ButtonOk)

	b, _ = p.Poll()
	assert.Equal(t, logic.ButtonUp, b)
	b, _ = p.Poll()
	assert.Equal(t, logic.ButtonOk, b)
	b, _ = p.Poll()
	assert.Equal(t, logic.ButtonNone, b)
}

func TestPanelDropsPressesWhenFull(t *testing.T) {
	p := NewPanel(26, 70)
	for i := 0; i < pressQueue+5; i++ {
		p.Press(logic.ButtonDown)
	}

	n := 0
	for {
		b, _ := p.Poll()
		if b == logic.ButtonNone {
			break
		}
		n++
	}
	assert.Equal(t, pressQueue, n)
}

func TestPanelCloseEndsInput(t *testing.T) {
	p := NewPanel(26, 70)
	p.Press(logic.ButtonOk)
	p.Close()
	p.Close()

	_, err := p.Poll()
	assert.ErrorIs(t, err, gpio.ErrInputClosed)
}

func TestPanelFlushShowsFrame(t *testing.T) {
	p := NewPanel(26, 70)
	var got []State
	p.Attach(func(msg any) {
		if s, ok := msg.(stateMsg); ok {
			got = append(got, State(s))
		}
	})

	p.Clear()
	p.DrawText("stale", 1, 0, 0)
	p.Clear()
	p.DrawText("MEDICINE TIME!", 1, 20, 10)
	require.NoError(t, p.Flush())

	want := []display.Line{{Text: "MEDICINE TIME!", Size: 1, Row: 20, Col: 10}}
	assert.Equal(t, want, p.State().Frame)
	require.Len(t, got, 1)
	assert.Equal(t, want, got[0].Frame)
}

func TestPanelIndicatorsAndTone(t *testing.T) {
	p := NewPanel(26, 70)
	updates := 0
	p.Attach(func(any) { updates++ })

	require.NoError(t, p.Set(logic.IndicatorHumidity, true))
	require.NoError(t, p.Set(logic.IndicatorHumidity, true))
	assert.Equal(t, [2]bool{false, true}, p.State().LEDs)
	assert.Equal(t, 1, updates, "unchanged indicator sends nothing")

	assert.Error(t, p.Set(logic.Indicator(5), true))

	require.NoError(t, p.Emit(440, 500*time.Millisecond))
	assert.Equal(t, 440, p.State().Note)
	require.NoError(t, p.Silence())
	assert.Zero(t, p.State().Note)
}

func TestPanelSensor(t *testing.T) {
	p := NewPanel(26, 70)

	p.Adjust(6.5, 15)
	temp, err := p.Temperature()
	require.NoError(t, err)
	assert.Equal(t, 32.5, temp)
	hum, err := p.Humidity()
	require.NoError(t, err)
	assert.Equal(t, 85.0, hum)

	p.Adjust(0, 50)
	hum, _ = p.Humidity()
	assert.Equal(t, 100.0, hum)

	p.ToggleFault()
	temp, err = p.Temperature()
	assert.ErrorIs(t, err, ErrSensorFault)
	assert.True(t, math.IsNaN(temp))
	_, err = p.Humidity()
	assert.ErrorIs(t, err, ErrSensorFault)

	p.ToggleFault()
	_, err = p.Temperature()
	assert.NoError(t, err)
}

func TestModelKeysPressButtons(t *testing.T) {
	p := NewPanel(26, 70)
	m := NewModel(p)

	for _, msg := range []tea.KeyMsg{
		{Type: tea.KeyUp},
		keyRunes("j"),
		{Type: tea.KeyEnter},
		{Type: tea.KeyEsc},
	} {
		var cmd tea.Cmd
		m, cmd = update(t, m, msg)
		assert.Nil(t, cmd)
	}

	var got []logic.Button
	for {
		b, _ := p.Poll()
		if b == logic.ButtonNone {
			break
		}
		got = append(got, b)
	}
	assert.Equal(t, []logic.Button{logic.ButtonUp, logic.ButtonDown, logic.ButtonOk, logic.ButtonCancel}, got)
}

func TestModelKeysAdjustSensor(t *testing.T) {
	p := NewPanel(26, 70)
	m := NewModel(p)

	m, _ = update(t, m, keyRunes("T"))
	m, _ = update(t, m, keyRunes("T"))
	m, _ = update(t, m, keyRunes("h"))
	_, _ = update(t, m, keyRunes("f"))

	s := p.State()
	assert.Equal(t, 27.0, s.Temperature)
	assert.Equal(t, 69.0, s.Humidity)
	assert.True(t, s.Fault)
}

func TestModelQuitClosesPanel(t *testing.T) {
	p := NewPanel(26, 70)
	m, cmd := update(t, NewModel(p), keyRunes("q"))

	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
	assert.Empty(t, m.View())

	_, err := p.Poll()
	assert.ErrorIs(t, err, gpio.ErrInputClosed)
}

func TestModelView(t *testing.T) {
	p := NewPanel(26, 70)
	m := NewModel(p)

	m, _ = update(t, m, stateMsg(State{
		Frame: []display.Line{
			{Text: "10", Size: 2, Row: 0, Col: 10},
			{Text: ":", Size: 2, Row: 0, Col: 40},
			{Text: "30", Size: 2, Row: 0, Col: 50},
			{Text: "Temp: 33.00C High", Size: 1, Row: 20, Col: 0},
		},
		LEDs:        [2]bool{true, false},
		Note:        262,
		Temperature: 33,
		Humidity:    70,
	}))

	v := m.View()
	assert.Contains(t, v, "Temp: 33.00C High")
	assert.Contains(t, v, "262 Hz")
	assert.Contains(t, v, "33.0C 70%")

	m, _ = update(t, m, stateMsg(State{Fault: true}))
	assert.Contains(t, m.View(), "FAULT")
	assert.NotContains(t, m.View(), "Hz")
}

func TestRenderScreen(t *testing.T) {
	rows := renderScreen([]display.Line{
		{Text: "07", Size: 2, Row: 0, Col: 10},
		{Text: ":", Size: 2, Row: 0, Col: 40},
		{Text: "05", Size: 2, Row: 0, Col: 50},
		{Text: "Hum : 70.00%", Size: 1, Row: 30, Col: 0},
		{Text: "offscreen", Size: 1, Row: 64, Col: 0},
		{Text: "a line much wider than the panel", Size: 1, Row: 50, Col: 0},
	})

	require.Len(t, rows, screenRows)
	for _, r := range rows {
		assert.Len(t, []rune(r), screenCols)
	}
	assert.Equal(t, " 0 7  : 0 5", strings.TrimRight(rows[0], " "))
	assert.Equal(t, "Hum : 70.00%", strings.TrimRight(rows[3], " "))
	assert.Equal(t, "a line much wider tha", rows[6])
	assert.Empty(t, strings.TrimSpace(rows[7]))
}
