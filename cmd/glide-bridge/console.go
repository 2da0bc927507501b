package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/glide-bridge/bridge"
	"github.com/wippyai/glide-bridge/host"
	"github.com/wippyai/glide-bridge/resp"
)

// consoleCmd drives the entry points interactively
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Call bridge entry points from an interactive console",
	Args:  cobra.NoArgs,
	RunE:  runConsole,
}

func runConsole(_ *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("console needs an interactive terminal")
	}

	b, err := newBridge()
	if err != nil {
		return err
	}
	defer b.Core().Close()

	_, err = tea.NewProgram(newConsoleModel(b)).Run()
	return err
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	actionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	paramStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// action is one entry point the console can call.
type action struct {
	run    func(b *bridge.Bridge, env host.Env, args []string) (string, error)
	name   string
	params []string
}

var actions = []action{
	{
		name: "constants",
		run: func(b *bridge.Bridge, env host.Env, _ []string) (string, error) {
			var s strings.Builder
			fmt.Fprintf(&s, "max request args: %d bytes\n", b.MaxRequestArgsLengthInBytes())
			fmt.Fprintf(&s, "finished cursor:  %v\n", b.FinishedCursorHandleConstant(env))
			types := []host.Object{
				b.TypeStringConstant(env), b.TypeListConstant(env), b.TypeSetConstant(env),
				b.TypeZSetConstant(env), b.TypeHashConstant(env), b.TypeStreamConstant(env),
			}
			fmt.Fprintf(&s, "key types:        %v", types)
			return s.String(), nil
		},
	},
	{
		name: "statistics",
		run: func(b *bridge.Bridge, env host.Env, _ []string) (string, error) {
			m, ok := b.Statistics(env).(*host.Map)
			if !ok {
				return "", nil
			}
			var s strings.Builder
			m.Range(func(k, v host.Object) bool {
				fmt.Fprintf(&s, "%v: %v\n", k, v)
				return true
			})
			return strings.TrimSuffix(s.String(), "\n"), nil
		},
	},
	{
		name: "start listener",
		run: func(b *bridge.Bridge, env host.Env, _ []string) (string, error) {
			return fmt.Sprint(b.StartSocketListener(env)), nil
		},
	},
	{
		name:   "decode reply",
		params: []string{"words"},
		run: func(b *bridge.Bridge, env host.Env, args []string) (string, error) {
			var elems []resp.Value
			for _, w := range strings.Fields(args[0]) {
				if n, err := strconv.ParseInt(w, 10, 64); err == nil {
					elems = append(elems, resp.Int(n))
					continue
				}
				elems = append(elems, resp.Bulk([]byte(w)))
			}
			h, err := b.LeakReply(resp.Array(elems...))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("handle %d -> %#v", h, b.ValueFromPointer(env, h)), nil
		},
	},
	{
		name:   "leak arguments",
		params: []string{"args"},
		run: func(b *bridge.Bridge, env host.Env, args []string) (string, error) {
			var arr []any
			for _, w := range strings.Fields(args[0]) {
				arr = append(arr, []byte(w))
			}
			h := b.CreateLeakedBytesVec(env, arr)
			if h == 0 {
				return "", nil
			}
			vec, err := b.TakeArgs(h)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("handle %d -> %d arguments", h, len(vec)), nil
		},
	},
	{
		name:   "store script",
		params: []string{"code"},
		run: func(b *bridge.Bridge, env host.Env, args []string) (string, error) {
			return fmt.Sprint(b.StoreScript(env, []byte(args[0]))), nil
		},
	},
	{
		name:   "drop script",
		params: []string{"hash"},
		run: func(b *bridge.Bridge, env host.Env, args []string) (string, error) {
			b.DropScript(env, args[0])
			return "dropped", nil
		},
	},
	{
		name:   "span",
		params: []string{"name"},
		run: func(b *bridge.Bridge, env host.Env, args []string) (string, error) {
			h := b.CreateLeakedOtelSpan(env, args[0])
			if h == 0 {
				return "", nil
			}
			b.DropOtelSpan(env, h)
			return fmt.Sprintf("span %d ended", h), nil
		},
	},
	{
		name:   "log level",
		params: []string{"level (0-5)"},
		run: func(b *bridge.Bridge, env host.Env, args []string) (string, error) {
			n, err := strconv.ParseInt(args[0], 10, 32)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("level %d", b.InitInternal(env, int32(n), nil)), nil
		},
	},
}

type consoleState int

const (
	stateSelect consoleState = iota
	stateInput
	stateResult
)

type consoleModel struct {
	err      error
	bridge   *bridge.Bridge
	result   string
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    consoleState
}

type resultMsg struct {
	err    error
	result string
}

func newConsoleModel(b *bridge.Bridge) *consoleModel {
	return &consoleModel{bridge: b, state: stateSelect}
}

func (m *consoleModel) Init() tea.Cmd {
	return nil
}

func (m *consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInput {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelect && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelect && m.selected < len(actions)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelect:
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.call
				}
				m.state = stateInput
				return m, nil

			case stateInput:
				return m, m.call

			case stateResult:
				m.reset()
			}

		case "tab":
			if m.state == stateInput && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			if m.state != stateSelect {
				m.reset()
			}
		}

	case resultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateResult
	}

	if m.state == stateInput {
		cmds := make([]tea.Cmd, len(m.inputs))
		for i := range m.inputs {
			m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *consoleModel) reset() {
	m.state = stateSelect
	m.inputs = nil
	m.result = ""
	m.err = nil
}

func (m *consoleModel) prepareInputs() {
	a := actions[m.selected]
	m.inputs = make([]textinput.Model, len(a.params))
	for i, p := range a.params {
		ti := textinput.New()
		ti.Prompt = p + ": "
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *consoleModel) call() tea.Msg {
	args := make([]string, len(m.inputs))
	for i, input := range m.inputs {
		args[i] = input.Value()
	}

	env := host.NewNative()
	result, err := actions[m.selected].run(m.bridge, env, args)
	if ex := env.TakeException(); ex != nil {
		return resultMsg{err: ex}
	}
	return resultMsg{result: result, err: err}
}

func (m *consoleModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("glide-bridge"))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelect:
		b.WriteString("Select an entry point:\n\n")
		for i, a := range actions {
			line := a.name
			if len(a.params) > 0 {
				line += "(" + strings.Join(a.params, ", ") + ")"
			}
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + actionStyle.Render(line))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInput:
		a := actions[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", actionStyle.Render(a.name)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(paramStyle.Render(a.params[i]))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateResult:
		a := actions[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", actionStyle.Render(a.name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}
