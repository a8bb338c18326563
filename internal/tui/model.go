package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/dwizi/recruit-desk/internal/adminclient"
	"github.com/dwizi/recruit-desk/internal/config"
)

const sendTimeout = 2 * time.Minute

// Sender delivers one chat message. The admin client satisfies it for a
// remote server; the CLI adapts the router for local mode.
type Sender interface {
	Chat(ctx context.Context, input adminclient.ChatRequest) (adminclient.ChatResponse, error)
}

type entryRole int

const (
	roleUser entryRole = iota
	roleDesk
	roleError
)

type entry struct {
	role    entryRole
	text    string
	intent  string
	handled bool
}

type replyMsg struct {
	response adminclient.ChatResponse
	err      error
}

type model struct {
	cfg          config.Config
	logger       *slog.Logger
	sender       Sender
	actingUserID string

	keys     keyMap
	help     help.Model
	input    textinput.Model
	entries  []entry
	scroll   int
	busy     bool
	lastErr  string
	width    int
	height   int
	quitting bool
}

func Run(cfg config.Config, sender Sender, actingUserID string, logger *slog.Logger) error {
	program := tea.NewProgram(newModel(cfg, sender, actingUserID, logger))
	_, err := program.Run()
	return err
}

func newModel(cfg config.Config, sender Sender, actingUserID string, logger *slog.Logger) model {
	if logger == nil {
		logger = slog.Default()
	}
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "set reminder for candidate Jane in 2 hours"
	input.CharLimit = 1000
	_ = input.Focus()

	return model{
		cfg:          cfg,
		logger:       logger,
		sender:       sender,
		actingUserID: strings.TrimSpace(actingUserID),
		keys:         newKeyMap(),
		help:         help.New(),
		input:        input,
		width:        100,
		height:       30,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.input.SetWidth(maxInt(10, m.width-6))
		return m, nil
	case replyMsg:
		m.busy = false
		if typed.err != nil {
			m.lastErr = typed.err.Error()
			m.entries = append(m.entries, entry{role: roleError, text: typed.err.Error()})
			return m, nil
		}
		m.lastErr = ""
		m.entries = append(m.entries, entry{
			role:    roleDesk,
			text:    typed.response.Reply,
			intent:  typed.response.Intent,
			handled: typed.response.Handled,
		})
		m.scroll = 0
		return m, nil
	case tea.KeyPressMsg:
		switch {
		case key.Matches(typed, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(typed, m.keys.Send):
			return m.send()
		case key.Matches(typed, m.keys.Clear):
			m.entries = nil
			m.scroll = 0
			m.lastErr = ""
			return m, nil
		case key.Matches(typed, m.keys.ScrollUp):
			m.scroll++
			return m, nil
		case key.Matches(typed, m.keys.ScrollDown):
			if m.scroll > 0 {
				m.scroll--
			}
			return m, nil
		case key.Matches(typed, m.keys.ToggleHelp):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) send() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.busy {
		return m, nil
	}
	m.entries = append(m.entries, entry{role: roleUser, text: text})
	m.input.Reset()
	m.scroll = 0
	if m.sender == nil {
		m.entries = append(m.entries, entry{role: roleError, text: "no chat backend configured"})
		return m, nil
	}
	m.busy = true
	return m, m.sendCmd(text)
}

func (m model) sendCmd(text string) tea.Cmd {
	sender := m.sender
	request := adminclient.ChatRequest{Text: text, ActingUserID: m.actingUserID}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		response, err := sender.Chat(ctx, request)
		return replyMsg{response: response, err: err}
	}
}

func (m model) View() tea.View {
	view := tea.NewView(m.render())
	view.AltScreen = true
	return view
}

func (m model) render() string {
	if m.quitting {
		return "recruit-desk console closed\n"
	}
	t := newTheme()

	status := t.chipReady.Render("READY")
	if m.busy {
		status = t.chipBusy.Render("WAITING")
	} else if m.lastErr != "" {
		status = t.chipError.Render("ERROR")
	}
	actor := fallbackText(m.actingUserID, "anonymous")
	header := t.headerBox.Width(m.width).Render(
		t.brand.Render("Recruit Desk") + "  " + status + "\n" +
			t.headerSub.Render(fmt.Sprintf("acting as %s | %s | %s", actor, fallbackText(m.cfg.DisplayTimezone, "UTC"), fallbackText(m.cfg.AdminAPIURL, "local"))),
	)
	footer := t.footerBox.Width(m.width).Render(m.input.View() + "\n" + m.help.View(m.keys))

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	body := strings.Join(visibleLines(m.transcriptLines(t), bodyHeight, m.scroll), "\n")
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m model) transcriptLines(t theme) []string {
	if len(m.entries) == 0 {
		return []string{t.subtle.Render("Type a request and press enter.")}
	}
	lines := []string{}
	for _, item := range m.entries {
		switch item.role {
		case roleUser:
			lines = append(lines, t.userLabel.Render("you"))
		case roleDesk:
			label := t.deskLabel.Render("desk")
			if item.intent != "" {
				label += " " + t.intentTag.Render("["+item.intent+"]")
			} else if !item.handled {
				label += " " + t.fallbackTag.Render("[answer]")
			}
			lines = append(lines, label)
		case roleError:
			lines = append(lines, t.errorText.Render("error"))
		}
		style := t.messageText
		if item.role == roleError {
			style = t.errorText
		}
		for _, line := range strings.Split(item.text, "\n") {
			lines = append(lines, style.Render("  "+line))
		}
		lines = append(lines, "")
	}
	return lines
}

// visibleLines returns the window of height lines ending scroll lines above
// the bottom of lines.
func visibleLines(lines []string, height, scroll int) []string {
	if height < 1 {
		return nil
	}
	end := len(lines) - scroll
	if end < 0 {
		end = 0
	}
	start := end - height
	if start < 0 {
		start = 0
	}
	return lines[start:end]
}

func fallbackText(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
