package ui

import (
	"fmt"
	"strings"
	"time"

	"emergenzchat/internal/services"
	"emergenzchat/pkg/chattypes"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// pulseDuration is how long the emergence indicator stays lit after a
// high-scoring reply. Overlapping pulses are independent: each one holds
// the indicator for its own duration, so rapid high scores extend the
// visible activity.
const pulseDuration = 3 * time.Second

// entryKind classifies entries of the displayed transcript.
type entryKind int

const (
	entryUser entryKind = iota
	entryAssistant
	entryError
)

// transcriptEntry is one displayed line group. The transcript is a superset
// of the model-bound history: error entries exist only here and are never
// sent to the model.
type transcriptEntry struct {
	kind    entryKind
	content string
	score   int
}

// Messages produced by the conversation loop and internal timers.
type (
	assistantReplyMsg struct {
		text  string
		score int
	}
	collaboratorErrMsg struct{ message string }
	submitIgnoredMsg   struct{}
	clockTickMsg       time.Time
	pulseExpiredMsg    struct{}
)

// EventRelay adapts the chat service's event handler interface to bubbletea
// messages. The channel is buffered for the single event each exchange
// produces; the send command drains it synchronously.
type EventRelay struct {
	events chan tea.Msg
}

// NewEventRelay creates an EventRelay ready to be passed to the chat service.
func NewEventRelay() *EventRelay {
	return &EventRelay{events: make(chan tea.Msg, 1)}
}

// OnAssistantTurnReady forwards a scored reply to the UI.
func (r *EventRelay) OnAssistantTurnReady(text string, score int) {
	r.events <- assistantReplyMsg{text: text, score: score}
}

// OnError forwards a collaborator failure to the UI.
func (r *EventRelay) OnError(message string) {
	r.events <- collaboratorErrMsg{message: message}
}

// Model is the bubbletea model for the chat interface.
type Model struct {
	chat     *services.ChatService
	markdown *services.MarkdownService
	relay    *EventRelay
	styles   Styles

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	transcript []transcriptEntry

	sessionStart time.Time
	now          time.Time
	lastScore    int
	pulseCount   int
	isLoading    bool
	ready        bool
	width        int
	height       int
}

// NewModel creates the chat model, seeding the displayed transcript from
// the session's existing history (the assistant opener).
func NewModel(chat *services.ChatService, markdown *services.MarkdownService, relay *EventRelay) Model {
	ta := textarea.New()
	ta.Placeholder = "Schreib etwas..."
	ta.Focus()
	ta.Prompt = "┃ "
	ta.CharLimit = 2000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	start := time.Now()
	m := Model{
		chat:         chat,
		markdown:     markdown,
		relay:        relay,
		styles:       DefaultStyles(),
		textarea:     ta,
		spinner:      sp,
		transcript:   make([]transcriptEntry, 0),
		sessionStart: start,
		now:          start,
	}

	for _, msg := range chat.Session().Messages {
		kind := entryAssistant
		if msg.Role == chattypes.RoleUser {
			kind = entryUser
		}
		m.transcript = append(m.transcript, transcriptEntry{kind: kind, content: msg.Content})
	}

	return m
}

// Init starts the input cursor, the spinner, and the session clock.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, tickClock())
}

func tickClock() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

func pulseTimer() tea.Cmd {
	return tea.Tick(pulseDuration, func(time.Time) tea.Msg {
		return pulseExpiredMsg{}
	})
}

// sendCmd runs one exchange on the conversation loop. The loop reports its
// outcome through the relay before returning, so the single buffered event
// is available immediately; a drained-empty channel means the submission
// was ignored (blank input or a request already in flight).
func (m Model) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		m.chat.HandleUserSubmit(text)
		select {
		case msg := <-m.relay.events:
			return msg
		default:
			return submitIgnoredMsg{}
		}
	}
}

// Update handles bubbletea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		taCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 2
		footerHeight := m.textarea.Height() + 2
		vpHeight := msg.Height - headerHeight - footerHeight
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(msg.Width - 2)

		if wrap := msg.Width - 4; wrap > 0 {
			_ = m.markdown.SetWordWrap(wrap)
		}
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.isLoading {
				// One outstanding request at a time; drop the submit.
				return m, nil
			}
			text := m.textarea.Value()
			if strings.TrimSpace(text) == "" {
				m.textarea.Reset()
				return m, nil
			}
			m.transcript = append(m.transcript, transcriptEntry{kind: entryUser, content: text})
			m.textarea.Reset()
			m.isLoading = true
			m.viewport.SetContent(m.renderTranscript())
			m.viewport.GotoBottom()
			return m, tea.Batch(m.sendCmd(text), m.spinner.Tick)
		}

	case assistantReplyMsg:
		m.isLoading = false
		m.lastScore = msg.score
		m.transcript = append(m.transcript, transcriptEntry{
			kind:    entryAssistant,
			content: msg.text,
			score:   msg.score,
		})
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		if msg.score > services.PulseThreshold {
			m.pulseCount++
			return m, pulseTimer()
		}
		return m, nil

	case collaboratorErrMsg:
		m.isLoading = false
		m.transcript = append(m.transcript, transcriptEntry{kind: entryError, content: msg.message})
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil

	case submitIgnoredMsg:
		m.isLoading = false
		return m, nil

	case clockTickMsg:
		m.now = time.Time(msg)
		return m, tickClock()

	case pulseExpiredMsg:
		if m.pulseCount > 0 {
			m.pulseCount--
		}
		return m, nil

	case spinner.TickMsg:
		if m.isLoading {
			var spCmd tea.Cmd
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}
		return m, nil
	}

	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(taCmd, vpCmd)
}

// View renders the chat interface.
func (m Model) View() string {
	if !m.ready {
		return "Initialisiere..."
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")
	b.WriteString(m.textarea.View())
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("Enter: senden · Esc: beenden"))
	return b.String()
}

func (m Model) headerView() string {
	title := m.styles.Title.Render("EmergenzChat")

	status := fmt.Sprintf("⏱ %s · Score: %d", formatElapsed(m.now.Sub(m.sessionStart)), m.lastScore)
	if m.isLoading {
		status += " · " + m.spinner.View() + "denkt nach..."
	}
	statusBar := m.styles.StatusBar.Render(status)

	parts := []string{title, "  ", statusBar}
	if m.pulseCount > 0 {
		parts = append(parts, "  ", m.styles.Pulse.Render("✨ EMERGENZ!"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

// renderTranscript renders the displayed transcript. Assistant replies go
// through the markdown renderer; everything else is shown verbatim.
func (m Model) renderTranscript() string {
	blocks := make([]string, 0, len(m.transcript))

	for _, entry := range m.transcript {
		switch entry.kind {
		case entryUser:
			blocks = append(blocks, m.styles.UserLabel.Render("Du:")+" "+entry.content)
		case entryAssistant:
			body := entry.content
			if rendered, err := m.markdown.Render(entry.content); err == nil {
				body = rendered
			}
			blocks = append(blocks, m.styles.AssistantLabel.Render("KI:")+"\n"+body)
		case entryError:
			blocks = append(blocks, m.styles.ErrorText.Render("Fehler: "+entry.content))
		}
	}

	return strings.Join(blocks, "\n\n")
}

func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
