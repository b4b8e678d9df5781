// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/seriallog/seriallog/pkg/charset"
	"github.com/seriallog/seriallog/pkg/protocols"
	"github.com/seriallog/seriallog/pkg/serialio"
)

const (
	// How much received data the raw pane keeps.
	rawPaneCap = 32 * 1024

	maxReports = 200

	pollInterval = 50 * time.Millisecond
)

// pollMsg drives the drain of the session queues.
type pollMsg time.Time

func pollCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

// controlReplacer makes CR, LF and TAB visible without losing line breaks.
var controlReplacer = strings.NewReplacer("\r", "[CR]", "\t", "[TAB]", "\n", "[LF]\n")

type terminalModel struct {
	session  *serialio.Session
	writer   *serialio.LogWriter
	sender   *serialio.Sender
	proto    protocols.Protocol
	connInfo string
	logger   *zap.Logger

	decoder  *charset.Decoder
	rawBytes []byte
	rawText  string
	reports  []string

	raw     viewport.Model
	decoded viewport.Model
	input   textinput.Model
	history serialio.History

	encoding    string
	lineEnding  string
	hexView     bool
	showControl bool

	periodic         *serialio.Periodic
	periodicText     string
	periodicInterval time.Duration

	status       string
	streamEnded  bool
	reportsEnded bool
	width        int
	height       int
	ready        bool
	quitting     bool
}

func newTerminalModel(session *serialio.Session, writer *serialio.LogWriter,
	proto protocols.Protocol, connInfo, encoding, lineEnding string,
	hexView bool, repeat time.Duration, logger *zap.Logger) (terminalModel, error) {

	decoder, err := charset.NewDecoder(encoding)
	if err != nil {
		return terminalModel{}, err
	}

	ti := textinput.New()
	ti.Placeholder = "type a command"
	ti.Prompt = "> "
	ti.Focus()

	return terminalModel{
		session:          session,
		writer:           writer,
		sender:           serialio.NewSender(session, encoding),
		proto:            proto,
		connInfo:         connInfo,
		logger:           logger,
		decoder:          decoder,
		input:            ti,
		encoding:         encoding,
		lineEnding:       lineEnding,
		hexView:          hexView,
		periodicInterval: repeat,
		width:            80,
		height:           24,
	}, nil
}

func (m terminalModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, pollCmd())
}

func (m terminalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true

	case pollMsg:
		m.drainStreams()
		m.refreshPanes()
		if !m.streamEnded || !m.reportsEnded {
			return m, pollCmd()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m terminalModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		m.stopPeriodic()
		return m, tea.Quit

	case "enter":
		text := m.input.Value()
		if text == "" {
			return m, nil
		}
		if err := m.sender.Send(text, m.lineEnding); err != nil {
			m.status = err.Error()
		} else {
			m.status = fmt.Sprintf("sent %q", text)
			m.history.Add(text)
			m.input.SetValue("")
		}
		return m, nil

	case "ctrl+t":
		text := m.input.Value()
		if err := m.sender.SendHex(text); err != nil {
			m.status = err.Error()
		} else {
			m.status = fmt.Sprintf("sent hex %q", text)
			m.history.Add(text)
			m.input.SetValue("")
		}
		return m, nil

	case "up":
		if prev, ok := m.history.Up(); ok {
			m.input.SetValue(prev)
			m.input.CursorEnd()
		}
		return m, nil

	case "down":
		if next, ok := m.history.Down(); ok {
			m.input.SetValue(next)
			m.input.CursorEnd()
		}
		return m, nil

	case "ctrl+x":
		m.hexView = !m.hexView
		m.refreshPanes()
		return m, nil

	case "ctrl+r":
		m.showControl = !m.showControl
		m.refreshPanes()
		return m, nil

	case "ctrl+e":
		endings := serialio.LineEndings()
		for i, e := range endings {
			if e == m.lineEnding {
				m.lineEnding = endings[(i+1)%len(endings)]
				break
			}
		}
		m.status = fmt.Sprintf("line ending: %s", m.lineEnding)
		return m, nil

	case "ctrl+p":
		m.togglePeriodic()
		return m, nil

	case "ctrl+l":
		m.rawBytes = nil
		m.rawText = ""
		m.reports = nil
		m.refreshPanes()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *terminalModel) togglePeriodic() {
	if m.periodic != nil {
		m.stopPeriodic()
		m.status = "periodic send stopped"
		return
	}
	text := m.input.Value()
	p, err := m.sender.StartPeriodic(text, m.lineEnding, m.periodicInterval, m.logger)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.periodic = p
	m.periodicText = text
	m.status = fmt.Sprintf("sending %q every %v", text, m.periodicInterval)
}

func (m *terminalModel) stopPeriodic() {
	if m.periodic != nil {
		m.periodic.Stop()
		m.periodic = nil
		m.periodicText = ""
	}
}

// drainStreams moves whatever the session queued since the last tick into
// the panes. Bounded per tick so a firehose cannot starve the UI.
func (m *terminalModel) drainStreams() {
display:
	for i := 0; i < 512 && !m.streamEnded; i++ {
		select {
		case chunk, ok := <-m.session.Display():
			if !ok {
				m.streamEnded = true
				m.appendText(m.decoder.Flush())
				break display
			}
			m.appendChunk(chunk)
		default:
			break display
		}
	}

reports:
	for i := 0; i < 64 && !m.reportsEnded; i++ {
		select {
		case report, ok := <-m.writer.Reports():
			if !ok {
				m.reportsEnded = true
				break reports
			}
			m.reports = append(m.reports, report)
			if len(m.reports) > maxReports {
				m.reports = m.reports[len(m.reports)-maxReports:]
			}
		default:
			break reports
		}
	}
}

func (m *terminalModel) appendChunk(chunk []byte) {
	m.rawBytes = append(m.rawBytes, chunk...)
	if len(m.rawBytes) > rawPaneCap {
		m.rawBytes = m.rawBytes[len(m.rawBytes)-rawPaneCap:]
	}
	m.appendText(m.decoder.Decode(chunk))
}

func (m *terminalModel) appendText(text string) {
	if text == "" {
		return
	}
	m.rawText += text
	if len(m.rawText) > rawPaneCap {
		m.rawText = m.rawText[len(m.rawText)-rawPaneCap:]
	}
}

func (m *terminalModel) layout() {
	paneHeight := m.height - 7
	if paneHeight < 3 {
		paneHeight = 3
	}
	if m.proto == protocols.None {
		m.raw = viewport.New(m.width-2, paneHeight)
	} else {
		half := (m.width - 4) / 2
		m.raw = viewport.New(half, paneHeight)
		m.decoded = viewport.New(half, paneHeight)
	}
	m.input.Width = m.width - 6
	m.refreshPanes()
}

func (m *terminalModel) refreshPanes() {
	m.raw.SetContent(m.renderRaw())
	m.raw.GotoBottom()
	if m.proto != protocols.None {
		m.decoded.SetContent(strings.Join(m.reports, "\n"))
		m.decoded.GotoBottom()
	}
}

// hexRendered reports whether the raw pane shows hex. Frame-delimited
// traffic is binary, so it is always rendered as hex.
func (m *terminalModel) hexRendered() bool {
	return m.hexView || m.proto.FrameDelimited()
}

func (m *terminalModel) renderRaw() string {
	if m.hexRendered() {
		var b strings.Builder
		for i := 0; i < len(m.rawBytes); i += 16 {
			end := i + 16
			if end > len(m.rawBytes) {
				end = len(m.rawBytes)
			}
			fmt.Fprintf(&b, "% X\n", m.rawBytes[i:end])
		}
		return b.String()
	}
	if m.showControl {
		return controlReplacer.Replace(m.rawText)
	}
	return m.rawText
}

var (
	terminalTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("12")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	terminalHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))

	terminalPaneStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	terminalStatusStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11"))

	terminalErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("9")).
				Bold(true)
)

func (m terminalModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}
	if !m.ready {
		return "Starting..."
	}

	var s strings.Builder
	s.WriteString(terminalTitleStyle.Render("SERIALLOG - TERMINAL"))
	s.WriteString("\n")

	mode := "text"
	if m.hexRendered() {
		mode = "hex"
	}
	header := fmt.Sprintf("%s | %s | ending: %s | view: %s | protocol: %s",
		m.connInfo, m.encoding, m.lineEnding, mode, m.proto)
	if m.periodic != nil {
		header += fmt.Sprintf(" | periodic: %q", m.periodicText)
	}
	if m.streamEnded {
		header += " | DISCONNECTED"
	}
	s.WriteString(terminalHeaderStyle.Render(header))
	s.WriteString("\n")

	if m.proto == protocols.None {
		s.WriteString(terminalPaneStyle.Render(m.raw.View()))
	} else {
		s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			terminalPaneStyle.Render(m.raw.View()),
			terminalPaneStyle.Render(m.decoded.View()),
		))
	}
	s.WriteString("\n")
	s.WriteString(m.input.View())
	s.WriteString("\n")

	if m.status != "" {
		style := terminalStatusStyle
		if strings.Contains(m.status, "fail") || strings.Contains(m.status, "invalid") {
			style = terminalErrorStyle
		}
		s.WriteString(style.Render(m.status))
		s.WriteString("\n")
	}
	s.WriteString(terminalHeaderStyle.Render("enter send · ctrl+t hex send · ctrl+e ending · ctrl+x hex view · ctrl+r ctrl chars · ctrl+p periodic · ctrl+l clear · ctrl+c quit"))

	return s.String()
}
