// Terminal client for the gamecartas server. Connects over WebSocket,
// renders the per-seat state frames and turns typed commands into action
// frames.
package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gorilla/websocket"

	"github.com/samifarahneto/gamecartas/internal/deck"
	"github.com/samifarahneto/gamecartas/internal/server"
)

var CLI struct {
	Server string `short:"s" long:"server" default:"ws://localhost:8080/ws" help:"Server WebSocket URL"`
	Nick   string `short:"n" long:"nick" help:"Nickname to play as"`
	Game   string `short:"g" long:"game" default:"holdem" help:"Game identifier"`
	Table  string `short:"t" long:"table" default:"new" help:"Table identifier"`
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	boardStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	turnStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	chatStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type serverFrameMsg []byte

type connClosedMsg struct{ err error }

type model struct {
	nick  string
	conn  *websocket.Conn
	input textinput.Model

	state  *server.StateFrame
	status []string
	closed bool
}

func newModel(nick string, conn *websocket.Conn) model {
	ti := textinput.New()
	ti.Placeholder = "start | check | call | raise <amount> | allin | fold | new | say <msg>"
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 70
	return model{nick: nick, conn: conn, input: ti}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case serverFrameMsg:
		m.handleFrame(msg)
		return m, nil

	case connClosedMsg:
		m.closed = true
		if msg.err != nil {
			m.pushStatus(errorStyle.Render("connection closed: " + msg.err.Error()))
		} else {
			m.pushStatus(subtleStyle.Render("connection closed"))
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			m.submit(strings.TrimSpace(m.input.Value()))
			m.input.Reset()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) handleFrame(data []byte) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return
	}
	switch probe.Type {
	case server.FrameTypeState:
		var frame server.StateFrame
		if err := json.Unmarshal(data, &frame); err == nil {
			m.state = &frame
		}
	case server.FrameTypeError:
		var frame server.ErrorFrame
		if err := json.Unmarshal(data, &frame); err == nil {
			m.pushStatus(errorStyle.Render("error: " + frame.Text))
		}
	case server.FrameTypeChat:
		var frame server.ChatFrame
		if err := json.Unmarshal(data, &frame); err == nil {
			m.pushStatus(chatStyle.Render(frame.From + ": " + frame.Text))
		}
	}
}

func (m *model) pushStatus(line string) {
	m.status = append(m.status, line)
	if len(m.status) > 8 {
		m.status = m.status[1:]
	}
}

func (m *model) submit(line string) {
	if line == "" || m.closed {
		return
	}
	fields := strings.Fields(line)

	var frame server.ClientFrame
	switch fields[0] {
	case "start":
		frame = server.ClientFrame{Type: server.FrameTypeStart}
	case "new":
		frame = server.ClientFrame{Type: server.FrameTypeAction, Action: "new_hand"}
	case "check", "call", "fold":
		frame = server.ClientFrame{Type: server.FrameTypeAction, Action: fields[0]}
	case "allin":
		frame = server.ClientFrame{Type: server.FrameTypeAction, Action: "all_in"}
	case "raise":
		amount := 0
		if len(fields) > 1 {
			amount, _ = strconv.Atoi(fields[1])
		}
		frame = server.ClientFrame{Type: server.FrameTypeAction, Action: "raise", Amount: amount}
	case "say":
		frame = server.ClientFrame{Type: server.FrameTypeChat, Text: strings.TrimSpace(strings.TrimPrefix(line, "say"))}
	default:
		// Anything unrecognized goes out as chat.
		frame = server.ClientFrame{Type: server.FrameTypeChat, Text: line}
	}

	b, err := json.Marshal(frame)
	if err != nil {
		return
	}
	if err := m.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		m.pushStatus(errorStyle.Render("send failed: " + err.Error()))
	}
}

func renderCards(cards []deck.Card) string {
	if len(cards) == 0 {
		return subtleStyle.Render("--")
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("gamecartas") + " " + subtleStyle.Render("("+m.nick+")") + "\n\n")

	if st := m.state; st != nil {
		b.WriteString(fmt.Sprintf("players: %s\n", strings.Join(st.Players, ", ")))
		for nick, stack := range st.Stacks {
			marker := "  "
			if nick == st.Dealer {
				marker = "D "
			}
			b.WriteString(fmt.Sprintf("  %s%-12s %d\n", marker, nick, stack))
		}
		b.WriteString("\n")

		if st.Started {
			b.WriteString(fmt.Sprintf("street: %s   pot: %d\n", st.Street, st.Pot))
			b.WriteString("board:  " + boardStyle.Render(renderCards(st.Community)) + "\n")
			b.WriteString("hole:   " + boardStyle.Render(renderCards(st.Hole)) + "\n")
			if st.ToAct != nil {
				if *st.ToAct == m.nick {
					line := "your turn"
					if st.CallAmount != nil {
						line += fmt.Sprintf(", call %d", *st.CallAmount)
					}
					if st.MinRaise != nil {
						line += fmt.Sprintf(", min raise %d", *st.MinRaise)
					}
					b.WriteString(turnStyle.Render(line) + "\n")
				} else {
					b.WriteString(subtleStyle.Render("waiting for "+*st.ToAct) + "\n")
				}
			}
			if len(st.Winners) > 0 {
				b.WriteString(turnStyle.Render("winners: "+strings.Join(st.Winners, ", ")) + "\n")
				for nick, hole := range st.AllHoles {
					b.WriteString(fmt.Sprintf("  %s shows %s\n", nick, renderCards(hole)))
				}
			}
			for _, a := range st.RecentActions {
				line := a.Player + " " + a.Action
				if a.Amount != nil {
					line += fmt.Sprintf(" %d", *a.Amount)
				}
				b.WriteString(subtleStyle.Render("  "+line) + "\n")
			}
		} else {
			b.WriteString(subtleStyle.Render("waiting to start, type 'start'") + "\n")
		}
	} else {
		b.WriteString(subtleStyle.Render("connecting...") + "\n")
	}

	if len(m.status) > 0 {
		b.WriteString("\n")
		for _, line := range m.status {
			b.WriteString(line + "\n")
		}
	}

	b.WriteString("\n" + m.input.View() + "\n")
	b.WriteString(subtleStyle.Render("esc to quit") + "\n")
	return b.String()
}

func main() {
	kctx := kong.Parse(&CLI)

	nick := CLI.Nick
	if nick == "" {
		fmt.Print("Enter your nickname: ")
		var input string
		_, _ = fmt.Scanln(&input)
		nick = strings.TrimSpace(input)
		if nick == "" {
			fmt.Println("Nickname is required")
			kctx.Exit(1)
		}
	}

	u, err := url.Parse(CLI.Server)
	if err != nil {
		fmt.Printf("Invalid server URL: %v\n", err)
		kctx.Exit(1)
	}
	q := u.Query()
	q.Set("nick", nick)
	q.Set("game", CLI.Game)
	q.Set("table", CLI.Table)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		fmt.Printf("Failed to connect to server: %v\n", err)
		kctx.Exit(1)
	}
	defer func() { _ = conn.Close() }()

	p := tea.NewProgram(newModel(nick, conn), tea.WithAltScreen())

	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				p.Send(connClosedMsg{err: err})
				return
			}
			p.Send(serverFrameMsg(data))
		}
	}()

	if _, err := p.Run(); err != nil {
		fmt.Printf("TUI error: %v\n", err)
		os.Exit(1)
	}
}
