package memocli

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// BranchState is the live status of one parallel branch.
type BranchState int

const (
	BranchPending BranchState = iota
	BranchRunning
	BranchHit
	BranchMiss
	BranchFailed
)

var (
	styleOK   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleFail = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	styleDim  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func (s BranchState) label() string {
	switch s {
	case BranchRunning:
		return "running"
	case BranchHit:
		return styleOK.Render("cache hit")
	case BranchMiss:
		return styleOK.Render("ran")
	case BranchFailed:
		return styleFail.Render("failed")
	default:
		return styleDim.Render("pending")
	}
}

// statusBoard is the source of truth for every branch's state, shared
// between the goroutines running branches and the optional bubbletea view
// rendering them.
type statusBoard struct {
	mu     sync.Mutex
	states []BranchState
}

func newStatusBoard(n int) *statusBoard {
	return &statusBoard{states: make([]BranchState, n)}
}

func (b *statusBoard) set(i int, s BranchState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.states[i] = s
}

func (b *statusBoard) snapshot() []BranchState {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]BranchState, len(b.states))
	copy(out, b.states)
	return out
}

// RenderSummary formats a final, non-interactive summary line per branch.
func RenderSummary(states []BranchState) string {
	var sb strings.Builder
	for i, s := range states {
		fmt.Fprintf(&sb, "branch %d: %s\n", i, s.label())
	}
	return sb.String()
}

// tickMsg drives periodic re-render of the live view.
type tickMsg struct{}

// statusModel is a bubbletea.Model that renders a spinner-per-branch live
// view of a memo -p fan-out. It is driven by the same statusBoard the
// branch goroutines update, so the view always reflects current state.
type statusModel struct {
	board    *statusBoard
	spinners []spinner.Model
	done     bool
}

func newStatusModel(board *statusBoard) statusModel {
	spinners := make([]spinner.Model, len(board.states))
	for i := range spinners {
		sp := spinner.New()
		sp.Spinner = spinner.Dot
		spinners[i] = sp
	}
	return statusModel{board: board, spinners: spinners}
}

func (m statusModel) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.spinners))
	for _, sp := range m.spinners {
		cmds = append(cmds, sp.Tick)
	}
	return tea.Batch(cmds...)
}

func (m statusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		for i := range m.spinners {
			m.spinners[i], cmd = m.spinners[i].Update(msg)
		}
		if m.allDone() {
			m.done = true
			return m, tea.Quit
		}
		return m, cmd
	}
	return m, nil
}

func (m statusModel) allDone() bool {
	for _, s := range m.board.snapshot() {
		if s == BranchPending || s == BranchRunning {
			return false
		}
	}
	return true
}

func (m statusModel) View() string {
	states := m.board.snapshot()
	var sb strings.Builder
	for i, s := range states {
		spin := ""
		if s == BranchPending || s == BranchRunning {
			spin = m.spinners[i].View() + " "
		}
		fmt.Fprintf(&sb, "%sbranch %d: %s\n", spin, i, s.label())
	}
	return sb.String()
}
