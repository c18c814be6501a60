// Package tui provides the live terminal view of the relay topic for the consumer.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DefaultMaxRecords bounds how many records the view keeps.
const DefaultMaxRecords = 1000

// Column widths
const (
	offsetWidth    = 8
	partitionWidth = 4
	keyWidth       = 16
	timeWidth      = 12
	minPayload     = 20
)

// MainModel is the Bubble Tea model for the live consumer view.
// Records are listed oldest first in a table; the selected record is shown in full below it.
type MainModel struct {
	feed       *Feed
	records    []Record
	visible    []int // indices into records matching the search
	maxRecords int

	table   table.Model
	detail  viewport.Model
	header  Header
	waiting WaitingModel
	styles  *StyleConfig

	searchQuery string
	searchMode  bool
	follow      bool
	closed      bool

	width  int
	height int
	ready  bool
}

// NewMainModel creates the view for records arriving on feed.
func NewMainModel(feed *Feed, topic, group string) MainModel {
	styles := DefaultStyles()
	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithStyles(styles.TableStyles()),
	)

	return MainModel{
		feed:       feed,
		maxRecords: DefaultMaxRecords,
		table:      t,
		detail:     viewport.New(0, 0),
		header:     NewHeader(topic, group),
		waiting:    NewWaitingModel(topic, group),
		styles:     styles,
		follow:     true,
	}
}

// Init starts waiting for records.
func (m MainModel) Init() tea.Cmd {
	return tea.Batch(m.feed.Wait(), SpinnerTick())
}

// Update handles messages and updates the model state.
func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeComponents()
		return m, nil

	case RecordMsg:
		m.addRecord(Record(msg))
		m.waiting.Stop()
		return m, m.feed.Wait()

	case FeedClosedMsg:
		m.closed = true
		m.waiting.Stop()
		m.header.SetClosed(true)
		return m, nil

	case SpinnerTickMsg:
		var cmd tea.Cmd
		m.waiting, cmd = m.waiting.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searchMode {
			return m.updateSearch(msg), nil
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m MainModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/":
		m.searchMode = true
		m.header.SetSearch(m.searchQuery, true)
		return m, nil
	case "F":
		m.follow = !m.follow
		m.header.SetFollow(m.follow)
		if m.follow {
			m.table.GotoBottom()
			m.updateDetail()
		}
		return m, nil
	case "J":
		m.detail.ScrollDown(1)
		return m, nil
	case "K":
		m.detail.ScrollUp(1)
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	// Moving off the newest row pauses following; returning to it resumes.
	m.follow = m.table.Cursor() >= len(m.visible)-1
	m.header.SetFollow(m.follow)
	m.updateDetail()
	return m, cmd
}

func (m MainModel) updateSearch(msg tea.KeyMsg) MainModel {
	switch msg.Type {
	case tea.KeyEsc:
		m.searchMode = false
		m.searchQuery = ""
	case tea.KeyEnter:
		m.searchMode = false
	case tea.KeyBackspace:
		if r := []rune(m.searchQuery); len(r) > 0 {
			m.searchQuery = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.searchQuery += string(msg.Runes)
	case tea.KeyCtrlC:
		m.searchMode = false
	}
	m.header.SetSearch(m.searchQuery, m.searchMode)
	m.applyFilter()
	return m
}

func (m *MainModel) addRecord(rec Record) {
	m.records = append(m.records, rec)
	if m.maxRecords > 0 && len(m.records) > m.maxRecords {
		m.records = m.records[len(m.records)-m.maxRecords:]
	}
	m.applyFilter()
}

// applyFilter rebuilds the table rows from records matching the search query.
func (m *MainModel) applyFilter() {
	query := strings.ToLower(m.searchQuery)

	m.visible = make([]int, 0, len(m.records))
	rows := make([]table.Row, 0, len(m.records))
	payloadWidth := m.payloadWidth()
	for i, rec := range m.records {
		if query != "" && !matches(rec, query) {
			continue
		}
		m.visible = append(m.visible, i)
		rows = append(rows, table.Row{
			strconv.FormatInt(rec.Offset, 10),
			strconv.Itoa(int(rec.Partition)),
			Truncate(OneLine(rec.Key), keyWidth, true),
			Truncate(OneLine(rec.Value), payloadWidth, true),
			rec.Timestamp.Format("15:04:05.000"),
		})
	}

	cursor := m.table.Cursor()
	m.table.SetRows(rows)
	if m.follow {
		m.table.GotoBottom()
	} else {
		m.table.SetCursor(cursor)
	}
	m.header.SetCounts(len(m.records), len(m.visible))
	m.updateDetail()
}

func matches(rec Record, query string) bool {
	return strings.Contains(strings.ToLower(rec.Key), query) ||
		strings.Contains(strings.ToLower(rec.Value), query)
}

// Selected returns the record under the cursor.
func (m MainModel) Selected() (Record, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.visible) {
		return Record{}, false
	}
	return m.records[m.visible[c]], true
}

func (m *MainModel) updateDetail() {
	rec, ok := m.Selected()
	if !ok {
		m.detail.SetContent("")
		return
	}
	m.detail.SetContent(m.renderDetail(rec, m.detail.Width))
	m.detail.GotoTop()
}

func (m MainModel) renderDetail(rec Record, width int) string {
	if width <= 0 {
		width = 80
	}
	var b strings.Builder

	header := lipgloss.NewStyle().
		Foreground(m.styles.PartitionColor(rec.Partition)).
		Bold(true).
		Render(fmt.Sprintf("%s │ partition %d │ offset %d │ %s",
			rec.Topic, rec.Partition, rec.Offset, rec.Timestamp.Format("2006-01-02 15:04:05.000")))
	fmt.Fprintf(&b, "%s\n\n", header)

	label := lipgloss.NewStyle().Foreground(m.styles.TextSecondary).Bold(true)
	fmt.Fprintln(&b, label.Render("Key:"))
	fmt.Fprintln(&b, Wrap(rec.Key, width))
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, label.Render("Payload:"))
	fmt.Fprint(&b, Wrap(rec.Value, width))

	return b.String()
}

func columns(width int) []table.Column {
	return []table.Column{
		{Title: "Offset", Width: offsetWidth},
		{Title: "P", Width: partitionWidth},
		{Title: "Key", Width: keyWidth},
		{Title: "Payload", Width: payloadWidthFor(width)},
		{Title: "Time", Width: timeWidth},
	}
}

// payloadWidthFor gives the payload column what the fixed columns leave,
// counting one cell of padding on each side of every column and the panel border.
func payloadWidthFor(width int) int {
	w := width - (offsetWidth + partitionWidth + keyWidth + timeWidth) - 5*2 - 2
	if w < minPayload {
		return minPayload
	}
	return w
}

func (m MainModel) payloadWidth() int {
	if m.width == 0 {
		return payloadWidthFor(80)
	}
	return payloadWidthFor(m.width)
}

// resizeComponents handles window resize events
func (m *MainModel) resizeComponents() {
	headerHeight := lipgloss.Height(m.header.Render(m.width))
	// header + help line + two bordered panels
	available := m.height - headerHeight - 1 - 4
	if available < 4 {
		available = 4
	}
	tableHeight := available / 2
	detailHeight := available - tableHeight

	m.table.SetColumns(columns(m.width))
	m.table.SetWidth(m.width - 2)
	m.table.SetHeight(tableHeight)

	m.detail.Width = m.width - 2
	m.detail.Height = detailHeight

	m.applyFilter()
}

// View renders the complete TUI layout
func (m MainModel) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	header := m.header.Render(m.width)

	if len(m.records) == 0 {
		waiting := lipgloss.NewStyle().
			Width(m.width).
			Align(lipgloss.Center).
			PaddingTop(2).
			Render(m.waiting.View())
		return lipgloss.JoinVertical(lipgloss.Left, header, waiting)
	}

	panel := m.styles.PanelStyle()
	tablePanel := panel.Render(m.table.View())
	detailPanel := panel.Width(m.width - 2).Render(m.detail.View())

	return lipgloss.JoinVertical(lipgloss.Left, header, tablePanel, detailPanel, m.renderHelpText())
}

// renderHelpText renders context-aware help text at the bottom
func (m MainModel) renderHelpText() string {
	keyStyle := lipgloss.NewStyle().Foreground(m.styles.PrimaryBlue).Bold(true)
	sepStyle := lipgloss.NewStyle().Foreground(m.styles.TextSecondary)

	var helpText string
	if m.searchMode {
		helpText = fmt.Sprintf("%s: Apply %s %s: Clear",
			keyStyle.Render("Enter"), sepStyle.Render("•"),
			keyStyle.Render("Esc"))
	} else {
		helpText = fmt.Sprintf("%s: Nav %s %s: Scroll payload %s %s: Follow %s %s: Search %s %s: Quit",
			keyStyle.Render("j/k"), sepStyle.Render("•"),
			keyStyle.Render("J/K"), sepStyle.Render("•"),
			keyStyle.Render("F"), sepStyle.Render("•"),
			keyStyle.Render("/"), sepStyle.Render("•"),
			keyStyle.Render("q"))
	}

	return m.styles.HelpStyle().Render(helpText)
}
