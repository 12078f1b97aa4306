package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/mgarnier/fluxfit/internal/storage"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// viewer is the bubbletea model browsing one fit run, one measurement
// column at a time, experimental points against the fitted curve.
type viewer struct {
	meta   *storage.RunMetadata
	series *storage.Series
	col    int
	width  int
	height int
}

// NewViewer builds the interactive result browser for a saved run.
func NewViewer(meta *storage.RunMetadata, series *storage.Series) tea.Model {
	return viewer{meta: meta, series: series, width: 80, height: 24}
}

func (v viewer) Init() tea.Cmd { return nil }

func (v viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return v, tea.Quit
		case "right", "l", "tab":
			v.col = (v.col + 1) % len(v.series.Names)
		case "left", "h":
			v.col = (v.col - 1 + len(v.series.Names)) % len(v.series.Names)
		}
	}
	return v, nil
}

func (v viewer) View() string {
	name := v.series.Names[v.col]
	rows := len(v.series.Time)

	expSeries := make([]float64, rows)
	simSeries := make([]float64, rows)
	for i := 0; i < rows; i++ {
		expSeries[i] = v.series.Experimental.At(i, v.col)
		simSeries[i] = v.series.Simulated.At(i, v.col)
	}

	graphWidth := v.width - 12
	if graphWidth < 30 {
		graphWidth = 30
	}
	graphHeight := v.height - 10
	if graphHeight < 5 {
		graphHeight = 5
	}
	graph := asciigraph.PlotMany(
		[][]float64{expSeries, simSeries},
		asciigraph.Height(graphHeight),
		asciigraph.Width(graphWidth),
		asciigraph.Caption(fmt.Sprintf("%s: experimental vs fitted", name)),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green),
	)

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("run %s (%s)", v.meta.ID, v.meta.Model)))
	b.WriteByte('\n')
	b.WriteString(labelStyle.Render("cost "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.6g", v.meta.Cost)))
	if v.meta.Khi2 != nil {
		b.WriteString(labelStyle.Render("  p-value "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%.4f", v.meta.Khi2.PValue)))
	}
	b.WriteString(labelStyle.Render(fmt.Sprintf("  column %d/%d", v.col+1, len(v.series.Names))))
	b.WriteByte('\n')
	b.WriteString(graphStyle.Render(graph))
	b.WriteByte('\n')
	b.WriteString(helpStyle.Render("left/right: switch column  q: quit"))
	b.WriteByte('\n')
	return b.String()
}

// Run starts the interactive viewer.
func Run(meta *storage.RunMetadata, series *storage.Series) error {
	p := tea.NewProgram(NewViewer(meta, series), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
