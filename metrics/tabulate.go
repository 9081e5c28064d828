package metrics

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1).Align(lipgloss.Center)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
)

// Tabulate renders metric values as percentages in a one-row table titled
// by split. Columns follow names; when names is empty they are sorted.
func Tabulate(values map[string]float64, split string, names ...string) string {
	if len(names) == 0 {
		for name := range values {
			names = append(names, name)
		}
		slices.Sort(names)
	}

	row := make([]string, len(names))
	for i, name := range names {
		v, ok := values[name]
		if !ok {
			row[i] = "-"
			continue
		}
		row[i] = fmt.Sprintf("%.4f", v*100)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(names...).
		Row(row...).
		StyleFunc(func(r, _ int) lipgloss.Style {
			if r == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("====== %s metrics ======", split)))
	b.WriteByte('\n')
	b.WriteString(t.Render())
	return b.String()
}
