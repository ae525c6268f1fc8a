package diagram

import (
	"fmt"
	"math"
	"strings"

	"github.com/alexiusacademia/gowing/internal/transfer"
	"github.com/guptarohit/asciigraph"
)

// DrawLoadDiagram creates an ASCII bar diagram of the vertical node forces,
// root at the top.
func DrawLoadDiagram(loads []transfer.NodeLoad) string {
	var sb strings.Builder

	width := 30

	sb.WriteString("\n")
	sb.WriteString("  NODE LOADS (Fz)\n")
	sb.WriteString("  ───────────────\n\n")

	var maxF float64
	for _, l := range loads {
		maxF = math.Max(maxF, math.Abs(l.Force.Z))
	}

	for k, l := range loads {
		barLen := 0
		if maxF > 0 {
			barLen = int(math.Round(math.Abs(l.Force.Z) / maxF * float64(width)))
		}
		bar := strings.Repeat("█", barLen)
		if l.Force.Z < 0 {
			bar = strings.Repeat("░", barLen)
		}
		sb.WriteString(fmt.Sprintf("  Node %-3d │%-*s %12.3f N\n", k, width, bar, l.Force.Z))
	}

	sb.WriteString("\n")
	sb.WriteString("  Legend:\n")
	sb.WriteString("  ███ = upward force\n")
	sb.WriteString("  ░░░ = downward force\n")

	return sb.String()
}

// DrawSpanwiseChart plots one value per spanwise station, root to tip
func DrawSpanwiseChart(caption string, values []float64) string {
	if len(values) == 0 {
		return ""
	}
	// asciigraph needs at least two points to draw a line
	if len(values) == 1 {
		values = []float64{values[0], values[0]}
	}
	graph := asciigraph.Plot(values,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption(caption),
	)
	return "\n" + graph + "\n"
}

// DrawSummaryBox creates a summary box for results
func DrawSummaryBox(title string, lines []string) string {
	var sb strings.Builder

	maxLen := len([]rune(title))
	for _, line := range lines {
		maxLen = max(maxLen, len([]rune(line)))
	}
	maxLen += 4

	border := strings.Repeat("═", maxLen)
	sb.WriteString(fmt.Sprintf("  ╔%s╗\n", border))
	sb.WriteString(fmt.Sprintf("  ║  %-*s  ║\n", maxLen-4, title))
	sb.WriteString(fmt.Sprintf("  ╠%s╣\n", border))
	for _, line := range lines {
		sb.WriteString(fmt.Sprintf("  ║  %-*s  ║\n", maxLen-4, line))
	}
	sb.WriteString(fmt.Sprintf("  ╚%s╝\n", border))

	return sb.String()
}
