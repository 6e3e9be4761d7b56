// Package report summarizes a clustering result for the terminal.
package report

import (
	"fmt"
	"strings"
	"time"

	"shapecluster/cluster"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/stat"
)

// Summary holds aggregate figures about one clustering result
type Summary struct {
	Images       int
	Clusters     int
	Singletons   int
	Largest      int
	MeanSize     float64
	StdDevSize   float64
	MeanDiameter float64
	StdDevDiam   float64
	MaxDiameter  float64
	Merges       int
	Attempts     int
	Halt         string
	Duration     time.Duration
}

// Summarize computes a Summary from a finished result. A nil result gives a zero Summary.
func Summarize(result *cluster.Result) Summary {
	if result == nil {
		return Summary{Halt: cluster.HaltNone.String()}
	}
	s := Summary{
		Clusters: len(result.Clusters),
		Merges:   result.Merges,
		Attempts: result.Attempts,
		Halt:     result.Halt.String(),
	}
	if len(result.Clusters) == 0 {
		return s
	}

	sizes := make([]float64, len(result.Clusters))
	diameters := make([]float64, len(result.Clusters))
	for i, c := range result.Clusters {
		sizes[i] = float64(c.Size())
		diameters[i] = c.Diameter()

		s.Images += c.Size()
		if c.Size() == 1 {
			s.Singletons++
		}
		if c.Size() > s.Largest {
			s.Largest = c.Size()
		}
		if c.Diameter() > s.MaxDiameter {
			s.MaxDiameter = c.Diameter()
		}
	}

	s.MeanSize, s.StdDevSize = meanStdDev(sizes)
	s.MeanDiameter, s.StdDevDiam = meanStdDev(diameters)
	return s
}

// meanStdDev returns a zero deviation for a single value instead of NaN
func meanStdDev(x []float64) (float64, float64) {
	if len(x) < 2 {
		return stat.Mean(x, nil), 0
	}
	return stat.MeanStdDev(x, nil)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Render formats a summary as a bordered block
func Render(s Summary) string {
	rows := [][2]string{
		{"Images", fmt.Sprintf("%d", s.Images)},
		{"Clusters", fmt.Sprintf("%d (%d singletons)", s.Clusters, s.Singletons)},
		{"Largest", fmt.Sprintf("%d", s.Largest)},
		{"Size", fmt.Sprintf("%.2f ± %.2f", s.MeanSize, s.StdDevSize)},
		{"Diameter", fmt.Sprintf("%.4f ± %.4f (max %.4f)", s.MeanDiameter, s.StdDevDiam, s.MaxDiameter)},
		{"Merges", fmt.Sprintf("%d of %d attempts", s.Merges, s.Attempts)},
		{"Halted", s.Halt},
	}
	if s.Duration > 0 {
		rows = append(rows, [2]string{"Duration", s.Duration.Round(time.Millisecond).String()})
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Clustering summary"))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(r[0]) + valueStyle.Render(r[1]))
	}
	return boxStyle.Render(b.String())
}
