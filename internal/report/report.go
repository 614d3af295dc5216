package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/studiowebux/liftload/internal/history"
	"github.com/studiowebux/liftload/internal/phase"
	"github.com/studiowebux/liftload/internal/stats"
	"github.com/studiowebux/liftload/internal/types"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorCyan).
			Padding(0, 1)
)

// Summary is everything the run report shows
type Summary struct {
	RunID      string
	Snapshot   stats.Snapshot
	Elapsed    time.Duration
	Throughput float64
	Latencies  []stats.Summary
	Phases     []phase.PhaseResult
	Batches    []types.BatchOutcome
	CSVPath    string
}

// Render renders the execution summary and the enhanced statistics
func Render(s Summary) string {
	var content strings.Builder

	content.WriteString(styleTitle.Render("[Execution Summary]") + "\n")
	if s.RunID != "" {
		content.WriteString(styleSubtle.Render("Run: "+s.RunID) + "\n")
	}
	content.WriteString(fmt.Sprintf("Successful requests: %s\n", styleSuccess.Render(fmt.Sprint(s.Snapshot.Successful))))
	failed := fmt.Sprint(s.Snapshot.Failed)
	if s.Snapshot.Failed > 0 {
		failed = styleError.Render(failed)
	}
	content.WriteString(fmt.Sprintf("Failed requests:     %s\n", failed))
	content.WriteString(fmt.Sprintf("Wall time:           %s\n", FormatDuration(s.Elapsed)))
	content.WriteString(fmt.Sprintf("Throughput:          %.2f requests/sec\n", s.Throughput))

	if len(s.Phases) > 0 {
		content.WriteString("\n" + styleTitle.Render("[Phases]") + "\n")
		for _, p := range s.Phases {
			line := fmt.Sprintf("Phase %d: %3d workers, %7d requests, %s",
				p.Plan.Number, p.Plan.Workers, p.Plan.Requests(), FormatDuration(p.EndTime.Sub(p.StartTime)))
			if slowest, failed := batchStats(s.Batches, p.Plan.Number); slowest > 0 {
				line += fmt.Sprintf(", slowest batch %s", FormatDuration(slowest))
				if failed > 0 {
					line += " " + styleError.Render(fmt.Sprintf("(%d batches with failures)", failed))
				}
			}
			if p.GateTimedOut {
				line += " " + styleWarning.Render("(gate wait timed out)")
			}
			content.WriteString(line + "\n")
		}
	}

	content.WriteString("\n" + styleTitle.Render("[Enhanced Statistics]") + "\n")
	content.WriteString(styleSubtle.Render(fmt.Sprintf("%-24s %8s %10s %10s %10s %10s", "Type", "Count", "Mean", "Median", "P99", "Max")) + "\n")
	for _, l := range s.Latencies {
		content.WriteString(fmt.Sprintf("%-24s %8d %10s %10s %10s %10s\n",
			l.RequestType, l.Count, FormatMs(l.Mean), FormatMs(l.Median), FormatMs(l.P99), FormatMs(l.Max)))
	}

	if s.CSVPath != "" {
		content.WriteString("\n" + styleSubtle.Render("Samples written to "+s.CSVPath))
	}

	return styleBox.Render(strings.TrimRight(content.String(), "\n"))
}

// Print writes the rendered summary to w
func Print(w io.Writer, s Summary) error {
	_, err := fmt.Fprintln(w, Render(s))
	return err
}

// RenderHistory renders a table of past runs
func RenderHistory(runs []*history.Run) string {
	if len(runs) == 0 {
		return styleSubtle.Render("No runs recorded yet")
	}

	var content strings.Builder
	content.WriteString(styleTitle.Render(fmt.Sprintf("%-10s %-19s %-10s %7s %10s %8s %10s %12s",
		"ID", "Started", "Status", "Threads", "Total", "Failed", "Wall", "Req/sec")) + "\n")

	for _, r := range runs {
		content.WriteString(fmt.Sprintf("%-10s %-19s %-10s %7d %10d %8d %10s %12.2f\n",
			history.ShortID(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			statusStyle(r.Status).Render(fmt.Sprintf("%-10s", r.Status)),
			r.MaxThreads,
			r.Total,
			r.Failed,
			FormatDuration(time.Duration(r.WallTimeMs)*time.Millisecond),
			r.Throughput))
	}

	return strings.TrimRight(content.String(), "\n")
}

// RenderRun renders the details of one stored run
func RenderRun(r *history.Run) string {
	var content strings.Builder

	content.WriteString(styleTitle.Render("Run "+r.ID) + "\n")
	content.WriteString(fmt.Sprintf("Status:     %s\n", statusStyle(r.Status).Render(r.Status)))
	if r.Error != "" {
		content.WriteString(fmt.Sprintf("Error:      %s\n", styleError.Render(r.Error)))
	}
	content.WriteString(fmt.Sprintf("Target:     %s\n", r.Target))
	content.WriteString(fmt.Sprintf("Resort:     %s (day %d)\n", r.ResortName, r.SkiDay))
	content.WriteString(fmt.Sprintf("Threads:    %d   Skiers: %d   Lifts: %d\n", r.MaxThreads, r.SkierCount, r.LiftCount))
	if r.RequestsPerSecond > 0 {
		content.WriteString(fmt.Sprintf("RPS cap:    %.0f\n", r.RequestsPerSecond))
	}
	content.WriteString(fmt.Sprintf("Started:    %s\n", r.StartedAt.Local().Format(time.RFC3339)))
	content.WriteString(fmt.Sprintf("Requests:   %d total, %d successful, %d failed\n", r.Total, r.Successful, r.Failed))
	content.WriteString(fmt.Sprintf("Wall time:  %s\n", FormatDuration(time.Duration(r.WallTimeMs)*time.Millisecond)))
	content.WriteString(fmt.Sprintf("Throughput: %.2f requests/sec\n", r.Throughput))

	if len(r.Phases) > 0 {
		content.WriteString("\n" + styleTitle.Render("Phases") + "\n")
		for _, p := range r.Phases {
			line := fmt.Sprintf("Phase %d: %d workers, %s", p.Number, p.Workers, FormatDuration(p.CompletedAt.Sub(p.StartedAt)))
			if p.GateTimedOut {
				line += " " + styleWarning.Render("(gate wait timed out)")
			}
			content.WriteString(line + "\n")
		}
	}

	if len(r.Summaries) > 0 {
		content.WriteString("\n" + styleTitle.Render("Latency") + "\n")
		for _, s := range r.Summaries {
			content.WriteString(fmt.Sprintf("%-24s %8d  mean %.2f ms  median %.2f ms  p99 %.2f ms  max %.2f ms\n",
				s.RequestType, s.Count, s.MeanMs, s.MedianMs, s.P99Ms, s.MaxMs))
		}
	}

	return strings.TrimRight(content.String(), "\n")
}

// batchStats returns the longest batch of a phase and how many of its batches
// had at least one failed call
func batchStats(batches []types.BatchOutcome, phaseNumber int) (time.Duration, int) {
	var slowest time.Duration
	failed := 0
	for _, b := range batches {
		if b.Phase != phaseNumber {
			continue
		}
		if d := b.Duration(); d > slowest {
			slowest = d
		}
		if b.Failed {
			failed++
		}
	}
	return slowest, failed
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case history.StatusCompleted:
		return styleSuccess
	case history.StatusFailed:
		return styleError
	default:
		return styleWarning
	}
}

// FormatDuration formats a duration for display
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

// FormatMs formats a latency in milliseconds with two decimals
func FormatMs(d time.Duration) string {
	return fmt.Sprintf("%.2fms", Milliseconds(d))
}

// Milliseconds converts d to fractional milliseconds
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
