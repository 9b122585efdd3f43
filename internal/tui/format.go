package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/lowaak/hiit-timer/internal/i18n"
	"github.com/lowaak/hiit-timer/internal/workout"
)

var phaseColors = map[workout.Phase]string{
	workout.PhaseGetReady:   "yellow",
	workout.PhaseWork:       "red",
	workout.PhaseRest:       "green",
	workout.PhaseRoundReset: "blue",
	workout.PhaseFinished:   "purple",
}

// formatMMSS formats whole seconds as MM:SS
func formatMMSS(seconds int) string {
	seconds = max(0, seconds)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// progressBar draws the remaining share of the phase as a bar of width cells
func progressBar(fraction float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(fraction*float64(width) + 0.5)
	filled = min(width, max(0, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// renderTimer builds the timer panel text
func renderTimer(p workout.Progress, tr *i18n.Translator) string {
	var b strings.Builder
	b.WriteString("\n")
	if p.Name != "" {
		fmt.Fprintf(&b, "  [gray]%s[white]\n\n", p.Name)
	}

	label := tr.Phase(p.Phase)
	if p.Status == workout.StatusFinished {
		label = tr.Phase(workout.PhaseFinished)
	}
	fmt.Fprintf(&b, "  [%s::b]%s[-::-]", phaseColors[p.Phase], label)
	if p.Status == workout.StatusPaused {
		fmt.Fprintf(&b, " [gray](%s)[white]", tr.T("Paused"))
	}
	b.WriteString("\n\n")

	if p.Status != workout.StatusFinished {
		fmt.Fprintf(&b, "  [::b]%s[::-]\n", formatMMSS(p.DisplayRemaining))
		fmt.Fprintf(&b, "  %s\n\n", progressBar(p.Fraction(), 25))
		fmt.Fprintf(&b, "  [gray]%s:[white]    %d/%d\n", tr.T("Round"), p.Round, p.Config.Rounds)
		fmt.Fprintf(&b, "  [gray]%s:[white] %d/%d\n", tr.T("Exercise"), p.Exercise, p.Config.Exercises)
	}
	fmt.Fprintf(&b, "  [gray]%s:[white] %s / %s\n", tr.T("Total remaining"),
		formatMMSS(p.TotalRemainingSeconds), formatMMSS(p.TotalPlannedSeconds))

	if p.Status == workout.StatusIdle {
		fmt.Fprintf(&b, "\n  [green]%s[white]\n", tr.T("Press Space to start"))
	}
	return b.String()
}

// renderSettings lists every adjustable field with its number key, marking the selected one
func renderSettings(cfg workout.Config, selected workout.Field) string {
	var b strings.Builder
	b.WriteString("\n")
	for i, info := range workout.AllFields {
		marker := " "
		if info.Field == selected {
			marker = "[yellow]>[white]"
		}
		fmt.Fprintf(&b, " %s [yellow]%d[white] %-20s %s\n", marker, i+1, info.Title, info.Field.FormatValue(cfg.Get(info.Field)))
	}
	b.WriteString("\n  [yellow]Space[white] Start/Pause  [yellow]r[white] Reset  [yellow]+[white]/[yellow]-[white] Adjust  [yellow]Esc[white] Quit\n")
	return b.String()
}

// historyItem returns the main and secondary list text for a past workout
func historyItem(s workout.Summary, loc *time.Location) (string, string) {
	main := fmt.Sprintf("%s  %s", s.Date.In(loc).Format("2006-01-02 15:04"), s.Name)
	secondary := fmt.Sprintf("%s  %d×%d  work %s rest %s", s.FormattedDuration(),
		s.CompletedRounds, s.CompletedExercises,
		workout.FieldWork.FormatValue(s.Config.WorkSeconds),
		workout.FieldRest.FormatValue(s.Config.RestSeconds))
	return main, secondary
}
