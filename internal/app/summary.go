package app

import (
	"fmt"
	"io"
	"time"

	"github.com/gookit/color"

	"github.com/shpitdev/email-finder-pipeline/pkg/outcome"
)

// PrintSummary writes a one-line human summary of a run. Each count is
// coloured by its status when the writer's terminal supports it.
func PrintSummary(w io.Writer, r Report) {
	s := r.Statistics
	_, _ = fmt.Fprintf(w, "%s %s  %s  %s  %s  (%s)\n",
		color.Bold.Sprint("emailfinder"),
		color.FgCyan.Sprintf("total %d", s.Total),
		color.FgGreen.Sprintf("found %d", s.Found),
		color.FgYellow.Sprintf("not found %d", s.NotFound),
		errorStyle(s).Sprintf("errors %d", s.Errors),
		r.Duration.Round(time.Millisecond),
	)
}

// PrintValidation writes the verdict of a validation run.
func PrintValidation(w io.Writer, v outcome.Validation) {
	style := color.FgYellow
	switch v.Verdict {
	case outcome.VerdictValid:
		style = color.FgGreen
	case outcome.VerdictInvalid, outcome.VerdictError:
		style = color.FgRed
	}
	_, _ = fmt.Fprintf(w, "%s %s %s\n", color.Bold.Sprint("emailfinder"), v.Email, style.Sprint(string(v.Verdict)))
}

func errorStyle(s outcome.Statistics) color.Color {
	if s.Errors > 0 {
		return color.FgRed
	}
	return color.FgWhite
}
