package cmd

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/dbsmedya/clmigrate/internal/types"
)

// maxValueWidth truncates long values such as file paths with wide characters.
const maxValueWidth = 60

type summaryRow struct {
	label string
	value string
}

type summary struct {
	title  string
	rows   []summaryRow
	ok     bool
	status string
}

func (s *summary) add(label string, value interface{}) {
	s.rows = append(s.rows, summaryRow{label: label, value: fmt.Sprint(value)})
}

// render prints the summary as an aligned two-column block. Column width is
// measured in terminal cells so names with wide characters stay aligned.
func (s *summary) render(w io.Writer) {
	width := 0
	for _, r := range s.rows {
		if n := runewidth.StringWidth(r.label); n > width {
			width = n
		}
	}

	fmt.Fprintf(w, "\n=== %s ===\n", s.title)
	for _, r := range s.rows {
		value := runewidth.Truncate(r.value, maxValueWidth, "...")
		fmt.Fprintf(w, "%s  %s\n", runewidth.FillRight(r.label+":", width+1), value)
	}

	if s.ok {
		fmt.Fprintln(w, color.Green.Sprint("✅ "+s.status))
	} else {
		fmt.Fprintln(w, color.Yellow.Sprint("⚠️  "+s.status))
	}
}

func importSummary(runID, file string, stats types.RunStats, dryRun bool, elapsed time.Duration) *summary {
	s := &summary{title: "Employer Import Complete", ok: stats.Failed == 0}
	if dryRun {
		s.title = "Employer Import Dry Run"
	}
	s.add("Run ID", runID)
	s.add("Source file", file)
	s.add("Duration", elapsed.Round(time.Millisecond))
	s.add("Total", stats.Total)
	s.add("Successful", stats.Success)
	s.add("Failed", colorCount(stats.Failed))
	s.add("Skipped", stats.Skipped)

	if s.ok {
		s.status = "All attempted records imported"
	} else {
		s.status = fmt.Sprintf("%d records failed, see the failure log", stats.Failed)
	}
	return s
}

func exportSummary(title, runID, dir string, stats types.ExportStats, elapsed time.Duration) *summary {
	s := &summary{title: title, ok: stats.AssetFailures == 0 && stats.FailedPages == 0 && stats.Failed == 0}
	s.add("Run ID", runID)
	s.add("Save directory", dir)
	s.add("Duration", elapsed.Round(time.Millisecond))
	s.add("Records seen", stats.Seen)
	s.add("Saved", stats.Saved)
	s.add("Already saved", stats.Skipped)
	s.add("Failed", colorCount(stats.Failed))
	s.add("Assets downloaded", stats.AssetsDownloaded)
	s.add("Asset failures", colorCount(stats.AssetFailures))
	s.add("Failed pages", colorCount(stats.FailedPages))

	if s.ok {
		s.status = "Export complete"
	} else {
		s.status = "Export finished with errors, see the log"
	}
	return s
}

func colorCount(n int) string {
	if n == 0 {
		return "0"
	}
	return color.Red.Sprint(strconv.Itoa(n))
}
