package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/openInula/inula-sub000/pkg/migrate"
)

// RenderReport prints a per-file table, the warnings and, for dry runs,
// the diffs.
func RenderReport(w io.Writer, report *migrate.Report, showDiffs bool) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Format.Footer = text.FormatDefault

	tbl.AppendHeader(table.Row{"File", "Status", "Output", "Size", "Warnings", "Time"})

	var totalBytes uint64

	for i := range report.Files {
		res := &report.Files[i]
		totalBytes += uint64(res.Bytes)

		output := ""
		size := ""

		if res.Output != "" {
			output = filepath.Base(res.Output)
			size = humanize.Bytes(uint64(res.Bytes))
		}

		tbl.AppendRow(table.Row{
			res.Path,
			statusText(res.Status),
			output,
			size,
			len(res.Diagnostics),
			durationText(res.Duration),
		})
	}

	tbl.AppendFooter(table.Row{
		fmt.Sprintf("%d files", len(report.Files)),
		fmt.Sprintf("%d converted, %d skipped, %d failed",
			report.Count(migrate.StatusConverted), report.Count(migrate.StatusSkipped), report.Count(migrate.StatusFailed)),
		"",
		humanize.Bytes(totalBytes),
		report.Warnings(),
		durationText(report.Elapsed),
	})

	tbl.Render()

	for i := range report.Files {
		res := &report.Files[i]

		if res.Err != nil {
			fmt.Fprintf(w, "%s %s: %v\n", color.RedString("error"), res.Path, res.Err)
		}

		for _, d := range res.Diagnostics {
			fmt.Fprintf(w, "%s %s\n", color.YellowString("warning"), d.String())
		}
	}

	if showDiffs {
		for i := range report.Files {
			if report.Files[i].Diff != "" {
				fmt.Fprint(w, colorDiff(report.Files[i].Diff))
			}
		}
	}
}

// ResultLine formats one result for streaming output such as watch mode.
func ResultLine(res migrate.FileResult) string {
	line := fmt.Sprintf("%s %s", statusText(res.Status), res.Path)

	switch {
	case res.Err != nil:
		line += fmt.Sprintf(": %v", res.Err)
	case res.Output != "":
		line += fmt.Sprintf(" -> %s (%s, %s)", res.Output, humanize.Bytes(uint64(res.Bytes)), durationText(res.Duration))
	}

	if n := len(res.Diagnostics); n > 0 {
		line += fmt.Sprintf(" [%d %s]", n, plural(n, "warning"))
	}

	return line
}

func statusText(status migrate.Status) string {
	switch status {
	case migrate.StatusConverted:
		return color.GreenString(string(status))
	case migrate.StatusFailed:
		return color.RedString(string(status))
	default:
		return color.HiBlackString(string(status))
	}
}

func durationText(d time.Duration) string {
	if d <= 0 {
		return ""
	}

	return d.Round(time.Millisecond).String()
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}

	return word + "s"
}

func colorDiff(diff string) string {
	lines := strings.SplitAfter(diff, "\n")

	var sb strings.Builder

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			sb.WriteString(color.New(color.Bold).Sprint(line))
		case strings.HasPrefix(line, "+"):
			sb.WriteString(color.GreenString("%s", line))
		case strings.HasPrefix(line, "-"):
			sb.WriteString(color.RedString("%s", line))
		case strings.HasPrefix(line, "@@"):
			sb.WriteString(color.CyanString("%s", line))
		default:
			sb.WriteString(line)
		}
	}

	return sb.String()
}

// ReportJSON is the machine-readable form of a run.
type ReportJSON struct {
	Converted int                  `json:"converted"`
	Skipped   int                  `json:"skipped"`
	Failed    int                  `json:"failed"`
	Warnings  int                  `json:"warnings"`
	ElapsedMS int64                `json:"elapsed_ms"`
	Files     []migrate.FileResult `json:"files"`
	Errors    map[string]string    `json:"errors,omitempty"`
}

// NewReportJSON summarizes report for JSON output.
func NewReportJSON(report *migrate.Report) ReportJSON {
	out := ReportJSON{
		Converted: report.Count(migrate.StatusConverted),
		Skipped:   report.Count(migrate.StatusSkipped),
		Failed:    report.Count(migrate.StatusFailed),
		Warnings:  report.Warnings(),
		ElapsedMS: report.Elapsed.Milliseconds(),
		Files:     report.Files,
	}

	for i := range report.Files {
		if report.Files[i].Err == nil {
			continue
		}

		if out.Errors == nil {
			out.Errors = map[string]string{}
		}

		out.Errors[report.Files[i].Path] = report.Files[i].Err.Error()
	}

	return out
}
